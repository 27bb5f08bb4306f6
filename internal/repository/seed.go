package repository

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jaekwang-park/todo-web/internal/model"
)

type seedFile struct {
	Todos []model.Todo `yaml:"todos"`
}

// LoadSeeds reads seed todos from a YAML file of the form:
//
//	todos:
//	  - id: 1
//	    text: Buy milk
//	    completed: false
func LoadSeeds(path string) ([]model.Todo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed file: read %q: %w", path, err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed file: parse yaml: %w", err)
	}

	seen := make(map[int]bool, len(f.Todos))
	for i, t := range f.Todos {
		if t.ID <= 0 {
			return nil, fmt.Errorf("seed file: todos[%d]: id must be positive, got %d", i, t.ID)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("seed file: todos[%d]: duplicate id %d", i, t.ID)
		}
		seen[t.ID] = true
	}

	if f.Todos == nil {
		f.Todos = []model.Todo{}
	}
	return f.Todos, nil
}
