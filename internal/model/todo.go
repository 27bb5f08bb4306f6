package model

type Todo struct {
	ID        int    `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// DefaultSeeds returns the records a fresh store starts with.
func DefaultSeeds() []Todo {
	return []Todo{
		{ID: 1, Text: "Set up the project", Completed: true},
		{ID: 2, Text: "Wire up authentication", Completed: false},
		{ID: 3, Text: "Ship the todo list", Completed: false},
	}
}
