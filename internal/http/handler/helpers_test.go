package handler_test

import (
	"testing"

	"github.com/jaekwang-park/todo-web/internal/http/view"
	"github.com/jaekwang-park/todo-web/internal/repository"
	"github.com/jaekwang-park/todo-web/internal/service"
)

func newRenderer(t *testing.T) *view.Renderer {
	t.Helper()
	r, err := view.New()
	if err != nil {
		t.Fatalf("view.New: %v", err)
	}
	return r
}

// newTodoSvc returns a service over the default seeds with no simulated latency.
func newTodoSvc() *service.TodoService {
	return service.NewTodoService(repository.NewMemoryTodo(repository.WithLatency(0)))
}
