package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jaekwang-park/todo-web/internal/model"
	"github.com/jaekwang-park/todo-web/internal/repository"
)

type TodoService struct {
	repo repository.TodoRepository
}

func NewTodoService(repo repository.TodoRepository) *TodoService {
	return &TodoService{repo: repo}
}

func (s *TodoService) List(ctx context.Context) ([]model.Todo, error) {
	todos, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// Add stores a new todo. Text is taken as-is; an empty string is accepted.
func (s *TodoService) Add(ctx context.Context, text string) (model.Todo, error) {
	todo, err := s.repo.Create(ctx, text)
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to create todo: %w", err)
	}
	return todo, nil
}

// Delete removes the todo with the given id. It acknowledges with true
// whether or not a todo was actually removed; callers cannot tell the two apart.
func (s *TodoService) Delete(ctx context.Context, id int) (bool, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete todo: %w", err)
	}
	if removed == 0 {
		slog.DebugContext(ctx, "delete matched no todo", "todo_id", id)
	}
	return true, nil
}
