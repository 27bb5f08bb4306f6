package repository

import (
	"context"

	"github.com/jaekwang-park/todo-web/internal/model"
)

type TodoRepository interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, text string) (model.Todo, error)
	// Delete removes every todo with the given id and reports how many were removed.
	Delete(ctx context.Context, id int) (int, error)
}
