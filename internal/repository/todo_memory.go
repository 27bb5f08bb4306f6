package repository

import (
	"context"
	"sync"
	"time"

	"github.com/jaekwang-park/todo-web/internal/model"
)

// MemoryTodoRepository keeps todos in process memory and delays every call
// by a fixed latency to stand in for a remote data source.
// Ids come from a monotonic counter and are never reused after a delete.
type MemoryTodoRepository struct {
	mu      sync.Mutex
	todos   []model.Todo
	nextID  int
	latency time.Duration
}

type MemoryTodoOption func(*MemoryTodoRepository)

// WithLatency sets the simulated delay. Zero or negative means no delay.
func WithLatency(d time.Duration) MemoryTodoOption {
	return func(r *MemoryTodoRepository) { r.latency = d }
}

// WithSeeds replaces the default seed records.
func WithSeeds(seeds []model.Todo) MemoryTodoOption {
	return func(r *MemoryTodoRepository) {
		r.todos = append([]model.Todo(nil), seeds...)
	}
}

func NewMemoryTodo(opts ...MemoryTodoOption) *MemoryTodoRepository {
	r := &MemoryTodoRepository{todos: model.DefaultSeeds()}
	for _, opt := range opts {
		opt(r)
	}

	r.nextID = 1
	for _, t := range r.todos {
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
	}
	return r
}

func (r *MemoryTodoRepository) List(ctx context.Context) ([]model.Todo, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Todo, len(r.todos))
	copy(out, r.todos)
	return out, nil
}

func (r *MemoryTodoRepository) Create(ctx context.Context, text string) (model.Todo, error) {
	if err := r.wait(ctx); err != nil {
		return model.Todo{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	todo := model.Todo{
		ID:        r.nextID,
		Text:      text,
		Completed: false,
	}
	r.nextID++
	r.todos = append(r.todos, todo)
	return todo, nil
}

func (r *MemoryTodoRepository) Delete(ctx context.Context, id int) (int, error) {
	if err := r.wait(ctx); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.todos[:0]
	for _, t := range r.todos {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	removed := len(r.todos) - len(kept)
	r.todos = kept
	return removed, nil
}

func (r *MemoryTodoRepository) wait(ctx context.Context) error {
	if r.latency <= 0 {
		return nil
	}

	timer := time.NewTimer(r.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ TodoRepository = (*MemoryTodoRepository)(nil)
