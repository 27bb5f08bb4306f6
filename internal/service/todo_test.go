package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jaekwang-park/todo-web/internal/model"
	"github.com/jaekwang-park/todo-web/internal/repository"
	"github.com/jaekwang-park/todo-web/internal/service"
)

// mockTodoRepo implements repository.TodoRepository for testing
type mockTodoRepo struct {
	listFn   func(ctx context.Context) ([]model.Todo, error)
	createFn func(ctx context.Context, text string) (model.Todo, error)
	deleteFn func(ctx context.Context, id int) (int, error)
}

func (m *mockTodoRepo) List(ctx context.Context) ([]model.Todo, error) {
	return m.listFn(ctx)
}
func (m *mockTodoRepo) Create(ctx context.Context, text string) (model.Todo, error) {
	return m.createFn(ctx, text)
}
func (m *mockTodoRepo) Delete(ctx context.Context, id int) (int, error) {
	return m.deleteFn(ctx, id)
}

func TestTodoService_List(t *testing.T) {
	tests := []struct {
		name    string
		todos   []model.Todo
		repoErr error
		wantErr string
	}{
		{
			name:  "success",
			todos: model.DefaultSeeds(),
		},
		{
			name:    "repo error",
			repoErr: fmt.Errorf("db error"),
			wantErr: "failed to list todos",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockTodoRepo{
				listFn: func(ctx context.Context) ([]model.Todo, error) {
					return tt.todos, tt.repoErr
				},
			}
			svc := service.NewTodoService(repo)

			got, err := svc.List(context.Background())
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.todos, got); diff != "" {
				t.Errorf("List() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTodoService_Add(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		repoErr error
		wantErr bool
	}{
		{name: "success", text: "Buy milk"},
		{name: "empty text accepted", text: ""},
		{name: "repo error", text: "Buy milk", repoErr: context.DeadlineExceeded, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotText string
			repo := &mockTodoRepo{
				createFn: func(ctx context.Context, text string) (model.Todo, error) {
					gotText = text
					if tt.repoErr != nil {
						return model.Todo{}, tt.repoErr
					}
					return model.Todo{ID: 4, Text: text}, nil
				},
			}
			svc := service.NewTodoService(repo)

			todo, err := svc.Add(context.Background(), tt.text)
			if tt.wantErr {
				if !errors.Is(err, tt.repoErr) {
					t.Fatalf("expected wrapped %v, got %v", tt.repoErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotText != tt.text {
				t.Errorf("repo received text=%q, want %q", gotText, tt.text)
			}
			if todo.Text != tt.text || todo.Completed {
				t.Errorf("unexpected todo %+v", todo)
			}
		})
	}
}

func TestTodoService_Delete(t *testing.T) {
	tests := []struct {
		name    string
		removed int
		repoErr error
		want    bool
		wantErr bool
	}{
		{name: "removed", removed: 1, want: true},
		{name: "not found still acknowledged", removed: 0, want: true},
		{name: "repo error", repoErr: fmt.Errorf("boom"), want: false, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockTodoRepo{
				deleteFn: func(ctx context.Context, id int) (int, error) {
					return tt.removed, tt.repoErr
				},
			}
			svc := service.NewTodoService(repo)

			got, err := svc.Delete(context.Background(), 2)
			if tt.wantErr != (err != nil) {
				t.Fatalf("wantErr=%v, got err=%v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTodoService_WithMemoryRepository(t *testing.T) {
	svc := service.NewTodoService(repository.NewMemoryTodo())
	ctx := context.Background()

	if _, err := svc.Add(ctx, "Buy milk"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, err := svc.Delete(ctx, 2)
	if err != nil || !ok {
		t.Fatalf("Delete(2) = %v, %v; want true, nil", ok, err)
	}
	ok, err = svc.Delete(ctx, 2)
	if err != nil || !ok {
		t.Fatalf("second Delete(2) = %v, %v; want true, nil", ok, err)
	}

	todos, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var foundMilk bool
	for _, todo := range todos {
		if todo.ID == 2 {
			t.Error("todo with id=2 should be gone")
		}
		if todo.Text == "Buy milk" && !todo.Completed {
			foundMilk = true
		}
	}
	if !foundMilk {
		t.Error("expected a pending \"Buy milk\" todo")
	}
}
