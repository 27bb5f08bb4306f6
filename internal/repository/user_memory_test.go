package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jaekwang-park/todo-web/internal/repository"
)

func TestMemoryUser_GetOrCreate(t *testing.T) {
	repo := repository.NewMemoryUser()
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, "sub-1", "a@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected generated id")
	}

	second, err := repo.GetOrCreate(ctx, "sub-1", "b@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected same id %q, got %q", first.ID, second.ID)
	}
	if second.Email != "b@example.com" {
		t.Errorf("expected email to be updated, got %q", second.Email)
	}
}

func TestMemoryUser_GetByCognitoSub(t *testing.T) {
	repo := repository.NewMemoryUser()
	ctx := context.Background()

	if _, err := repo.GetByCognitoSub(ctx, "missing"); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	created, _ := repo.GetOrCreate(ctx, "sub-2", "c@example.com")
	got, err := repo.GetByCognitoSub(ctx, "sub-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("expected id %q, got %q", created.ID, got.ID)
	}
}
