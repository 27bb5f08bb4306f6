package repository

import (
	"context"
	"errors"

	"github.com/jaekwang-park/todo-web/internal/model"
)

// ErrUserNotFound is returned by GetByCognitoSub when no user has the given sub.
var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	GetOrCreate(ctx context.Context, cognitoSub, email string) (model.User, error)
	GetByCognitoSub(ctx context.Context, cognitoSub string) (model.User, error)
}
