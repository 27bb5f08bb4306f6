package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaekwang-park/todo-web/internal/model"
)

// MemoryUserRepository is the default user store; users are forgotten on restart.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	bySub map[string]model.User
	now   func() time.Time
}

func NewMemoryUser() *MemoryUserRepository {
	return &MemoryUserRepository{
		bySub: make(map[string]model.User),
		now:   time.Now,
	}
}

func (r *MemoryUserRepository) GetOrCreate(ctx context.Context, cognitoSub, email string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if u, ok := r.bySub[cognitoSub]; ok {
		u.Email = email
		u.UpdatedAt = now
		r.bySub[cognitoSub] = u
		return u, nil
	}

	u := model.User{
		ID:         uuid.NewString(),
		CognitoSub: cognitoSub,
		Email:      email,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.bySub[cognitoSub] = u
	return u, nil
}

func (r *MemoryUserRepository) GetByCognitoSub(ctx context.Context, cognitoSub string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.bySub[cognitoSub]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}

var _ UserRepository = (*MemoryUserRepository)(nil)
