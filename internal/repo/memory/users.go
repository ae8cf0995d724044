package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/staynest/staynest/internal/domain/user"
)

// UsersRepo is a mutex-guarded map store with the same contract as the
// postgres repo, including the email uniqueness guarantee.
type UsersRepo struct {
	mu      sync.RWMutex
	byID    map[user.ID]user.User
	byEmail map[string]user.ID
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		byID:    make(map[user.ID]user.User),
		byEmail: make(map[string]user.ID),
	}
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[email]; taken {
		return user.User{}, user.ErrEmailTaken
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           user.ID(uuid.NewString()),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.byID[u.ID] = u
	r.byEmail[email] = u.ID

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return r.byID[id], nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id user.ID) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}
