package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/internal/repository"
)

type UsersRepo struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUsers() *UsersRepo {
	return &UsersRepo{users: make(map[string]models.User)}
}

func (r *UsersRepo) Create(_ context.Context, email, passwordHash string, role models.Role) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return models.User{}, repository.ErrConflict
		}
	}
	u := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}
