package memory

import (
	"context"
	"strings"
	"sync"

	"mathtree-backend/domain/core/entities"
	pkgerrors "mathtree-backend/pkg/errors"
)

// UserRepository provides an in-memory implementation of ports.UserRepository
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entities.User
	byEmail map[string]*entities.User
}

// NewUserRepository creates a new in-memory user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*entities.User),
		byEmail: make(map[string]*entities.User),
	}
}

// Save persists a new user, rejecting duplicate email addresses
func (r *UserRepository) Save(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email())
	if _, exists := r.byEmail[email]; exists {
		return pkgerrors.NewConflictError("email already registered")
	}

	r.byID[user.ID()] = user
	r.byEmail[email] = user
	return nil
}

// GetByEmail retrieves a user by email address
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.byEmail[strings.ToLower(email)]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("user")
	}
	return user, nil
}

// GetByID retrieves a user by its ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.byID[id]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("user")
	}
	return user, nil
}
