// Package memory provides an in-process UserRepository. It backs the test
// suite and local development without a database, with the same email
// uniqueness guarantee the postgres adapter gets from its constraint.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"finmon/internal/domain"
)

type UserRepository struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*domain.User
	byEmail map[string]uuid.UUID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[uuid.UUID]*domain.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	return clone(r.users[id]), nil
}

func (r *UserRepository) GetByID(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	return clone(user), nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check and insert happen under one lock, matching the atomicity of
	// the database UNIQUE constraint.
	if _, taken := r.byEmail[user.Email]; taken {
		return domain.ErrEmailTaken
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users[user.ID] = clone(user)
	r.byEmail[user.Email] = user.ID

	return nil
}

func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}

	if owner, taken := r.byEmail[user.Email]; taken && owner != user.ID {
		return domain.ErrEmailTaken
	}

	if current.Email != user.Email {
		delete(r.byEmail, current.Email)
		r.byEmail[user.Email] = user.ID
	}

	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = clone(user)

	return nil
}

func clone(user *domain.User) *domain.User {
	copied := *user
	if user.Name != nil {
		name := *user.Name
		copied.Name = &name
	}
	return &copied
}
