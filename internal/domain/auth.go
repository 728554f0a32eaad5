package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNoToken            = errors.New("no token provided")
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Name     string `json:"name" validate:"omitempty,min=2,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type UpdateRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=6,max=128"`
	Name     string `json:"name" validate:"omitempty,min=2,max=255"`
}

// Empty reports whether the patch carries no fields at all. An empty
// name string counts as absent, same as the registration flow.
func (r UpdateRequest) Empty() bool {
	return r.Email == "" && r.Password == "" && r.Name == ""
}

type AuthResult struct {
	User  *User
	Token string
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	Me(ctx context.Context, userID uuid.UUID) (*User, error)
	Update(ctx context.Context, userID uuid.UUID, req UpdateRequest) (*AuthResult, error)
}
