// Package auth
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"finmon/internal/domain"
)

type service struct {
	repo   domain.UserRepository
	hasher *PasswordHasher
	issuer *TokenIssuer
}

func NewService(repo domain.UserRepository, hasher *PasswordHasher, issuer *TokenIssuer) domain.AuthService {
	return &service{
		repo:   repo,
		hasher: hasher,
		issuer: issuer,
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error) {
	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:    req.Email,
		Password: hashed,
		Name:     normalizeName(req.Name),
	}

	// Uniqueness is enforced by the store itself, so a concurrent
	// registration race still yields exactly one row per email.
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.respond(user)
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Same failure as a wrong password, so callers cannot
			// probe which emails are registered.
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.respond(user)
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, req domain.UpdateRequest) (*domain.AuthResult, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != "" && req.Email != user.Email {
		owner, err := s.repo.GetByEmail(ctx, req.Email)
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		if owner != nil && owner.ID != user.ID {
			return nil, domain.ErrEmailTaken
		}
		user.Email = req.Email
	}

	if name := normalizeName(req.Name); name != nil {
		user.Name = name
	}

	if req.Password != "" {
		hashed, err := s.hasher.Hash(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = hashed
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.respond(user)
}

func (s *service) respond(user *domain.User) (*domain.AuthResult, error) {
	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &domain.AuthResult{
		User:  user,
		Token: token,
	}, nil
}

func normalizeName(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}
