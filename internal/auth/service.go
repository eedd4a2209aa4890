package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/counterline/counterline/internal/shared"
)

// ErrInvalidCredentials hides whether the username or the password failed.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// UserStore abstracts user persistence for the service.
type UserStore interface {
	Insert(ctx context.Context, u User) error
	GetByUsername(ctx context.Context, username string) (User, error)
	Get(ctx context.Context, id uuid.UUID) (User, error)
	List(ctx context.Context) ([]User, error)
}

// Service authenticates staff and manages accounts.
type Service struct {
	store UserStore
}

// NewService builds Service.
func NewService(store UserStore) *Service {
	return &Service{store: store}
}

// Authenticate verifies credentials and returns the active user. Unknown
// usernames, wrong passwords and deactivated accounts all yield
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !user.IsActive {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// CreateUser registers a staff account with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (User, error) {
	if !req.Role.Valid() {
		return User{}, shared.Validationf("auth: unknown role %q", req.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	user := User{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         req.Role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// GetUser fetches one user.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	return s.store.Get(ctx, id)
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}
