package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/counterline/counterline/internal/shared"
)

// User is a staff account. PasswordHash is a bcrypt hash and never leaves
// the server.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	FullName     string      `json:"full_name"`
	Role         shared.Role `json:"role"`
	IsActive     bool        `json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	Username string      `json:"username" validate:"required,min=3,max=64"`
	Password string      `json:"password" validate:"required,min=8"`
	FullName string      `json:"full_name" validate:"required,max=255"`
	Role     shared.Role `json:"role" validate:"required"`
}
