package ports

import (
	"context"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
)

// AuthService defines the business logic for authentication.
type AuthService interface {
	// Login validates credentials and returns a session token.
	Login(ctx context.Context, creds domain.Credentials) (string, error)
	// ValidateToken checks if a token is valid and returns the associated user.
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
	// Logout invalidates a session token.
	Logout(ctx context.Context, token string) error
	// CreateUser registers a new user (admin only).
	CreateUser(ctx context.Context, user domain.User, password string) error
}

// UserRepository defines the persistence layer for users.
type UserRepository interface {
	// SaveUser creates or updates a user.
	SaveUser(ctx context.Context, user domain.User) error
	// GetUserByUsername retrieves a user by their username.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetUserByID retrieves a user by their ID.
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	// ListUsers returns all users.
	ListUsers(ctx context.Context) ([]domain.User, error)
}
