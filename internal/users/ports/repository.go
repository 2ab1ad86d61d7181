package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/users/domain"
)

// Repository errors - the canonical errors repository implementations
// return. The PostgreSQL implementation translates pgx.ErrNoRows to these.
var (
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create saves a new user
	Create(ctx context.Context, user *domain.User) error

	// FindByID retrieves a user by internal ID
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// FindBySubject retrieves a user by external auth subject claim
	FindBySubject(ctx context.Context, subject string) (*domain.User, error)

	// ExistsByEmail checks whether an email is already registered
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByUsername checks whether a username is already taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
