package ports

import (
	"context"

	"github.com/starterpack/webapp/internal/core/domain"
)

// UserRepository defines the persistence contract for user accounts.
// Implementations translate driver errors into domain sentinels:
// a missing row is domain.ErrUserNotFound and a unique-constraint
// violation is domain.ErrUserExists.
type UserRepository interface {
	// Create inserts user and sets its ID and CreatedAt.
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns every user ordered by ID.
	List(ctx context.Context) ([]domain.User, error)
	Ping(ctx context.Context) error
}
