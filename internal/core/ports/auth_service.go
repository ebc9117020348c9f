package ports

import (
	"context"

	"github.com/starterpack/webapp/internal/core/domain"
)

// Fixed credentials used by the connectivity test endpoint.
const (
	TestUsername = "testuser"
	TestEmail    = "test@example.com"
	TestPassword = "password123"
)

// RegisterInput is the already-validated registration form.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type AuthService interface {
	// Register creates an account. Returns domain.ErrUsernameTaken or
	// domain.ErrEmailTaken when either is in use, domain.ErrUserExists when a
	// concurrent insert wins the race.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Authenticate returns domain.ErrInvalidCredentials for an unknown
	// username and for a wrong password alike.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	// CreateTestUser inserts the fixed test account, or returns
	// domain.ErrUserExists when it is already present.
	CreateTestUser(ctx context.Context) (*domain.User, error)
}

// UserService serves read-only user listings.
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
}

// SessionService issues and resolves signed session tokens.
type SessionService interface {
	Issue(user *domain.User, remember bool) (*domain.Session, error)
	// ResolveCurrentUser maps a token to its user. Any failure (bad signature,
	// expired, revoked, deleted user) yields ok == false.
	ResolveCurrentUser(ctx context.Context, token string) (user *domain.User, ok bool)
	Revoke(ctx context.Context, token string) error
}
