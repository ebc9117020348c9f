package ports

import (
	"context"
	"time"

	"github.com/starterpack/webapp/internal/core/domain"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Get reports found == false on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// TokenRevoker records session token ids that must no longer be accepted.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Mailer delivers transactional email.
type Mailer interface {
	SendWelcome(ctx context.Context, user *domain.User) error
}
