package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/starterpack/webapp/internal/core/domain"
	"github.com/starterpack/webapp/internal/core/ports"
)

// SessionConfig controls token lifetimes.
type SessionConfig struct {
	Secret string
	// TTL applies to ordinary sessions, RememberTTL to remember-me sessions.
	TTL         time.Duration
	RememberTTL time.Duration
}

type sessionService struct {
	cfg     SessionConfig
	users   ports.UserRepository
	revoker ports.TokenRevoker
	log     zerolog.Logger
	now     func() time.Time
}

// NewSessionService returns a SessionService signing HS256 tokens.
// revoker may be nil, in which case logout only clears the cookie.
func NewSessionService(cfg SessionConfig, users ports.UserRepository, revoker ports.TokenRevoker, log zerolog.Logger) ports.SessionService {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.RememberTTL <= 0 {
		cfg.RememberTTL = 365 * 24 * time.Hour
	}
	return &sessionService{cfg: cfg, users: users, revoker: revoker, log: log, now: time.Now}
}

func (s *sessionService) Issue(user *domain.User, remember bool) (*domain.Session, error) {
	ttl := s.cfg.TTL
	if remember {
		ttl = s.cfg.RememberTTL
	}
	now := s.now()
	exp := now.Add(ttl)

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &domain.Session{Token: signed, ExpiresAt: exp, Remember: remember}, nil
}

func (s *sessionService) ResolveCurrentUser(ctx context.Context, token string) (*domain.User, bool) {
	if token == "" {
		return nil, false
	}

	claims, err := s.parse(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("rejected session token")
		return nil, false
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.log.Warn().Err(err).Msg("revocation lookup failed, treating session as anonymous")
			return nil, false
		}
		if revoked {
			return nil, false
		}
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, false
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Warn().Err(err).Int64("user_id", id).Msg("session user lookup failed")
		}
		return nil, false
	}
	return user, true
}

func (s *sessionService) Revoke(ctx context.Context, token string) error {
	if s.revoker == nil {
		return nil
	}
	claims, err := s.parse(token)
	if err != nil {
		// Nothing worth revoking: the token is already unusable.
		return nil
	}
	remaining := claims.ExpiresAt.Time.Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, remaining); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *sessionService) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidSession
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, domain.ErrInvalidSession
	}
	return claims, nil
}
