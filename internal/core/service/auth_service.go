package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/starterpack/webapp/internal/core/domain"
	"github.com/starterpack/webapp/internal/core/ports"
)

// usersCacheKey holds the cached user listing; every insert invalidates it.
const usersCacheKey = "cache:users:all"

// welcomeMailTimeout bounds the SMTP round trip made during registration.
const welcomeMailTimeout = 5 * time.Second

type authService struct {
	repo   ports.UserRepository
	cache  ports.Cache
	mailer ports.Mailer
	log    zerolog.Logger
}

// NewAuthService returns an AuthService implementation.
func NewAuthService(repo ports.UserRepository, cache ports.Cache, mailer ports.Mailer, log zerolog.Logger) ports.AuthService {
	return &authService{repo: repo, cache: cache, mailer: mailer, log: log}
}

func (s *authService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	// Lookups run before any write so a rejected form never mutates the store.
	if _, err := s.repo.FindByUsername(ctx, in.Username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: lookup username: %w", err)
	}
	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}

	user, err := s.create(ctx, in.Username, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	mailCtx, cancel := context.WithTimeout(ctx, welcomeMailTimeout)
	defer cancel()
	if err := s.mailer.SendWelcome(mailCtx, user); err != nil {
		s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("welcome email not sent")
	}
	return user, nil
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !user.CheckPassword(password) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *authService) CreateTestUser(ctx context.Context) (*domain.User, error) {
	if _, err := s.repo.FindByUsername(ctx, ports.TestUsername); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("create test user: %w", err)
	}
	return s.create(ctx, ports.TestUsername, ports.TestEmail, ports.TestPassword)
}

func (s *authService) create(ctx context.Context, username, email, password string) (*domain.User, error) {
	user, err := domain.NewUser(username, email, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.cache.Delete(ctx, usersCacheKey); err != nil {
		s.log.Warn().Err(err).Msg("user listing cache not invalidated")
	}

	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user created")
	return user, nil
}
