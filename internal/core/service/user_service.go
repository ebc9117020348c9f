package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/starterpack/webapp/internal/core/domain"
	"github.com/starterpack/webapp/internal/core/ports"
)

type userService struct {
	repo  ports.UserRepository
	cache ports.Cache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewUserService returns a UserService that serves the listing cache-aside.
func NewUserService(repo ports.UserRepository, cache ports.Cache, ttl time.Duration, log zerolog.Logger) ports.UserService {
	return &userService{repo: repo, cache: cache, ttl: ttl, log: log}
}

// List returns all users ordered by ID. Cached entries carry public fields only.
func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	if raw, found, err := s.cache.Get(ctx, usersCacheKey); err != nil {
		s.log.Warn().Err(err).Msg("user listing cache read failed")
	} else if found {
		var users []domain.User
		if err := json.Unmarshal(raw, &users); err == nil {
			return users, nil
		}
		s.log.Warn().Msg("discarding malformed user listing cache entry")
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}

	if raw, err := json.Marshal(users); err == nil {
		if err := s.cache.Set(ctx, usersCacheKey, raw, s.ttl); err != nil {
			s.log.Warn().Err(err).Msg("user listing cache write failed")
		}
	}
	return users, nil
}
