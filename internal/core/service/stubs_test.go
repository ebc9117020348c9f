package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/starterpack/webapp/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID      map[int64]*domain.User
	nextID    int64
	creates   int
	listCalls int
	createErr error // if set, Create returns this error
	findErr   error // if set, every lookup returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[int64]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	// Mirrors the UNIQUE constraints of the real tables.
	for _, existing := range r.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return domain.ErrUserExists
		}
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now().UTC()
	clone := *u
	r.byID[u.ID] = &clone
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *stubUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.listCalls++
	out := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) Ping(context.Context) error { return nil }

// ---------------------------------------------------------------------------
// Cache, mailer and revoker stubs
// ---------------------------------------------------------------------------

type stubCache struct {
	entries map[string][]byte
	deletes int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string][]byte)}
}

func (c *stubCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *stubCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.entries[key] = value
	return nil
}

func (c *stubCache) Delete(_ context.Context, keys ...string) error {
	c.deletes++
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

type stubMailer struct {
	sent     []string
	err      error
	deadline time.Time
}

func (m *stubMailer) SendWelcome(ctx context.Context, u *domain.User) error {
	m.deadline, _ = ctx.Deadline()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, u.Email)
	return nil
}

type stubRevoker struct {
	revoked map[string]time.Duration
	err     error
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]time.Duration)}
}

func (r *stubRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if r.err != nil {
		return r.err
	}
	r.revoked[jti] = ttl
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.revoked[jti]
	return ok, nil
}

var errBoom = errors.New("boom")
