package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/starterpack/webapp/internal/core/domain"
	"github.com/starterpack/webapp/internal/core/ports"
)

// Ensure UserStore satisfies the ports.UserRepository interface at compile time.
var _ ports.UserRepository = (*UserStore)(nil)

const uniqueViolation = "23505"

const selectUser = `SELECT id, username, email, password_hash, is_active, created_at FROM users`

// UserStore provides Postgres-backed persistence for users.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore connects to databaseURL and runs migrations.
func NewUserStore(ctx context.Context, databaseURL string) (*UserStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &UserStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases database resources.
func (s *UserStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *UserStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL CHECK (password_hash <> ''),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS is_active BOOLEAN NOT NULL DEFAULT TRUE;`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// Create inserts user in a transaction that is rolled back unless committed.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert user: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const query = `
		INSERT INTO users (username, email, password_hash, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err = tx.QueryRow(ctx, query, user.Username, user.Email, user.PasswordHash, user.IsActive).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user %q: %w", user.Username, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit user %q: %w", user.Username, err)
	}
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(s.pool.QueryRow(ctx, selectUser+` WHERE id = $1`, id))
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(s.pool.QueryRow(ctx, selectUser+` WHERE username = $1`, username))
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(s.pool.QueryRow(ctx, selectUser+` WHERE email = $1`, email))
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, selectUser+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (s *UserStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
