package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/starterpack/webapp/internal/core/domain"
	"github.com/starterpack/webapp/internal/core/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

const (
	insertUserSQL     = `INSERT INTO users (username, email, password_hash, is_active, created_at) VALUES (?, ?, ?, ?, ?)`
	selectUserColumns = `SELECT id, username, email, password_hash, is_active, created_at FROM users`
	selectByIDSQL     = selectUserColumns + ` WHERE id = ?`
	selectByNameSQL   = selectUserColumns + ` WHERE username = ?`
	selectByEmailSQL  = selectUserColumns + ` WHERE email = ?`
	selectAllSQL      = selectUserColumns + ` ORDER BY id`
)

type UserRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts user inside a transaction. Any failure before Commit rolls the
// transaction back, so a failed request never leaves a partial write.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert user %q: %w", user.Username, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	createdAt := r.now()
	res, err := tx.ExecContext(ctx, insertUserSQL, user.Username, user.Email, user.PasswordHash, user.IsActive, createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user %q: %w", user.Username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id for user %q: %w", user.Username, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit user %q: %w", user.Username, err)
	}

	user.ID = id
	user.CreatedAt = createdAt
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, selectByIDSQL, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, selectByNameSQL, username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, selectByEmailSQL, email)
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectAllSQL)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlitedrv.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
