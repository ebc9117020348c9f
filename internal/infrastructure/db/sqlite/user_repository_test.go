package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/starterpack/webapp/internal/core/domain"
)

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

var userColumns = []string{"id", "username", "email", "password_hash", "is_active", "created_at"}

func newMockRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	})

	repo := NewUserRepository(db)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name        string
		mockExpect  func(sqlmock.Sqlmock)
		wantID      int64
		wantErr     error
		errContains string
	}{
		{
			name: "success",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("alice", "alice@example.com", "h123", true, fixedNow).
					WillReturnResult(sqlmock.NewResult(42, 1))
				m.ExpectCommit()
			},
			wantID: 42,
		},
		{
			name: "unique violation",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("alice", "alice@example.com", "h123", true, fixedNow).
					WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)"))
				m.ExpectRollback()
			},
			wantErr: domain.ErrUserExists,
		},
		{
			name: "exec error",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WillReturnError(errors.New("disk I/O error"))
				m.ExpectRollback()
			},
			errContains: "insert user",
		},
		{
			name: "last insert id error",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WillReturnResult(sqlmock.NewErrorResult(errors.New("no last id")))
				m.ExpectRollback()
			},
			errContains: "get last insert id",
		},
		{
			name: "commit error",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WillReturnResult(sqlmock.NewResult(1, 1))
				m.ExpectCommit().WillReturnError(errors.New("database is locked"))
			},
			errContains: "commit user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.mockExpect(mock)

			u := &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h123", IsActive: true}
			err := repo.Create(context.Background(), u)

			if tt.wantErr != nil || tt.errContains != "" {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("expected error to contain %q, got %q", tt.errContains, err.Error())
				}
				if u.ID != 0 {
					t.Fatalf("expected id to stay unset on error, got %d", u.ID)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if u.ID != tt.wantID {
				t.Fatalf("unexpected id: want %d, got %d", tt.wantID, u.ID)
			}
			if !u.CreatedAt.Equal(fixedNow) {
				t.Fatalf("expected created_at to be set, got %v", u.CreatedAt)
			}
		})
	}
}

func TestUserRepository_FindByUsername(t *testing.T) {
	tests := []struct {
		name        string
		mockExpect  func(sqlmock.Sqlmock)
		wantUser    *domain.User
		wantErr     error
		errContains string
	}{
		{
			name: "found",
			mockExpect: func(m sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(userColumns).AddRow(7, "alice", "alice@example.com", "h123", true, fixedNow)
				m.ExpectQuery(regexp.QuoteMeta(selectByNameSQL)).WithArgs("alice").WillReturnRows(rows)
			},
			wantUser: &domain.User{ID: 7, Username: "alice", Email: "alice@example.com", PasswordHash: "h123", IsActive: true},
		},
		{
			name: "not found",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectByNameSQL)).WithArgs("alice").WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrUserNotFound,
		},
		{
			name: "query error",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectByNameSQL)).WithArgs("alice").WillReturnError(errors.New("db query failed"))
			},
			errContains: "select user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.mockExpect(mock)

			u, err := repo.FindByUsername(context.Background(), "alice")

			if tt.wantErr != nil || tt.errContains != "" {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("expected error to contain %q, got %q", tt.errContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if u.ID != tt.wantUser.ID || u.Username != tt.wantUser.Username || u.Email != tt.wantUser.Email ||
				u.PasswordHash != tt.wantUser.PasswordHash || u.IsActive != tt.wantUser.IsActive {
				t.Fatalf("unexpected user: want %+v, got %+v", tt.wantUser, u)
			}
		})
	}
}

func TestUserRepository_FindByIDAndEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectByIDSQL)).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(3, "bob", "bob@example.com", "h", true, fixedNow))
	mock.ExpectQuery(regexp.QuoteMeta(selectByEmailSQL)).WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.FindByID(context.Background(), 3)
	if err != nil || u.Username != "bob" {
		t.Fatalf("FindByID: got %+v, %v", u, err)
	}
	if _, err := repo.FindByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("FindByEmail: expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_List(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows(userColumns).
		AddRow(1, "alice", "alice@example.com", "h1", true, fixedNow).
		AddRow(2, "bob", "bob@example.com", "h2", false, fixedNow)
	mock.ExpectQuery(regexp.QuoteMeta(selectAllSQL)).WillReturnRows(rows)

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].ID != 1 || users[1].Username != "bob" || users[1].IsActive {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestUserRepository_List_Empty(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectAllSQL)).WillReturnRows(sqlmock.NewRows(userColumns))

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", users)
	}
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS users")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("EnsureSchema returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}
