// Package sqlite implements the user directory storage on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/userdesk/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/userdesk/internal/services/userdirectory/storage"
	"github.com/louisbranch/userdesk/internal/services/userdirectory/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const timeFormat = time.RFC3339Nano

const userColumns = "id, name, email, department, created_at, updated_at"

// Store provides a SQLite-backed user store.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens the SQLite database at path and applies pending migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{
		sqlDB: sqlDB,
		now:   func() time.Time { return time.Now().UTC() },
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]storage.User, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []storage.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUser returns one user or storage.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id int64) (storage.User, error) {
	if err := s.ready(ctx); err != nil {
		return storage.User{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.User{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

// CreateUser inserts a user and returns it with its assigned id.
func (s *Store) CreateUser(ctx context.Context, input storage.UserInput) (storage.User, error) {
	if err := s.ready(ctx); err != nil {
		return storage.User{}, err
	}
	now := s.now()
	result, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO users (name, email, department, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		input.Name, input.Email, input.Department, now.Format(timeFormat), now.Format(timeFormat),
	)
	if err != nil {
		return storage.User{}, fmt.Errorf("create user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return storage.User{}, fmt.Errorf("create user id: %w", err)
	}
	return storage.User{
		ID:         id,
		Name:       input.Name,
		Email:      input.Email,
		Department: input.Department,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// UpdateUser replaces the writable fields of a user.
func (s *Store) UpdateUser(ctx context.Context, id int64, input storage.UserInput) (storage.User, error) {
	if err := s.ready(ctx); err != nil {
		return storage.User{}, err
	}
	result, err := s.sqlDB.ExecContext(ctx,
		"UPDATE users SET name = ?, email = ?, department = ?, updated_at = ? WHERE id = ?",
		input.Name, input.Email, input.Department, s.now().Format(timeFormat), id,
	)
	if err != nil {
		return storage.User{}, fmt.Errorf("update user %d: %w", id, err)
	}
	if err := requireAffected(result); err != nil {
		return storage.User{}, err
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes a user.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return requireAffected(result)
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (storage.User, error) {
	var (
		user      storage.User
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Department, &createdAt, &updatedAt); err != nil {
		return storage.User{}, err
	}
	var err error
	if user.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return storage.User{}, fmt.Errorf("parse created_at: %w", err)
	}
	if user.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
		return storage.User{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return user, nil
}

var _ storage.Store = (*Store)(nil)
