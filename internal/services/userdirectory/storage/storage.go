// Package storage defines the persistence contract of the user directory.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no user has the requested id.
var ErrNotFound = errors.New("user not found")

// User is one persisted directory record.
type User struct {
	ID         int64
	Name       string
	Email      string
	Department string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UserInput carries the writable fields of a record.
type UserInput struct {
	Name       string
	Email      string
	Department string
}

// UserStore persists directory users. Ids are assigned by the store.
type UserStore interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, input UserInput) (User, error)
	UpdateUser(ctx context.Context, id int64, input UserInput) (User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Store is the composite storage interface of the directory service.
type Store interface {
	UserStore
	Close() error
}
