// Package store defines the user model and the persistence contract.
// Implementations live in the pg and memory subpackages.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// User is the local account record. PasswordHash is nil for OAuth-only
// accounts: that is the "no local credential" marker, and password login
// rejects such accounts without consulting the hasher.
type User struct {
	ID             string
	Email          string
	Name           string
	AvatarURL      string
	EmailVerified  bool
	PasswordHash   *string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasPassword reports whether the account can authenticate locally.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// UserStore is the persistence contract for user accounts. Email lookups
// are case-insensitive; implementations store emails lowercased.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// List returns a page of users ordered by creation time plus the
	// total count.
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}
