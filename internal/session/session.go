// Package session keeps the per-browser user record written by the login
// flow.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no live session exists for an id.
var ErrNotFound = errors.New("session not found")

// User is the session record of one browser. Email is empty until a
// login completes.
type User struct {
	ID         string
	Email      string
	OAuthState string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ExpiresAt  time.Time
}

func (u User) Authenticated() bool {
	return u.Email != ""
}

func (u User) Expired(now time.Time) bool {
	return !u.ExpiresAt.IsZero() && !now.Before(u.ExpiresAt)
}

// Store persists session records. Get returns ErrNotFound for missing or
// expired sessions.
type Store interface {
	Get(ctx context.Context, id string) (*User, error)
	Save(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context) (int64, error)
}
