// Package session binds an authenticated identity to a browser cookie.
package session

import (
	"context"
	"errors"

	"github.com/tasklist/tasklist/internal/model"
)

// ErrSessionNotFound means the token names no live session. Callers treat it
// as anonymous.
var ErrSessionNotFound = errors.New("session not found")

// Store persists sessions behind opaque tokens.
type Store interface {
	// Save creates a session for user and returns the cookie value.
	Save(ctx context.Context, user model.UserRef) (string, error)
	// Load resolves a cookie value. Returns ErrSessionNotFound when anonymous.
	Load(ctx context.Context, token string) (*model.UserRef, error)
	// Delete ends the session. Unknown tokens are not an error.
	Delete(ctx context.Context, token string) error
}
