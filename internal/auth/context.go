package auth

import (
	"context"

	"github.com/tasklist/tasklist/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const userContextKey contextKey = "session_user"

// ContextWithUser stores the authenticated user in ctx.
func ContextWithUser(ctx context.Context, user model.UserRef) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (model.UserRef, bool) {
	user, ok := ctx.Value(userContextKey).(model.UserRef)
	if !ok || user.IsZero() {
		return model.UserRef{}, false
	}
	return user, true
}

// MustUserFromContext returns the authenticated user.
// Panics if not present (use only behind RequireUser).
func MustUserFromContext(ctx context.Context) model.UserRef {
	user, ok := UserFromContext(ctx)
	if !ok {
		panic("session user not found - ensure RequireUser middleware is applied")
	}
	return user
}

// UserIDFromContext returns the authenticated user id or 0.
func UserIDFromContext(ctx context.Context) int64 {
	user, _ := UserFromContext(ctx)
	return user.ID
}
