package middleware

import (
	"log/slog"
	"net/http"

	"github.com/tasklist/tasklist/internal/auth"
	"github.com/tasklist/tasklist/internal/model"
)

// SessionLoader resolves the session carried by a request.
type SessionLoader interface {
	CurrentUser(r *http.Request) (*model.UserRef, error)
}

// LoadSession puts the session user, if any, into the request context.
// Store failures are logged and the request continues as anonymous.
func LoadSession(sessions SessionLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := sessions.CurrentUser(r)
			if err != nil {
				logger.Error("session lookup failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}
			if user == nil || user.IsZero() {
				next.ServeHTTP(w, r)
				return
			}

			annotateUser(r.Context(), user.ID)
			next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), *user)))
		})
	}
}

// RequireUser redirects anonymous requests to loginPath with 303 See Other.
// Must be applied after LoadSession.
func RequireUser(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.UserFromContext(r.Context()); !ok {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
