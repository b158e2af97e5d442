package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ErrInvalidRoute is returned by Mount for a malformed route table.
var ErrInvalidRoute = errors.New("invalid route")

var knownMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Route is one row of the route table.
type Route struct {
	Method  string
	Pattern string
	Name    string
	// Auth routes redirect anonymous requests to the login form.
	Auth bool
	// Limited routes pass through the credential rate limiter.
	Limited bool
	Handler http.HandlerFunc
}

// Handlers groups everything the route table points at.
type Handlers struct {
	Pages    *Handler
	Accounts *AccountHandler
	Todos    *TodoHandler
	Health   *HealthHandler
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler
}

// Routes returns the application route table.
func (hs Handlers) Routes() []Route {
	routes := []Route{
		{Method: http.MethodGet, Pattern: "/", Name: "home", Handler: hs.Pages.Home},

		{Method: http.MethodGet, Pattern: "/signup", Name: "signup_form", Handler: hs.Accounts.SignupForm},
		{Method: http.MethodPost, Pattern: "/signup", Name: "signup", Limited: true, Handler: hs.Accounts.Signup},
		{Method: http.MethodGet, Pattern: "/login", Name: "login_form", Handler: hs.Accounts.LoginForm},
		{Method: http.MethodPost, Pattern: "/login", Name: "login", Limited: true, Handler: hs.Accounts.Login},
		{Method: http.MethodGet, Pattern: "/logout", Name: "logout", Handler: hs.Accounts.Logout},

		{Method: http.MethodGet, Pattern: "/todos", Name: "todo_list", Auth: true, Handler: hs.Todos.List},
		{Method: http.MethodPost, Pattern: "/todos", Name: "todo_create", Auth: true, Handler: hs.Todos.Create},
		{Method: http.MethodGet, Pattern: "/delete/{id}", Name: "todo_delete", Auth: true, Handler: hs.Todos.Delete},
		{Method: http.MethodGet, Pattern: "/update/{id}", Name: "todo_edit", Auth: true, Handler: hs.Todos.EditForm},
		{Method: http.MethodPost, Pattern: "/update/{id}", Name: "todo_update", Auth: true, Handler: hs.Todos.Update},

		{Method: http.MethodGet, Pattern: "/healthz", Name: "healthz", Handler: hs.Health.Healthz},
		{Method: http.MethodGet, Pattern: "/readyz", Name: "readyz", Handler: hs.Health.Readyz},
	}

	if hs.Metrics != nil {
		routes = append(routes, Route{Method: http.MethodGet, Pattern: "/metrics", Name: "metrics", Handler: hs.Metrics.ServeHTTP})
	}
	return routes
}

// MountOptions supplies the per-route middleware referenced by Route flags.
type MountOptions struct {
	RequireAuth func(http.Handler) http.Handler
	RateLimit   func(http.Handler) http.Handler
}

// ValidateRoutes checks the table: known method, absolute pattern, non-nil
// handler and no duplicate method+pattern.
func ValidateRoutes(routes []Route) error {
	seen := make(map[string]string, len(routes))
	for i, rt := range routes {
		label := rt.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		switch {
		case !knownMethods[rt.Method]:
			return fmt.Errorf("%w %s: unknown method %q", ErrInvalidRoute, label, rt.Method)
		case !strings.HasPrefix(rt.Pattern, "/"):
			return fmt.Errorf("%w %s: pattern %q must start with /", ErrInvalidRoute, label, rt.Pattern)
		case rt.Handler == nil:
			return fmt.Errorf("%w %s: nil handler", ErrInvalidRoute, label)
		}

		key := rt.Method + " " + rt.Pattern
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("%w %s: %s already registered by %s", ErrInvalidRoute, label, key, prev)
		}
		seen[key] = label
	}
	return nil
}

// Mount validates routes and registers them on r.
func Mount(r chi.Router, routes []Route, opts MountOptions) error {
	if err := ValidateRoutes(routes); err != nil {
		return err
	}

	for _, rt := range routes {
		var h http.Handler = rt.Handler
		if rt.Auth {
			if opts.RequireAuth == nil {
				return fmt.Errorf("%w %s: auth route without RequireAuth", ErrInvalidRoute, rt.Name)
			}
			h = opts.RequireAuth(h)
		}
		if rt.Limited && opts.RateLimit != nil {
			h = opts.RateLimit(h)
		}
		r.Method(rt.Method, rt.Pattern, h)
	}
	return nil
}
