package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/tasklist/tasklist/internal/model"
)

// DefaultCookieName is used when Config.CookieName is empty.
const DefaultCookieName = "tasklist_session"

// Config holds cookie settings for a Manager.
type Config struct {
	CookieName string
	TTL        time.Duration
	// Secure marks the cookie HTTPS-only. Disabled in development.
	Secure bool
}

// Manager moves a request between the anonymous and authenticated states.
// Only Establish and Terminate change state.
type Manager struct {
	store  Store
	name   string
	ttl    time.Duration
	secure bool
}

// NewManager creates a Manager over store.
func NewManager(store Store, cfg Config) *Manager {
	name := cfg.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	return &Manager{
		store:  store,
		name:   name,
		ttl:    cfg.TTL,
		secure: cfg.Secure,
	}
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.name
}

// Establish starts an authenticated session for user. Any session the
// request already carries is ended first.
func (m *Manager) Establish(w http.ResponseWriter, r *http.Request, user model.UserRef) error {
	if c, err := r.Cookie(m.name); err == nil && c.Value != "" {
		if err := m.store.Delete(r.Context(), c.Value); err != nil {
			return err
		}
	}

	token, err := m.store.Save(r.Context(), user)
	if err != nil {
		return err
	}

	http.SetCookie(w, m.cookie(token, int(m.ttl.Seconds())))
	return nil
}

// CurrentUser resolves the session cookie. It returns nil with a nil error
// for anonymous requests and an error only when the store itself failed.
func (m *Manager) CurrentUser(r *http.Request) (*model.UserRef, error) {
	c, err := r.Cookie(m.name)
	if err != nil || c.Value == "" {
		return nil, nil
	}

	user, err := m.store.Load(r.Context(), c.Value)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Terminate ends the current session, if any, and expires the cookie.
// The cookie is cleared even when the store delete fails.
func (m *Manager) Terminate(w http.ResponseWriter, r *http.Request) error {
	var err error
	if c, cerr := r.Cookie(m.name); cerr == nil && c.Value != "" {
		err = m.store.Delete(r.Context(), c.Value)
	}
	http.SetCookie(w, m.cookie("", -1))
	return err
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
