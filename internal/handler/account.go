package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tasklist/tasklist/internal/auth"
	"github.com/tasklist/tasklist/internal/metrics"
	"github.com/tasklist/tasklist/internal/middleware"
	"github.com/tasklist/tasklist/internal/model"
	"github.com/tasklist/tasklist/internal/service"
	"github.com/tasklist/tasklist/internal/view"
)

// User-visible messages.
const (
	msgUsernameExists     = "Username already exists"
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidUsername    = "Username must be 1 to 80 characters of plain text"
	msgInvalidPassword    = "Password must be between 1 and 256 characters"
	msgBadForm            = "The form could not be read, please try again"
)

// Accounts is the credential store as seen by the handlers.
type Accounts interface {
	Signup(ctx context.Context, input service.SignupInput) (*model.User, error)
	VerifyCredential(ctx context.Context, username, password string) (*model.User, error)
}

// Sessions establishes and terminates authenticated sessions.
type Sessions interface {
	Establish(w http.ResponseWriter, r *http.Request, user model.UserRef) error
	Terminate(w http.ResponseWriter, r *http.Request) error
}

// AccountHandler handles signup, login and logout.
type AccountHandler struct {
	pages    *Handler
	accounts Accounts
	sessions Sessions
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(pages *Handler, accounts Accounts, sessions Sessions, recorder metrics.Recorder, logger *slog.Logger) *AccountHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccountHandler{
		pages:    pages,
		accounts: accounts,
		sessions: sessions,
		metrics:  recorder,
		logger:   logger,
	}
}

// SignupForm renders the signup form.
// GET /signup
func (h *AccountHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, r, http.StatusOK, view.PageSignup, view.Page{Title: "Sign up"})
}

// Signup creates an account and sends the user to the login form.
// It never authenticates.
// POST /signup
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	page := view.Page{Title: "Sign up"}
	if err := r.ParseForm(); err != nil {
		page.Error = msgBadForm
		h.pages.render(w, r, http.StatusBadRequest, view.PageSignup, page)
		return
	}

	page.Username = r.PostFormValue("username")
	user, err := h.accounts.Signup(r.Context(), service.SignupInput{
		Username: page.Username,
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			page.Error = msgUsernameExists
			h.pages.render(w, r, http.StatusConflict, view.PageSignup, page)
		case errors.Is(err, service.ErrInvalidUsername):
			page.Error = msgInvalidUsername
			h.pages.render(w, r, http.StatusUnprocessableEntity, view.PageSignup, page)
		case errors.Is(err, service.ErrInvalidPassword):
			page.Error = msgInvalidPassword
			h.pages.render(w, r, http.StatusUnprocessableEntity, view.PageSignup, page)
		default:
			h.pages.serverError(w, r, "signup failed", err)
		}
		return
	}

	h.logger.Info("user_signed_up",
		slog.Int64("user_id", user.ID),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	h.pages.flash(w, view.FlashAccountCreated)
	redirect(w, r, pathLogin)
}

// LoginForm renders the login form.
// GET /login
func (h *AccountHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, r, http.StatusOK, view.PageLogin, view.Page{Title: "Log in"})
}

// Login verifies credentials and establishes a session.
// Unknown user and wrong password render the same message.
// POST /login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	page := view.Page{Title: "Log in"}
	if err := r.ParseForm(); err != nil {
		page.Error = msgBadForm
		h.pages.render(w, r, http.StatusBadRequest, view.PageLogin, page)
		return
	}

	page.Username = r.PostFormValue("username")
	user, err := h.accounts.VerifyCredential(r.Context(), page.Username, r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			page.Error = msgInvalidCredentials
			h.pages.render(w, r, http.StatusUnauthorized, view.PageLogin, page)
			return
		}
		h.pages.serverError(w, r, "login failed", err)
		return
	}

	if err := h.sessions.Establish(w, r, user.Ref()); err != nil {
		h.pages.serverError(w, r, "failed to establish session", err)
		return
	}

	h.logger.Info("user_logged_in",
		slog.Int64("user_id", user.ID),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	redirect(w, r, pathTodos)
}

// Logout terminates the session, if any, and redirects to the login form.
// GET /logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	_, wasAuthenticated := auth.UserFromContext(r.Context())

	if err := h.sessions.Terminate(w, r); err != nil {
		// The cookie is already cleared; a stale server-side entry expires on its own.
		h.logger.Warn("failed to delete session",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
	}
	if wasAuthenticated {
		h.metrics.IncLogout()
	}
	redirect(w, r, pathLogin)
}
