// Package handler provides HTTP request handlers.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/tasklist/tasklist/internal/auth"
	"github.com/tasklist/tasklist/internal/middleware"
	"github.com/tasklist/tasklist/internal/view"
)

// Paths used in redirects.
const (
	pathLogin = "/login"
	pathTodos = "/todos"
)

// Handler renders pages and serves the public, non-form endpoints.
// Feature handlers share it for rendering and error pages.
type Handler struct {
	renderer      view.Renderer
	logger        *slog.Logger
	secureCookies bool
}

// New creates a new Handler. secureCookies marks flash cookies HTTPS-only.
func New(renderer view.Renderer, logger *slog.Logger, secureCookies bool) *Handler {
	return &Handler{
		renderer:      renderer,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

// Home renders the landing page.
// GET /
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.PageHome, view.Page{})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, view.PageError, view.Page{
		Title:   "Not found",
		Status:  http.StatusNotFound,
		Message: "The page you asked for does not exist.",
	})
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusMethodNotAllowed, view.PageError, view.Page{
		Title:  "Method not allowed",
		Status: http.StatusMethodNotAllowed,
	})
}

// InternalError renders the 500 page. Used as the panic fallback.
func (h *Handler) InternalError(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusInternalServerError, view.PageError, view.Page{
		Title:  "Error",
		Status: http.StatusInternalServerError,
	})
}

// render fills the session user and pending flash, then renders the page.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, page view.Page) {
	if user, ok := auth.UserFromContext(r.Context()); ok {
		page.User = &user
	}
	if page.Flash == "" {
		page.Flash = view.PopFlash(w, r)
	}

	if err := h.renderer.Render(w, status, name, page); err != nil {
		h.logger.Error("render failed",
			slog.String("page", name),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// serverError logs an unexpected error and renders the 500 page.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg,
		slog.String("error", err.Error()),
		slog.Int64("user_id", auth.UserIDFromContext(r.Context())),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	h.InternalError(w, r)
}

// flash queues a one-shot message for the next page.
func (h *Handler) flash(w http.ResponseWriter, f view.Flash) {
	view.SetFlash(w, f, h.secureCookies)
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}
