package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tasklist/tasklist/internal/auth"
	"github.com/tasklist/tasklist/internal/middleware"
	"github.com/tasklist/tasklist/internal/model"
	"github.com/tasklist/tasklist/internal/service"
	"github.com/tasklist/tasklist/internal/view"
)

const (
	msgContentRequired = "Todo content is required"
	msgContentTooLong  = "Todo content must be at most 200 characters"
	msgContentInvalid  = "Todo content contains characters that cannot be saved"
)

// Todos is the item store as seen by the handlers.
type Todos interface {
	Create(ctx context.Context, ownerID int64, content string) (*model.Todo, error)
	List(ctx context.Context, ownerID int64) ([]*model.Todo, error)
	GetOwned(ctx context.Context, id, requesterID int64) (*model.Todo, error)
	UpdateContent(ctx context.Context, id, requesterID int64, content string) (*model.Todo, error)
	Delete(ctx context.Context, id, requesterID int64) error
}

// TodoHandler handles the authenticated todo pages.
// Every route it serves sits behind RequireUser.
type TodoHandler struct {
	pages  *Handler
	todos  Todos
	logger *slog.Logger
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(pages *Handler, todos Todos, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{
		pages:  pages,
		todos:  todos,
		logger: logger,
	}
}

// List renders the user's todos, newest first.
// GET /todos
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, http.StatusOK, view.Page{})
}

// Create adds a todo, then redirects back to the list.
// POST /todos
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		h.renderList(w, r, http.StatusBadRequest, view.Page{Error: msgBadForm})
		return
	}

	content := r.PostFormValue("content")
	if _, err := h.todos.Create(r.Context(), user.ID, content); err != nil {
		if msg, ok := contentMessage(err); ok {
			h.renderList(w, r, http.StatusUnprocessableEntity, view.Page{Error: msg, Content: content})
			return
		}
		h.pages.serverError(w, r, "failed to create todo", err)
		return
	}

	redirect(w, r, pathTodos)
}

func (h *TodoHandler) renderList(w http.ResponseWriter, r *http.Request, status int, page view.Page) {
	user := auth.MustUserFromContext(r.Context())

	todos, err := h.todos.List(r.Context(), user.ID)
	if err != nil {
		h.pages.serverError(w, r, "failed to list todos", err)
		return
	}

	page.Title = "My todos"
	page.Todos = todos
	h.pages.render(w, r, status, view.PageTodos, page)
}

// Delete removes an owned todo. Missing, foreign and malformed ids redirect
// without a message.
// GET /delete/{id}
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	id, ok := todoID(r)
	if !ok {
		redirect(w, r, pathTodos)
		return
	}

	if err := h.todos.Delete(r.Context(), id, user.ID); err != nil && !h.silent(r, "delete", id, err) {
		h.pages.serverError(w, r, "failed to delete todo", err)
		return
	}

	redirect(w, r, pathTodos)
}

// EditForm renders the edit form for an owned todo.
// GET /update/{id}
func (h *TodoHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	id, ok := todoID(r)
	if !ok {
		redirect(w, r, pathTodos)
		return
	}

	todo, err := h.todos.GetOwned(r.Context(), id, user.ID)
	if err != nil {
		if h.silent(r, "update", id, err) {
			redirect(w, r, pathTodos)
			return
		}
		h.pages.serverError(w, r, "failed to load todo", err)
		return
	}

	h.pages.render(w, r, http.StatusOK, view.PageUpdate, view.Page{
		Title:   "Edit todo",
		Todo:    todo,
		Content: todo.Content,
	})
}

// Update replaces the content of an owned todo, then redirects to the list.
// POST /update/{id}
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	id, ok := todoID(r)
	if !ok {
		redirect(w, r, pathTodos)
		return
	}

	if err := r.ParseForm(); err != nil {
		redirect(w, r, pathTodos)
		return
	}

	content := r.PostFormValue("content")
	_, err := h.todos.UpdateContent(r.Context(), id, user.ID, content)
	if err == nil {
		redirect(w, r, pathTodos)
		return
	}

	if h.silent(r, "update", id, err) {
		redirect(w, r, pathTodos)
		return
	}

	msg, ok := contentMessage(err)
	if !ok {
		h.pages.serverError(w, r, "failed to update todo", err)
		return
	}

	// Ownership was confirmed before content validation failed.
	todo, gerr := h.todos.GetOwned(r.Context(), id, user.ID)
	if gerr != nil {
		redirect(w, r, pathTodos)
		return
	}
	h.pages.render(w, r, http.StatusUnprocessableEntity, view.PageUpdate, view.Page{
		Title:   "Edit todo",
		Todo:    todo,
		Content: content,
		Error:   msg,
	})
}

// silent reports whether err is a not-found or not-owner outcome that the
// caller answers with a plain redirect. Ownership denials are logged.
func (h *TodoHandler) silent(r *http.Request, op string, id int64, err error) bool {
	switch {
	case errors.Is(err, service.ErrTodoNotFound):
		return true
	case errors.Is(err, service.ErrNotOwner):
		h.logger.Warn("ownership_denied",
			slog.String("operation", op),
			slog.Int64("todo_id", id),
			slog.Int64("user_id", auth.UserIDFromContext(r.Context())),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		return true
	default:
		return false
	}
}

func contentMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, service.ErrContentRequired):
		return msgContentRequired, true
	case errors.Is(err, service.ErrContentTooLong):
		return msgContentTooLong, true
	case errors.Is(err, service.ErrContentInvalid):
		return msgContentInvalid, true
	default:
		return "", false
	}
}

// todoID parses the {id} URL parameter. Only positive integers are valid.
func todoID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
