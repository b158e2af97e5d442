package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tasklist/tasklist/internal/metrics"
	"github.com/tasklist/tasklist/internal/model"
	"github.com/tasklist/tasklist/internal/repository"
)

// TodoRepository is the persistence contract of the item store.
type TodoRepository interface {
	CreateTodo(ctx context.Context, todo *model.Todo) error
	GetTodoByID(ctx context.Context, id int64) (*model.Todo, error)
	ListTodosByOwner(ctx context.Context, ownerID int64) ([]*model.Todo, error)
	UpdateTodoContent(ctx context.Context, id, requesterID int64, content string) (*model.Todo, error)
	DeleteTodo(ctx context.Context, id, requesterID int64) error
}

// TodoService handles todo business logic. Every mutation is scoped to the
// requesting user.
type TodoService struct {
	repo    TodoRepository
	metrics metrics.Recorder
}

// NewTodoService creates a new TodoService.
func NewTodoService(repo TodoRepository, recorder metrics.Recorder) *TodoService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TodoService{
		repo:    repo,
		metrics: recorder,
	}
}

// Create adds a todo owned by ownerID.
func (s *TodoService) Create(ctx context.Context, ownerID int64, content string) (*model.Todo, error) {
	content = NormalizeContent(content)
	if err := ValidateContent(content); err != nil {
		return nil, err
	}

	todo := &model.Todo{
		Content: content,
		UserID:  ownerID,
	}
	if err := s.repo.CreateTodo(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	s.metrics.IncTodoCreated()
	return todo, nil
}

// List returns the owner's todos, newest first.
func (s *TodoService) List(ctx context.Context, ownerID int64) ([]*model.Todo, error) {
	return s.repo.ListTodosByOwner(ctx, ownerID)
}

// Get retrieves a todo by ID without an ownership check.
func (s *TodoService) Get(ctx context.Context, id int64) (*model.Todo, error) {
	todo, err := s.repo.GetTodoByID(ctx, id)
	if err != nil {
		return nil, mapTodoError(err)
	}
	return todo, nil
}

// GetOwned retrieves a todo only if requesterID owns it.
func (s *TodoService) GetOwned(ctx context.Context, id, requesterID int64) (*model.Todo, error) {
	todo, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !todo.OwnedBy(requesterID) {
		return nil, ErrNotOwner
	}
	return todo, nil
}

// UpdateContent overwrites the content of an owned todo.
// Not-found and not-owner take precedence over content validation so the
// caller learns nothing about content rules for items it cannot touch.
func (s *TodoService) UpdateContent(ctx context.Context, id, requesterID int64, content string) (*model.Todo, error) {
	content = NormalizeContent(content)
	if verr := ValidateContent(content); verr != nil {
		if _, err := s.GetOwned(ctx, id, requesterID); err != nil {
			s.noteDenied("update", err)
			return nil, err
		}
		return nil, verr
	}

	todo, err := s.repo.UpdateTodoContent(ctx, id, requesterID, content)
	if err != nil {
		err = mapTodoError(err)
		s.noteDenied("update", err)
		return nil, err
	}

	s.metrics.IncTodoUpdated()
	return todo, nil
}

// Delete removes an owned todo.
func (s *TodoService) Delete(ctx context.Context, id, requesterID int64) error {
	if err := s.repo.DeleteTodo(ctx, id, requesterID); err != nil {
		err = mapTodoError(err)
		s.noteDenied("delete", err)
		return err
	}

	s.metrics.IncTodoDeleted()
	return nil
}

func (s *TodoService) noteDenied(operation string, err error) {
	if errors.Is(err, ErrNotOwner) {
		s.metrics.IncOwnershipDenied(operation)
	}
}

func mapTodoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrTodoNotFound):
		return ErrTodoNotFound
	case errors.Is(err, repository.ErrNotOwner):
		return ErrNotOwner
	default:
		return err
	}
}
