package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tasklist/tasklist/internal/model"
)

// Common errors for todo repository operations.
var (
	ErrTodoNotFound = errors.New("todo not found")
	ErrNotOwner     = errors.New("todo belongs to another user")
)

// CreateTodo inserts a todo. ID and CreatedAt are assigned by the database.
func (r *Repository) CreateTodo(ctx context.Context, todo *model.Todo) error {
	query := `
		INSERT INTO todos (content, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, todo.Content, todo.UserID).Scan(&todo.ID, &todo.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	return nil
}

// GetTodoByID retrieves a todo regardless of owner.
func (r *Repository) GetTodoByID(ctx context.Context, id int64) (*model.Todo, error) {
	query := `
		SELECT id, content, created_at, user_id
		FROM todos
		WHERE id = $1
	`

	todo, err := scanTodo(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo by ID: %w", err)
	}

	return todo, nil
}

// ListTodosByOwner returns the owner's todos, newest first.
// Ties on created_at are broken by id so the order is deterministic.
func (r *Repository) ListTodosByOwner(ctx context.Context, ownerID int64) ([]*model.Todo, error) {
	query := `
		SELECT id, content, created_at, user_id
		FROM todos
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]*model.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}

	return todos, nil
}

// UpdateTodoContent overwrites the content of a todo owned by requesterID.
// Ownership is checked under a row lock in the same transaction.
func (r *Repository) UpdateTodoContent(ctx context.Context, id, requesterID int64, content string) (*model.Todo, error) {
	var updated *model.Todo

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockOwnedTodo(ctx, tx, id, requesterID); err != nil {
			return err
		}

		query := `
			UPDATE todos
			SET content = $2
			WHERE id = $1
			RETURNING id, content, created_at, user_id
		`

		todo, err := scanTodo(tx.QueryRow(ctx, query, id, content))
		if err != nil {
			return fmt.Errorf("failed to update todo: %w", err)
		}
		updated = todo
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteTodo removes exactly one todo owned by requesterID.
func (r *Repository) DeleteTodo(ctx context.Context, id, requesterID int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockOwnedTodo(ctx, tx, id, requesterID); err != nil {
			return err
		}

		result, err := tx.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete todo: %w", err)
		}
		if result.RowsAffected() != 1 {
			return ErrTodoNotFound
		}
		return nil
	})
}

// lockOwnedTodo takes a row lock and verifies ownership.
func lockOwnedTodo(ctx context.Context, tx pgx.Tx, id, requesterID int64) error {
	var ownerID int64
	err := tx.QueryRow(ctx, `SELECT user_id FROM todos WHERE id = $1 FOR UPDATE`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTodoNotFound
		}
		return fmt.Errorf("failed to lock todo: %w", err)
	}
	if ownerID != requesterID {
		return ErrNotOwner
	}
	return nil
}

func scanTodo(row pgx.Row) (*model.Todo, error) {
	var todo model.Todo
	err := row.Scan(
		&todo.ID,
		&todo.Content,
		&todo.CreatedAt,
		&todo.UserID,
	)
	return &todo, err
}
