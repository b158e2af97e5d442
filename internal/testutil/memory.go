package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tasklist/tasklist/internal/model"
	"github.com/tasklist/tasklist/internal/repository"
)

// MemoryStore is an in-memory stand-in for repository.Repository.
// It returns the same sentinel errors and ordering as the PostgreSQL store.
type MemoryStore struct {
	mu         sync.Mutex
	users      map[int64]*model.User
	todos      map[int64]*model.Todo
	nextUserID int64
	nextTodoID int64
	now        func() time.Time

	// FailWith, when set, is returned by every call.
	FailWith error
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[int64]*model.User),
		todos: make(map[int64]*model.Todo),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the timestamp source for created_at.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// checkText rejects text the way PostgreSQL does for a UTF8 database.
func checkText(op, s string) error {
	if utf8.ValidString(s) && !strings.ContainsRune(s, 0) {
		return nil
	}
	return fmt.Errorf("%s: %w", op, &pgconn.PgError{
		Code:    "22021",
		Message: `invalid byte sequence for encoding "UTF8"`,
	})
}

// Ping always succeeds unless FailWith is set.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return m.FailWith
}

func (m *MemoryStore) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	if err := checkText("failed to create user", user.Username); err != nil {
		return err
	}

	for _, u := range m.users {
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
	}

	m.nextUserID++
	user.ID = m.nextUserID
	user.CreatedAt = m.now()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	if err := checkText("failed to get user by username", username); err != nil {
		return nil, err
	}

	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// UserCount returns the number of stored users.
func (m *MemoryStore) UserCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *MemoryStore) CreateTodo(ctx context.Context, todo *model.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	if err := checkText("failed to create todo", todo.Content); err != nil {
		return err
	}

	m.nextTodoID++
	todo.ID = m.nextTodoID
	todo.CreatedAt = m.now()
	stored := *todo
	m.todos[todo.ID] = &stored
	return nil
}

func (m *MemoryStore) GetTodoByID(ctx context.Context, id int64) (*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	t, ok := m.todos[id]
	if !ok {
		return nil, repository.ErrTodoNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MemoryStore) ListTodosByOwner(ctx context.Context, ownerID int64) ([]*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	todos := make([]*model.Todo, 0)
	for _, t := range m.todos {
		if t.UserID == ownerID {
			cp := *t
			todos = append(todos, &cp)
		}
	}

	sort.Slice(todos, func(i, j int) bool {
		if !todos[i].CreatedAt.Equal(todos[j].CreatedAt) {
			return todos[i].CreatedAt.After(todos[j].CreatedAt)
		}
		return todos[i].ID > todos[j].ID
	})
	return todos, nil
}

func (m *MemoryStore) UpdateTodoContent(ctx context.Context, id, requesterID int64, content string) (*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	t, ok := m.todos[id]
	if !ok {
		return nil, repository.ErrTodoNotFound
	}
	if t.UserID != requesterID {
		return nil, repository.ErrNotOwner
	}
	if err := checkText("failed to update todo", content); err != nil {
		return nil, err
	}
	t.Content = content
	cp := *t
	return &cp, nil
}

func (m *MemoryStore) DeleteTodo(ctx context.Context, id, requesterID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}

	t, ok := m.todos[id]
	if !ok {
		return repository.ErrTodoNotFound
	}
	if t.UserID != requesterID {
		return repository.ErrNotOwner
	}
	delete(m.todos, id)
	return nil
}

// TodoCount returns the number of stored todos.
func (m *MemoryStore) TodoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.todos)
}
