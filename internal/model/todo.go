package model

import "time"

// MaxTodoContentLength matches the width of todos.content.
const MaxTodoContentLength = 200

// Todo is a single to-do item. Ownership never transfers.
type Todo struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UserID    int64     `json:"user_id"`
}

// OwnedBy reports whether userID owns the item.
func (t *Todo) OwnedBy(userID int64) bool {
	return t.UserID == userID
}
