// Package model defines domain entities for the application.
package model

import "time"

// MaxUsernameLength matches the width of users.username.
const MaxUsernameLength = 80

// User is an account holder. PasswordHash is an Argon2id PHC string.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Ref returns the session-facing identity of the user.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Username: u.Username}
}

// UserRef is the identity carried by an authenticated session.
// The zero value means anonymous.
type UserRef struct {
	ID       int64  `json:"uid"`
	Username string `json:"username"`
}

// IsZero reports whether the reference names no user.
func (r UserRef) IsZero() bool {
	return r.ID == 0
}
