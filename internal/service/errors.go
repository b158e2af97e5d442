package service

import "errors"

// Service errors.
var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrContentRequired    = errors.New("content is required")
	ErrContentTooLong     = errors.New("content too long")
	ErrContentInvalid     = errors.New("content contains invalid characters")
	ErrTodoNotFound       = errors.New("todo not found")
	ErrNotOwner           = errors.New("todo belongs to another user")
)
