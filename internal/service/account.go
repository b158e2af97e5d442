// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tasklist/tasklist/internal/auth"
	"github.com/tasklist/tasklist/internal/metrics"
	"github.com/tasklist/tasklist/internal/model"
	"github.com/tasklist/tasklist/internal/repository"
)

// UserRepository is the persistence contract of the credential store.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// AccountService creates accounts and verifies credentials.
type AccountService struct {
	users   UserRepository
	metrics metrics.Recorder
	logger  *slog.Logger

	hash   func(password string) (string, error)
	verify func(password, encodedHash string) (bool, error)
	burn   func(password string)
}

// NewAccountService creates a new AccountService.
func NewAccountService(users UserRepository, recorder metrics.Recorder, logger *slog.Logger) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		users:   users,
		metrics: recorder,
		logger:  logger,
		hash:    auth.HashPassword,
		verify:  auth.VerifyPassword,
		burn:    auth.BurnVerification,
	}
}

// SignupInput defines input for creating an account.
type SignupInput struct {
	Username string
	Password string
}

// Signup creates an account. It never establishes a session.
func (s *AccountService) Signup(ctx context.Context, input SignupInput) (*model.User, error) {
	username := NormalizeUsername(input.Username)
	if err := validateCredentials(username, input.Password); err != nil {
		s.metrics.IncSignup(metrics.ResultInvalid)
		return nil, err
	}

	_, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		s.metrics.IncSignup(metrics.ResultDuplicate)
		return nil, ErrUsernameTaken
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := s.hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
	}

	// The unique constraint decides when two signups race.
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			s.metrics.IncSignup(metrics.ResultDuplicate)
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncSignup(metrics.ResultSuccess)
	return user, nil
}

// FindByUsername looks a user up by exact username.
func (s *AccountService) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	username = NormalizeUsername(username)
	if !IsStorableText(username) {
		return nil, ErrUserNotFound
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// VerifyCredential returns the user when username and password match.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *AccountService) VerifyCredential(ctx context.Context, username, password string) (*model.User, error) {
	username = NormalizeUsername(username)
	if !IsStorableText(username) {
		// No stored username can match; pay the hash cost anyway.
		s.burn(password)
		s.metrics.IncLogin(metrics.ResultFailure)
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.burn(password)
			s.metrics.IncLogin(metrics.ResultFailure)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := s.verify(password, user.PasswordHash)
	if err != nil {
		// A corrupt stored hash is an operator problem, not a caller one.
		s.logger.ErrorContext(ctx, "stored password hash unreadable",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}
	if !ok {
		s.metrics.IncLogin(metrics.ResultFailure)
		return nil, ErrInvalidCredentials
	}

	s.metrics.IncLogin(metrics.ResultSuccess)
	return user, nil
}
