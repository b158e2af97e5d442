package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tasklist/tasklist/internal/auth"
	"github.com/tasklist/tasklist/internal/cache"
	"github.com/tasklist/tasklist/internal/model"
)

// SessionCache is the subset of cache.Cache used for server-side sessions.
type SessionCache interface {
	SetSession(ctx context.Context, tokenHash string, rec *cache.SessionRecord, ttl time.Duration) error
	GetSession(ctx context.Context, tokenHash string) (*cache.SessionRecord, error)
	DeleteSession(ctx context.Context, tokenHash string) error
}

// RedisStore keeps sessions in Redis under a hash of a random token.
type RedisStore struct {
	cache SessionCache
	ttl   time.Duration
	now   func() time.Time
}

// NewRedisStore creates a RedisStore whose sessions live for ttl.
func NewRedisStore(c SessionCache, ttl time.Duration) *RedisStore {
	return &RedisStore{
		cache: c,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, user model.UserRef) (string, error) {
	if user.IsZero() {
		return "", errors.New("cannot save anonymous session")
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	rec := &cache.SessionRecord{
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: s.now().UTC(),
	}
	if err := s.cache.SetSession(ctx, auth.QuickHash(token), rec, s.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, token string) (*model.UserRef, error) {
	if err := auth.ValidateSessionToken(token); err != nil {
		return nil, ErrSessionNotFound
	}

	rec, err := s.cache.GetSession(ctx, auth.QuickHash(token))
	if err != nil {
		if errors.Is(err, cache.ErrSessionMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	return &model.UserRef{ID: rec.UserID, Username: rec.Username}, nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := auth.ValidateSessionToken(token); err != nil {
		return nil
	}
	if err := s.cache.DeleteSession(ctx, auth.QuickHash(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
