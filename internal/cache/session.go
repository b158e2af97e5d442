package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// sessionPrefix is the Redis key prefix for server-side sessions.
const sessionPrefix = "session:"

// ErrSessionMiss is returned when no session is stored under a key.
var ErrSessionMiss = errors.New("session not in cache")

// SessionRecord is the JSON value stored per session.
type SessionRecord struct {
	UserID    int64     `json:"uid"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func sessionKey(tokenHash string) string {
	return sessionPrefix + tokenHash
}

// SetSession stores a session record that expires after ttl.
func (c *Cache) SetSession(ctx context.Context, tokenHash string, rec *SessionRecord, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return c.client.Set(ctx, sessionKey(tokenHash), data, ttl).Err()
}

// GetSession loads a session record.
// Returns ErrSessionMiss for unknown or expired keys and for corrupted entries.
func (c *Cache) GetSession(ctx context.Context, tokenHash string) (*SessionRecord, error) {
	data, err := c.client.Get(ctx, sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionMiss
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var rec SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// Corrupted entry - treat as miss
		return nil, ErrSessionMiss
	}
	if rec.UserID == 0 {
		return nil, ErrSessionMiss
	}
	return &rec, nil
}

// DeleteSession removes a session. Deleting a missing key is not an error.
func (c *Cache) DeleteSession(ctx context.Context, tokenHash string) error {
	return c.client.Del(ctx, sessionKey(tokenHash)).Err()
}
