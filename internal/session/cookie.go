package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tasklist/tasklist/internal/model"
)

// claims is the signed payload of a cookie session.
type claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
}

// CookieStore keeps the whole session in an HS256-signed JWT cookie.
// Nothing is stored server-side, so Delete relies on cookie expiry.
type CookieStore struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCookieStore creates a CookieStore signing with secret.
func NewCookieStore(secret []byte, ttl time.Duration) *CookieStore {
	return &CookieStore{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Save implements Store.
func (s *CookieStore) Save(ctx context.Context, user model.UserRef) (string, error) {
	if user.IsZero() {
		return "", errors.New("cannot save anonymous session")
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID:   user.ID,
		Username: user.Username,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Load implements Store. Any parse, signature or expiry failure is anonymous.
func (s *CookieStore) Load(ctx context.Context, token string) (*model.UserRef, error) {
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || c.UserID == 0 {
		return nil, ErrSessionNotFound
	}

	return &model.UserRef{ID: c.UserID, Username: c.Username}, nil
}

// Delete implements Store.
func (s *CookieStore) Delete(ctx context.Context, token string) error {
	return nil
}
