// Package session stores login sessions for authenticated users.
//
// A session is created by a successful login and identified by an opaque
// random token that the client sends back as a bearer token. Three backends
// implement [Store]:
//   - [MemoryStore]: in-process map; development and tests
//   - [RedisStore]: shared store for multi-instance deployments
//   - [FileStore]: one JSON file per session; single-instance servers that
//     should keep sessions across restarts
//
// # Usage
//
//	sess, err := session.New(user.ID, user.Email, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	sess, err = store.Get(ctx, token)
//	switch {
//	case errors.Is(err, session.ErrExpired):
//	    // the token was valid once; ask the user to log in again
//	case sess == nil:
//	    // unknown token
//	}
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// ErrExpired is returned by [Store.Get] for a session that exists but has
// passed its ExpiresAt.
var ErrExpired = errors.New("session expired")

// Session stores user session data.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// TTL returns the remaining lifetime, or zero once expired.
func (s *Session) TTL() time.Duration {
	return max(time.Until(s.ExpiresAt), 0)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist and nil, ErrExpired if
	// it has expired. Backends that expire keys themselves (Redis) report
	// an expired session as missing once the key is gone.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session until its ExpiresAt.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op for Redis).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New creates a session for the given user.
func New(userID, email string, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Session{
		ID:        id,
		UserID:    userID,
		Email:     email,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}
