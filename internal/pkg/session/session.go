package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is the lifetime of a session from creation
const DefaultTTL = 24 * time.Hour

// ErrNotFound is returned for unknown or expired sessions
var ErrNotFound = errors.New("session not found")

// Session is a server-held login state. There is no renewal: ExpiresAt is
// fixed at creation.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its lifetime at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store keeps sessions keyed by an opaque id
type Store interface {
	Create(ctx context.Context, userID int64, username string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

func newSession(userID int64, username string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
