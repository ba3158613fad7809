package hajaro

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionDuration is the default session lifetime.
const DefaultSessionDuration = 24 * time.Hour

// Session is an authenticated login session identified by a bearer token.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// SessionService manages login sessions.
type SessionService interface {
	// CreateSession issues a new session for the user.
	CreateSession(ctx context.Context, userID uuid.UUID, duration time.Duration) (*Session, error)

	// FindSessionByToken returns the session for a token. Expired sessions
	// are treated as missing.
	FindSessionByToken(ctx context.Context, token string) (*Session, error)

	// DeleteSession revokes a session by token.
	DeleteSession(ctx context.Context, token string) error

	// DeleteExpiredSessions removes expired sessions and returns the count.
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}
