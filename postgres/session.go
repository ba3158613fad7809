package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/banseok/hajaro"
	"github.com/banseok/hajaro/internal/auth"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SessionService is the PostgreSQL implementation of hajaro.SessionService.
type SessionService struct {
	db *DB
}

var _ hajaro.SessionService = (*SessionService)(nil)

// CreateSession issues a new session token for the user.
func (s *SessionService) CreateSession(ctx context.Context, userID uuid.UUID, duration time.Duration) (*hajaro.Session, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, hajaro.Internal("failed to generate session token", err)
	}

	session := &hajaro.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(duration),
	}

	err = s.db.pool.QueryRow(ctx, `
		INSERT INTO sessions (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, session.UserID, session.Token, session.ExpiresAt).
		Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, hajaro.NotFound("user not found")
		}
		return nil, hajaro.Internal("failed to create session", err)
	}
	return session, nil
}

// FindSessionByToken returns the live session for a token.
func (s *SessionService) FindSessionByToken(ctx context.Context, token string) (*hajaro.Session, error) {
	var session hajaro.Session
	err := s.db.pool.QueryRow(ctx, `
		SELECT id, user_id, token, expires_at, created_at
		FROM sessions
		WHERE token = $1 AND expires_at > NOW()
	`, token).Scan(&session.ID, &session.UserID, &session.Token,
		&session.ExpiresAt, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hajaro.Unauthorized("invalid or expired session")
		}
		return nil, hajaro.Internal("failed to find session", err)
	}
	return &session, nil
}

// DeleteSession revokes a session by token.
func (s *SessionService) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return hajaro.Internal("failed to delete session", err)
	}
	return nil
}

// DeleteExpiredSessions removes expired sessions.
func (s *SessionService) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := s.db.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, hajaro.Internal("failed to delete expired sessions", err)
	}
	return tag.RowsAffected(), nil
}
