package mock

import (
	"context"
	"time"

	"github.com/banseok/hajaro"
	"github.com/google/uuid"
)

// Compile-time interface checks
var (
	_ hajaro.UserService    = (*UserService)(nil)
	_ hajaro.SessionService = (*SessionService)(nil)
)

// UserService is a mock implementation of hajaro.UserService.
type UserService struct {
	FindUserByIDFn           func(ctx context.Context, id uuid.UUID) (*hajaro.User, error)
	FindUserByEmailFn        func(ctx context.Context, email string) (*hajaro.User, error)
	CreateUserFn             func(ctx context.Context, user *hajaro.User, password string) error
	AuthenticateFn           func(ctx context.Context, email, password string) (*hajaro.User, error)
	FindEngineersByPartnerFn func(ctx context.Context, partnerID uuid.UUID) ([]*hajaro.User, error)
	FindEmployeesByPartnerFn func(ctx context.Context, partnerID uuid.UUID) ([]*hajaro.User, error)
	UpdateReceivePushFn      func(ctx context.Context, id uuid.UUID, receive bool) error
}

func (s *UserService) FindUserByID(ctx context.Context, id uuid.UUID) (*hajaro.User, error) {
	if s.FindUserByIDFn != nil {
		return s.FindUserByIDFn(ctx, id)
	}
	return nil, hajaro.NotFound("user not found")
}

func (s *UserService) FindUserByEmail(ctx context.Context, email string) (*hajaro.User, error) {
	if s.FindUserByEmailFn != nil {
		return s.FindUserByEmailFn(ctx, email)
	}
	return nil, hajaro.NotFound("user not found")
}

func (s *UserService) CreateUser(ctx context.Context, user *hajaro.User, password string) error {
	if s.CreateUserFn != nil {
		return s.CreateUserFn(ctx, user, password)
	}
	return nil
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (*hajaro.User, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, email, password)
	}
	return nil, hajaro.Unauthorized("invalid credentials")
}

func (s *UserService) FindEngineersByPartner(ctx context.Context, partnerID uuid.UUID) ([]*hajaro.User, error) {
	if s.FindEngineersByPartnerFn != nil {
		return s.FindEngineersByPartnerFn(ctx, partnerID)
	}
	return []*hajaro.User{}, nil
}

func (s *UserService) FindEmployeesByPartner(ctx context.Context, partnerID uuid.UUID) ([]*hajaro.User, error) {
	if s.FindEmployeesByPartnerFn != nil {
		return s.FindEmployeesByPartnerFn(ctx, partnerID)
	}
	return []*hajaro.User{}, nil
}

func (s *UserService) UpdateReceivePush(ctx context.Context, id uuid.UUID, receive bool) error {
	if s.UpdateReceivePushFn != nil {
		return s.UpdateReceivePushFn(ctx, id, receive)
	}
	return nil
}

// SessionService is a mock implementation of hajaro.SessionService.
type SessionService struct {
	CreateSessionFn         func(ctx context.Context, userID uuid.UUID, duration time.Duration) (*hajaro.Session, error)
	FindSessionByTokenFn    func(ctx context.Context, token string) (*hajaro.Session, error)
	DeleteSessionFn         func(ctx context.Context, token string) error
	DeleteExpiredSessionsFn func(ctx context.Context) (int64, error)
}

func (s *SessionService) CreateSession(ctx context.Context, userID uuid.UUID, duration time.Duration) (*hajaro.Session, error) {
	if s.CreateSessionFn != nil {
		return s.CreateSessionFn(ctx, userID, duration)
	}
	return &hajaro.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     "mock-token",
		ExpiresAt: time.Now().Add(duration),
		CreatedAt: time.Now(),
	}, nil
}

func (s *SessionService) FindSessionByToken(ctx context.Context, token string) (*hajaro.Session, error) {
	if s.FindSessionByTokenFn != nil {
		return s.FindSessionByTokenFn(ctx, token)
	}
	return nil, hajaro.Unauthorized("invalid or expired session")
}

func (s *SessionService) DeleteSession(ctx context.Context, token string) error {
	if s.DeleteSessionFn != nil {
		return s.DeleteSessionFn(ctx, token)
	}
	return nil
}

func (s *SessionService) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	if s.DeleteExpiredSessionsFn != nil {
		return s.DeleteExpiredSessionsFn(ctx)
	}
	return 0, nil
}
