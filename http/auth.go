package http

import (
	"log/slog"

	"github.com/banseok/hajaro"
	"github.com/labstack/echo/v4"
)

// LoginRequest is the request payload for login.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"required,max=128"`
}

// LoginResponse carries the bearer token the apps use on every call.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expiresAt"`
	User      *hajaro.User `json:"user"`
}

func (s *Server) handleLogin(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := s.userService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	sess, err := s.sessionService.CreateSession(ctx, user.ID, s.SessionDuration)
	if err != nil {
		s.log(c).Error("failed to create session", slog.String("error", err.Error()))
		return hajaro.Internal("Login failed", err)
	}

	s.log(c).Info("user logged in",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)),
	)

	return RespondOK(c, LoginResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
		User:      user,
	})
}

func (s *Server) handleLogout(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	token := sessionToken(c)

	if err := s.sessionService.DeleteSession(ctx, token); err != nil {
		s.log(c).Error("failed to delete session", slog.String("error", err.Error()))
	}
	s.sessions.Invalidate(token)

	s.log(c).Info("user logged out")

	return RespondSuccess(c, "logged out")
}

func (s *Server) handleMe(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	return RespondOK(c, user)
}
