package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/banseok/hajaro"
	appmiddleware "github.com/banseok/hajaro/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// DefaultTimeout bounds database work done on behalf of one request.
const DefaultTimeout = 5 * time.Second

// registerMiddleware sets up all middleware for the server.
func (s *Server) registerMiddleware() {
	s.rateLimiter = appmiddleware.NewRateLimiter(s.logger)
	s.authRateLimiter = appmiddleware.NewAuthRateLimiter(s.logger)

	s.echo.Use(middleware.Recover())
	s.echo.Use(appmiddleware.RequestIDMiddleware(s.logger))
	s.echo.Use(s.requestLoggerMiddleware())
	s.echo.Use(appmiddleware.MetricsMiddleware())
	s.echo.Use(s.rateLimiter.Middleware())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	s.echo.HTTPErrorHandler = s.httpErrorHandler
}

// requestLoggerMiddleware logs request completion with the request-scoped
// logger installed by RequestIDMiddleware.
func (s *Server) requestLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			logger := s.log(c).With(
				slog.String("method", c.Request().Method),
				slog.String("path", c.Path()),
				slog.Int("status", c.Response().Status),
				slog.Duration("duration", time.Since(start)),
			)

			switch {
			case err != nil:
				logger.Error("request failed", slog.String("error", err.Error()))
			case c.Response().Status >= 500:
				logger.Error("request completed with server error")
			case c.Response().Status >= 400:
				logger.Warn("request completed with client error")
			default:
				logger.Info("request completed")
			}

			return err
		}
	}
}

// httpErrorHandler converts errors that escape handlers into JSON responses.
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if he, ok := err.(*echo.HTTPError); ok {
		_ = c.JSON(he.Code, map[string]any{"error": he.Message})
		return
	}

	_ = HandleError(c, s.logger, err)
}

// RequireAuth resolves the bearer token through the session cache and
// attaches the user to the request context. Returns 401 for a missing or
// invalid token.
func (s *Server) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return hajaro.Unauthorized("Authentication required")
			}

			user, err := s.sessions.GetUser(c.Request().Context(), token)
			if err != nil {
				return err
			}

			ctx := hajaro.NewContextWithUser(c.Request().Context(), user)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("session_token", token)

			return next(c)
		}
	}
}

// RequireRole guards a route group to one role. Must run after RequireAuth.
func (s *Server) RequireRole(role hajaro.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := requireUser(c)
			if err != nil {
				return err
			}
			if user.Role != role {
				return hajaro.Forbidden("This operation is not available to your role")
			}
			return next(c)
		}
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// sessionToken returns the bearer token stored by RequireAuth.
func sessionToken(c echo.Context) string {
	token, _ := c.Get("session_token").(string)
	return token
}
