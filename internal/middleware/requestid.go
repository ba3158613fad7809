package middleware

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDMiddleware tags each request with a UUID, echoes it back in the
// X-Request-ID header, and stores a request-scoped logger carrying the ID so
// log lines from one request can be correlated, including across queue jobs.
func RequestIDMiddleware(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := uuid.New().String()

			c.Response().Header().Set(echo.HeaderXRequestID, requestID)
			c.Set("request_id", requestID)
			c.Set("logger", logger.With(slog.String("request_id", requestID)))

			return next(c)
		}
	}
}

// GetRequestID returns the request ID set by RequestIDMiddleware, or "" when
// the middleware did not run.
func GetRequestID(c echo.Context) string {
	requestID, ok := c.Get("request_id").(string)
	if !ok {
		return ""
	}
	return requestID
}

// GetRequestLogger returns the request-scoped logger, falling back to
// slog.Default when the middleware did not run.
func GetRequestLogger(c echo.Context) *slog.Logger {
	logger, ok := c.Get("logger").(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}
