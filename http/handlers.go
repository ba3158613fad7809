package http

import (
	"context"
	"log/slog"

	"github.com/banseok/hajaro"
	"github.com/banseok/hajaro/internal/queue"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// withTimeout creates a context with a timeout for handler operations.
func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), DefaultTimeout)
}

// parseUUID parses a UUID from a string, returning a domain error if invalid.
func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, hajaro.Invalid("Invalid ID format")
	}
	return id, nil
}

// requireUUIDParam extracts and parses a required UUID route parameter.
func requireUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	value := c.Param(name)
	if value == "" {
		return uuid.UUID{}, hajaro.Invalid("%s is required", name)
	}
	return parseUUID(value)
}

// requireUser extracts the authenticated user from context.
func requireUser(c echo.Context) (*hajaro.User, error) {
	user := hajaro.UserFromContext(c.Request().Context())
	if user == nil {
		return nil, hajaro.Unauthorized("Authentication required")
	}
	return user, nil
}

// requireContractorID extracts the caller's contractor affiliation.
func requireContractorID(c echo.Context) (uuid.UUID, error) {
	user, err := requireUser(c)
	if err != nil {
		return uuid.UUID{}, err
	}
	if user.ContractorID == nil {
		return uuid.UUID{}, hajaro.Forbidden("Account is not linked to a contractor")
	}
	return *user.ContractorID, nil
}

// requirePartnerID extracts the caller's partner affiliation.
func requirePartnerID(c echo.Context) (uuid.UUID, error) {
	user, err := requireUser(c)
	if err != nil {
		return uuid.UUID{}, err
	}
	if user.PartnerID == nil {
		return uuid.UUID{}, hajaro.Forbidden("Account is not linked to a partner")
	}
	return *user.PartnerID, nil
}

// bind binds the request body to a struct and validates it.
func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return hajaro.Invalid("Invalid request body")
	}
	if err := c.Validate(v); err != nil {
		return err
	}
	return nil
}

// log returns the request-scoped logger.
func (s *Server) log(c echo.Context) *slog.Logger {
	if logger, ok := c.Get("logger").(*slog.Logger); ok {
		return logger
	}
	return s.logger
}

// enqueueStatusChanged queues the resident notification for a transition
// that just succeeded. Enqueue failure is logged, never surfaced: the
// transition itself already committed.
func (s *Server) enqueueStatusChanged(c echo.Context, defectID uuid.UUID, status hajaro.DefectStatus) {
	if s.queue == nil {
		return
	}

	payload := map[string]interface{}{"status": string(status)}
	_, err := s.queue.Enqueue(c.Request().Context(), queue.QueueNotifications, queue.JobTypeStatusChanged, defectID, payload, nil)
	if err != nil {
		s.log(c).Error("failed to enqueue status notification",
			slog.String("defect_id", defectID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()),
		)
	}
}

// Health handlers

func (s *Server) handleHealthCheck(c echo.Context) error {
	return RespondOK(c, map[string]string{"status": "ok"})
}

func (s *Server) handleLivenessCheck(c echo.Context) error {
	return RespondOK(c, map[string]string{"status": "alive"})
}

func (s *Server) handleReadinessCheck(c echo.Context) error {
	return RespondOK(c, map[string]string{"status": "ready"})
}
