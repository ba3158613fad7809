package http

import (
	"log/slog"
	"strconv"

	"github.com/banseok/hajaro"
	"github.com/banseok/hajaro/internal/auth"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CreateUserRequest provisions an account in any role. The affiliation
// fields must match the role: residents need a unit, contractor staff a
// contractor, partner admins and engineers a partner.
type CreateUserRequest struct {
	Email        string     `json:"email" validate:"required,email,max=255"`
	Name         string     `json:"name" validate:"required,max=100"`
	Phone        string     `json:"phone" validate:"omitempty,max=20"`
	Role         string     `json:"role" validate:"required,oneof=resident contractor partner_admin engineer platform"`
	ContractorID *uuid.UUID `json:"contractorId"`
	PartnerID    *uuid.UUID `json:"partnerId"`
	UnitID       *uuid.UUID `json:"unitId"`
}

func (s *Server) handleCreateUser(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	var req CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	role := hajaro.Role(req.Role)
	switch role {
	case hajaro.RoleResident:
		if req.UnitID == nil {
			return hajaro.Invalid("a resident account needs a unit")
		}
	case hajaro.RoleContractor:
		if req.ContractorID == nil {
			return hajaro.Invalid("a contractor account needs a contractor")
		}
	case hajaro.RolePartnerAdmin, hajaro.RoleEngineer:
		if req.PartnerID == nil {
			return hajaro.Invalid("a partner account needs a partner")
		}
	}

	tempPassword, err := auth.GenerateTempPassword()
	if err != nil {
		return hajaro.Internal("Failed to generate temporary password", err)
	}

	user := &hajaro.User{
		Email:        req.Email,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         role,
		ContractorID: req.ContractorID,
		PartnerID:    req.PartnerID,
		UnitID:       req.UnitID,
		ReceivePush:  true,
	}
	if err := s.userService.CreateUser(ctx, user, tempPassword); err != nil {
		return err
	}

	// Welcome email carries the temporary password; failure to send is
	// logged and the account stands.
	if s.email != nil {
		if err := s.email.SendWelcomeEmail(user.Email, user.Name, tempPassword); err != nil {
			s.log(c).Error("failed to send welcome email",
				slog.String("to", user.Email),
				slog.String("error", err.Error()),
			)
		}
	}

	s.log(c).Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)),
	)

	return RespondCreated(c, user)
}

func (s *Server) handleDailyDefectCounts(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	days := 7
	if raw := c.QueryParam("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 90 {
			return hajaro.Invalid("days must be between 1 and 90")
		}
		days = n
	}

	counts, err := s.defectService.CountRecentByDay(ctx, days)
	if err != nil {
		return err
	}

	return RespondOK(c, counts)
}
