package http

import (
	"github.com/banseok/hajaro"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleGetDefect(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := requireUser(c)
	if err != nil {
		return err
	}

	defectID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	defect, err := s.defectService.FindDefectByID(ctx, defectID)
	if err != nil {
		return err
	}

	if !defectVisibleTo(user, defect) {
		// A defect outside the caller's scope reads as missing, not
		// forbidden, so its existence is never revealed.
		return hajaro.NotFound("defect not found")
	}

	return RespondOK(c, defect)
}

// defectVisibleTo reports whether a user's role scope covers the defect.
func defectVisibleTo(user *hajaro.User, defect *hajaro.Defect) bool {
	switch user.Role {
	case hajaro.RoleResident:
		return defect.ResidentID == user.ID
	case hajaro.RoleContractor:
		return user.ContractorID != nil && defect.ContractorID == *user.ContractorID
	case hajaro.RolePartnerAdmin:
		return user.PartnerID != nil && defect.AssignedPartnerID != nil && *defect.AssignedPartnerID == *user.PartnerID
	case hajaro.RoleEngineer:
		return defect.AssignedEngineerID != nil && *defect.AssignedEngineerID == user.ID
	case hajaro.RolePlatform:
		return true
	default:
		return false
	}
}
