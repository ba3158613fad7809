package http

import (
	"log/slog"

	"github.com/banseok/hajaro"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (s *Server) handlePartnerStats(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	partnerID, err := requirePartnerID(c)
	if err != nil {
		return err
	}

	stats, err := s.partnerService.GetDefectStats(ctx, partnerID)
	if err != nil {
		return err
	}

	return RespondOK(c, stats)
}

func (s *Server) handlePartnerDefects(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	partnerID, err := requirePartnerID(c)
	if err != nil {
		return err
	}

	filter, err := defectFilterFromQuery(c, hajaro.RolePartnerAdmin)
	if err != nil {
		return err
	}
	filter.PartnerID = &partnerID

	page, err := s.defectService.FindDefects(ctx, filter)
	if err != nil {
		return err
	}

	return RespondOK(c, page)
}

// AssignEngineerRequest schedules a defect onto one of the partner's
// engineers.
type AssignEngineerRequest struct {
	EngineerID uuid.UUID `json:"engineerId" validate:"required"`
}

func (s *Server) handleAssignEngineer(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	partnerID, err := requirePartnerID(c)
	if err != nil {
		return err
	}

	defectID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req AssignEngineerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := s.defectService.AssignEngineer(ctx, partnerID, defectID, req.EngineerID); err != nil {
		return err
	}

	s.log(c).Info("engineer assigned",
		slog.String("defect_id", defectID.String()),
		slog.String("engineer_id", req.EngineerID.String()),
	)

	s.enqueueStatusChanged(c, defectID, hajaro.DefectStatusScheduled)

	return RespondSuccess(c, "engineer assigned")
}

func (s *Server) handleRejectByPartnerAdmin(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	partnerID, err := requirePartnerID(c)
	if err != nil {
		return err
	}

	defectID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.defectService.RejectByPartnerAdmin(ctx, partnerID, defectID); err != nil {
		return err
	}

	s.log(c).Info("defect rejected by partner admin", slog.String("defect_id", defectID.String()))

	s.enqueueStatusChanged(c, defectID, hajaro.DefectStatusRejected)

	return RespondSuccess(c, "defect rejected")
}

func (s *Server) handleListEngineers(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	partnerID, err := requirePartnerID(c)
	if err != nil {
		return err
	}

	engineers, err := s.userService.FindEngineersByPartner(ctx, partnerID)
	if err != nil {
		return err
	}

	return RespondOK(c, engineers)
}

func (s *Server) handleListEmployees(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	partnerID, err := requirePartnerID(c)
	if err != nil {
		return err
	}

	employees, err := s.userService.FindEmployeesByPartner(ctx, partnerID)
	if err != nil {
		return err
	}

	return RespondOK(c, employees)
}
