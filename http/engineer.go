package http

import (
	"log/slog"

	"github.com/banseok/hajaro"
	"github.com/banseok/hajaro/internal/storage"
	"github.com/banseok/hajaro/internal/validation"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleEngineerComplexes(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := requireUser(c)
	if err != nil {
		return err
	}

	complexes, err := s.defectService.FindEngineerComplexes(ctx, user.ID)
	if err != nil {
		return err
	}

	return RespondOK(c, complexes)
}

func (s *Server) handleEngineerTasks(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := requireUser(c)
	if err != nil {
		return err
	}

	complexID, err := requireUUIDParam(c, "complexId")
	if err != nil {
		return err
	}

	filter, err := defectFilterFromQuery(c, hajaro.RoleEngineer)
	if err != nil {
		return err
	}

	tasks, err := s.defectService.FindEngineerTasks(ctx, user.ID, complexID, filter)
	if err != nil {
		return err
	}

	return RespondOK(c, tasks)
}

// RejectDefectRequest carries the engineer's reason for turning a task back.
type RejectDefectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func (s *Server) handleRejectByEngineer(c echo.Context) error {
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

	var req RejectDefectRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := s.defectService.RejectByEngineer(ctx, user.ID, defectID, req.Reason); err != nil {
		return err
	}

	s.log(c).Info("defect rejected by engineer", slog.String("defect_id", defectID.String()))

	s.enqueueStatusChanged(c, defectID, hajaro.DefectStatusRejected)

	return RespondSuccess(c, "defect rejected")
}

func (s *Server) handleMarkRepaired(c echo.Context) error {
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

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return hajaro.Invalid("A repair photo is required")
	}
	if err := validation.ValidateImageUpload(fileHeader); err != nil {
		return err
	}

	key, err := s.fileStorage.Save(ctx, storage.KindRepaired, fileHeader)
	if err != nil {
		return hajaro.Internal("Failed to store repair photo", err)
	}

	if err := s.defectService.MarkRepaired(ctx, user.ID, defectID, key); err != nil {
		if delErr := s.fileStorage.Delete(ctx, key); delErr != nil {
			s.log(c).Warn("failed to remove orphaned repair photo", slog.String("key", key))
		}
		return err
	}

	s.log(c).Info("defect marked repaired", slog.String("defect_id", defectID.String()))

	s.enqueueStatusChanged(c, defectID, hajaro.DefectStatusRepaired)

	return RespondSuccess(c, "defect marked repaired")
}
