package http

import (
	"encoding/json"
	"log/slog"

	"github.com/banseok/hajaro"
	"github.com/banseok/hajaro/internal/storage"
	"github.com/banseok/hajaro/internal/validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CreateDefectRequest is the multipart form accompanying the defect photo.
type CreateDefectRequest struct {
	Location       string `form:"location" validate:"required,max=100"`
	WorkType       string `form:"workType" validate:"required,max=50"`
	WorkDetail     string `form:"workDetail" validate:"required,max=50"`
	AdditionalInfo string `form:"additionalInfo" validate:"omitempty,max=500"`

	// Coordinate is an optional JSON-encoded viewer position.
	Coordinate string `form:"coordinate"`
}

func (s *Server) handleCreateDefect(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := requireUser(c)
	if err != nil {
		return err
	}
	if user.UnitID == nil {
		return hajaro.Forbidden("Account is not linked to a unit")
	}

	var req CreateDefectRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	var coordinate *hajaro.Coordinate
	if req.Coordinate != "" {
		coordinate = &hajaro.Coordinate{}
		if err := json.Unmarshal([]byte(req.Coordinate), coordinate); err != nil {
			return hajaro.Invalid("Invalid coordinate format")
		}
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return hajaro.Invalid("A defect photo is required")
	}
	if err := validation.ValidateImageUpload(fileHeader); err != nil {
		return err
	}

	key, err := s.fileStorage.Save(ctx, storage.KindRequested, fileHeader)
	if err != nil {
		return hajaro.Internal("Failed to store defect photo", err)
	}

	defect := &hajaro.Defect{
		UnitID:     *user.UnitID,
		ResidentID: user.ID,
		Location:   req.Location,
		Work: hajaro.Work{
			Type:           req.WorkType,
			Detail:         req.WorkDetail,
			AdditionalInfo: req.AdditionalInfo,
		},
		Coordinate:     coordinate,
		RequestedImage: key,
	}

	if err := s.defectService.CreateDefect(ctx, defect); err != nil {
		if delErr := s.fileStorage.Delete(ctx, key); delErr != nil {
			s.log(c).Warn("failed to remove orphaned photo", slog.String("key", key))
		}
		return err
	}

	s.log(c).Info("defect created",
		slog.String("defect_id", defect.ID.String()),
		slog.String("status", string(defect.Status)),
	)

	s.enqueueStatusChanged(c, defect.ID, defect.Status)

	return RespondCreated(c, defect)
}

func (s *Server) handleListUnitDefects(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := requireUser(c)
	if err != nil {
		return err
	}

	unitID, err := requireUUIDParam(c, "unitId")
	if err != nil {
		return err
	}

	defects, err := s.defectService.FindDefectsByUnit(ctx, user.ID, unitID)
	if err != nil {
		return err
	}

	return RespondOK(c, defects)
}

func (s *Server) handleConfirmDefect(c echo.Context) error {
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

	fileHeader, err := c.FormFile("signature")
	if err != nil {
		return hajaro.Invalid("A signature image is required")
	}
	if err := validation.ValidateImageUpload(fileHeader); err != nil {
		return err
	}

	key, err := s.fileStorage.Save(ctx, storage.KindSignature, fileHeader)
	if err != nil {
		return hajaro.Internal("Failed to store signature", err)
	}

	if err := s.defectService.ConfirmByResident(ctx, user.ID, defectID, key); err != nil {
		if delErr := s.fileStorage.Delete(ctx, key); delErr != nil {
			s.log(c).Warn("failed to remove orphaned signature", slog.String("key", key))
		}
		return err
	}

	s.log(c).Info("defect confirmed", slog.String("defect_id", defectID.String()))

	s.enqueueStatusChanged(c, defectID, hajaro.DefectStatusConfirmed)

	return RespondSuccess(c, "defect confirmed")
}

func (s *Server) handleCancelDefect(c echo.Context) error {
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

	if err := s.defectService.CancelByResident(ctx, user.ID, defectID); err != nil {
		return err
	}

	s.log(c).Info("defect canceled", slog.String("defect_id", defectID.String()))

	return RespondSuccess(c, "defect canceled")
}

func (s *Server) handleListNotifications(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := requireUser(c)
	if err != nil {
		return err
	}

	notifications, err := s.notificationService.FindNotificationsByResident(ctx, user.ID)
	if err != nil {
		return err
	}

	return RespondOK(c, notifications)
}

// MarkNotificationsReadRequest lists the notification IDs to mark read.
type MarkNotificationsReadRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

func (s *Server) handleMarkNotificationsRead(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var req MarkNotificationsReadRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := s.notificationService.MarkNotificationsRead(ctx, user.ID, req.IDs); err != nil {
		return err
	}

	return RespondSuccess(c, "notifications marked read")
}

// RegisterDeviceTokenRequest registers one device for push delivery.
type RegisterDeviceTokenRequest struct {
	Token    string `json:"token" validate:"required,max=512"`
	Platform string `json:"platform" validate:"required,oneof=ios android"`
}

func (s *Server) handleRegisterDeviceToken(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var req RegisterDeviceTokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	token := &hajaro.DeviceToken{
		UserID:   user.ID,
		Token:    req.Token,
		Platform: req.Platform,
	}
	if err := s.deviceTokenService.RegisterDeviceToken(ctx, token); err != nil {
		return err
	}

	return RespondCreated(c, token)
}

// DeleteDeviceTokenRequest removes one device registration.
type DeleteDeviceTokenRequest struct {
	Token string `json:"token" validate:"required,max=512"`
}

func (s *Server) handleDeleteDeviceToken(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var req DeleteDeviceTokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := s.deviceTokenService.DeleteDeviceToken(ctx, user.ID, req.Token); err != nil {
		return err
	}

	return RespondSuccess(c, "device token removed")
}

// UpdatePushSettingRequest flips the push opt-in. The field is a pointer so
// an explicit false survives binding; required-style validation would reject
// it.
type UpdatePushSettingRequest struct {
	ReceivePush *bool `json:"receivePush"`
}

func (s *Server) handleUpdatePushSetting(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var req UpdatePushSettingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.ReceivePush == nil {
		return hajaro.Invalid("receivePush is required")
	}

	if err := s.userService.UpdateReceivePush(ctx, user.ID, *req.ReceivePush); err != nil {
		return err
	}

	// The cached session user carries the stale flag until re-login;
	// drop it so the next request re-reads the user.
	s.sessions.Invalidate(sessionToken(c))

	return RespondSuccess(c, "push setting updated")
}
