package http

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/banseok/hajaro"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// defectFilterFromQuery builds the dynamic defect filter from repeated
// query parameters. Unparseable dong/ho values are passed through; the
// query layer drops them rather than failing.
func defectFilterFromQuery(c echo.Context, role hajaro.Role) (hajaro.DefectFilter, error) {
	filter := hajaro.DefectFilter{
		Role: role,
		Page: 1,
	}

	params := c.QueryParams()

	for _, raw := range params["complexId"] {
		id, err := parseUUID(raw)
		if err != nil {
			return filter, err
		}
		filter.ComplexIDs = append(filter.ComplexIDs, id)
	}

	filter.Dongs = params["dong"]
	filter.Hos = params["ho"]
	filter.Buckets = params["bucket"]

	for _, raw := range params["status"] {
		status := hajaro.DefectStatus(raw)
		if !status.Valid() {
			return filter, hajaro.Invalid("unknown status %q", raw)
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	if workType := c.QueryParam("workType"); workType != "" {
		filter.WorkType = &workType
	}

	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, hajaro.Invalid("from must be formatted as 2006-01-02")
		}
		filter.RequestedFrom = &t
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, hajaro.Invalid("to must be formatted as 2006-01-02")
		}
		filter.RequestedTo = &t
	}

	if page := c.QueryParam("page"); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return filter, hajaro.Invalid("page must be a positive integer")
		}
		filter.Page = n
	}

	return filter, nil
}

func (s *Server) handleContractorDefects(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	contractorID, err := requireContractorID(c)
	if err != nil {
		return err
	}

	filter, err := defectFilterFromQuery(c, hajaro.RoleContractor)
	if err != nil {
		return err
	}
	filter.ContractorID = &contractorID

	page, err := s.defectService.FindDefects(ctx, filter)
	if err != nil {
		return err
	}

	return RespondOK(c, page)
}

func (s *Server) handleCriticalDefects(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	contractorID, err := requireContractorID(c)
	if err != nil {
		return err
	}

	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return hajaro.Invalid("page must be a positive integer")
		}
		page = n
	}

	defects, totalPages, err := s.defectService.FindCriticalDefects(ctx, contractorID, page)
	if err != nil {
		return err
	}

	return RespondPage(c, defects, page, totalPages)
}

// AssignPartnerRequest names the partner to hand the defect to.
type AssignPartnerRequest struct {
	PartnerID uuid.UUID `json:"partnerId" validate:"required"`
}

func (s *Server) handleAssignPartner(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	contractorID, err := requireContractorID(c)
	if err != nil {
		return err
	}

	defectID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req AssignPartnerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := s.defectService.AssignPartner(ctx, contractorID, defectID, req.PartnerID); err != nil {
		return err
	}

	s.log(c).Info("partner assigned",
		slog.String("defect_id", defectID.String()),
		slog.String("partner_id", req.PartnerID.String()),
	)

	s.enqueueStatusChanged(c, defectID, hajaro.DefectStatusPartnerAssigned)
	s.notifyPartnerAssignment(c, defectID, req.PartnerID)

	return RespondSuccess(c, "partner assigned")
}

// notifyPartnerAssignment emails the partner's admins about the new
// assignment. Best effort: failures are logged, the assignment stands.
func (s *Server) notifyPartnerAssignment(c echo.Context, defectID, partnerID uuid.UUID) {
	if s.email == nil {
		return
	}
	ctx := c.Request().Context()

	defect, err := s.defectService.FindDefectByID(ctx, defectID)
	if err != nil {
		s.log(c).Warn("could not load defect for assignment email", slog.String("error", err.Error()))
		return
	}

	complexName := ""
	if defect.Complex != nil {
		complexName = defect.Complex.Name
	}
	dong, ho := "", ""
	if defect.Unit != nil {
		dong, ho = defect.Unit.Dong, defect.Unit.Ho
	}

	employees, err := s.userService.FindEmployeesByPartner(ctx, partnerID)
	if err != nil {
		s.log(c).Warn("could not list partner employees for assignment email", slog.String("error", err.Error()))
		return
	}

	for _, employee := range employees {
		if employee.Role != hajaro.RolePartnerAdmin {
			continue
		}
		if err := s.email.SendDefectAssignedEmail(employee.Email, complexName, dong, ho, defect.Location); err != nil {
			s.log(c).Warn("failed to send assignment email",
				slog.String("to", employee.Email),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (s *Server) handleSearchComplexes(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	contractorID, err := requireContractorID(c)
	if err != nil {
		return err
	}

	complexes, err := s.apartmentService.SearchComplexes(ctx, contractorID, c.QueryParam("query"))
	if err != nil {
		return err
	}

	return RespondOK(c, complexes)
}

func (s *Server) handleListDongs(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	complexID, err := requireUUIDParam(c, "complexId")
	if err != nil {
		return err
	}

	dongs, err := s.apartmentService.ListDongs(ctx, complexID)
	if err != nil {
		return err
	}

	return RespondOK(c, dongs)
}

func (s *Server) handleListHos(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	complexID, err := requireUUIDParam(c, "complexId")
	if err != nil {
		return err
	}
	dong := c.Param("dong")
	if dong == "" {
		return hajaro.Invalid("dong is required")
	}

	hos, err := s.apartmentService.ListHos(ctx, complexID, dong)
	if err != nil {
		return err
	}

	return RespondOK(c, hos)
}

func (s *Server) handleListWorkTypes(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	contractorID, err := requireContractorID(c)
	if err != nil {
		return err
	}

	workTypes, err := s.contractorService.ListWorkTypes(ctx, contractorID)
	if err != nil {
		return err
	}

	return RespondOK(c, workTypes)
}

// CreateWorkTypeRequest registers a new trade in the taxonomy.
type CreateWorkTypeRequest struct {
	Type string `json:"type" validate:"required,max=50"`
}

func (s *Server) handleCreateWorkType(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	contractorID, err := requireContractorID(c)
	if err != nil {
		return err
	}

	var req CreateWorkTypeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	workType, err := s.contractorService.CreateWorkType(ctx, contractorID, req.Type)
	if err != nil {
		return err
	}

	return RespondCreated(c, workType)
}

// AddWorkDetailRequest appends a detail under an existing trade.
type AddWorkDetailRequest struct {
	Type   string `json:"type" validate:"required,max=50"`
	Detail string `json:"detail" validate:"required,max=50"`
}

func (s *Server) handleAddWorkDetail(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	contractorID, err := requireContractorID(c)
	if err != nil {
		return err
	}

	var req AddWorkDetailRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	workType, err := s.contractorService.AddWorkDetail(ctx, contractorID, req.Type, req.Detail)
	if err != nil {
		return err
	}

	return RespondOK(c, workType)
}

func (s *Server) handleListPartners(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	contractorID, err := requireContractorID(c)
	if err != nil {
		return err
	}

	partners, err := s.partnerService.ListPartnersByContractor(ctx, contractorID)
	if err != nil {
		return err
	}

	return RespondOK(c, partners)
}

func (s *Server) handleListPartnerships(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	contractorID, err := requireContractorID(c)
	if err != nil {
		return err
	}

	partnerships, err := s.associationService.ListPartnerships(ctx, contractorID)
	if err != nil {
		return err
	}

	return RespondOK(c, partnerships)
}

// CreatePartnershipRequest links the contractor with a partner company.
type CreatePartnershipRequest struct {
	PartnerID uuid.UUID `json:"partnerId" validate:"required"`
}

func (s *Server) handleCreatePartnership(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	contractorID, err := requireContractorID(c)
	if err != nil {
		return err
	}

	var req CreatePartnershipRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	partnership, err := s.associationService.CreatePartnership(ctx, contractorID, req.PartnerID)
	if err != nil {
		return err
	}

	return RespondCreated(c, partnership)
}

func (s *Server) handleListDuties(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	contractorID, err := requireContractorID(c)
	if err != nil {
		return err
	}

	var partnerID *uuid.UUID
	if raw := c.QueryParam("partnerId"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			return err
		}
		partnerID = &id
	}

	duties, err := s.associationService.ListDuties(ctx, contractorID, partnerID)
	if err != nil {
		return err
	}

	return RespondOK(c, duties)
}

// AssignDutyRequest scopes a partner to work types at one unit.
type AssignDutyRequest struct {
	PartnerID uuid.UUID `json:"partnerId" validate:"required"`
	UnitID    uuid.UUID `json:"unitId" validate:"required"`
	WorkTypes []string  `json:"workTypes" validate:"required,min=1,dive,max=50"`
}

func (s *Server) handleAssignDuty(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	contractorID, err := requireContractorID(c)
	if err != nil {
		return err
	}

	var req AssignDutyRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	duty := &hajaro.Association{
		ContractorID: contractorID,
		PartnerID:    req.PartnerID,
		UnitID:       req.UnitID,
		WorkTypes:    req.WorkTypes,
	}
	if err := s.associationService.AssignDuty(ctx, duty); err != nil {
		return err
	}

	return RespondCreated(c, duty)
}

func (s *Server) handleDeleteDuty(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	contractorID, err := requireContractorID(c)
	if err != nil {
		return err
	}

	dutyID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.associationService.DeleteDuty(ctx, contractorID, dutyID); err != nil {
		return err
	}

	return RespondNoContent(c)
}
