package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/banseok/hajaro"
	apphttp "github.com/banseok/hajaro/http"
	"github.com/banseok/hajaro/internal/queue"
	"github.com/banseok/hajaro/mock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmail records the assignment emails a handler sends.
type stubEmail struct {
	welcomes  []string
	assigned  []string
	failSends bool
}

func (e *stubEmail) SendWelcomeEmail(to, name, tempPassword string) error {
	if e.failSends {
		return fmt.Errorf("postmark unavailable")
	}
	e.welcomes = append(e.welcomes, to)
	return nil
}

func (e *stubEmail) SendDefectAssignedEmail(to, complexName, dong, ho, location string) error {
	if e.failSends {
		return fmt.Errorf("postmark unavailable")
	}
	e.assigned = append(e.assigned, to)
	return nil
}

func TestContractorDefects_FilterParsing(t *testing.T) {
	user := contractorUser()
	complexID := uuid.New()

	var gotFilter hajaro.DefectFilter
	defects := &mock.DefectService{
		FindDefectsFn: func(ctx context.Context, filter hajaro.DefectFilter) (*hajaro.DefectPage, error) {
			gotFilter = filter
			return &hajaro.DefectPage{Groups: []*hajaro.UnitDefectGroup{}}, nil
		},
	}

	s := newTestServer(t, apphttp.Config{DefectService: defects}, user)

	target := "/api/contractors/defects?" + strings.Join([]string{
		"complexId=" + complexID.String(),
		"dong=101", "dong=102",
		"ho=1203",
		"status=SCHEDULED", "status=REPAIRED",
		"workType=" + "%EB%8F%84%EB%B0%B0",
		"from=2026-03-01", "to=2026-03-31",
		"page=3",
	}, "&")
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NotNil(t, gotFilter.ContractorID)
	assert.Equal(t, *user.ContractorID, *gotFilter.ContractorID)
	assert.Equal(t, hajaro.RoleContractor, gotFilter.Role)
	assert.Equal(t, []uuid.UUID{complexID}, gotFilter.ComplexIDs)
	assert.Equal(t, []string{"101", "102"}, gotFilter.Dongs)
	assert.Equal(t, []string{"1203"}, gotFilter.Hos)
	assert.Equal(t, []hajaro.DefectStatus{hajaro.DefectStatusScheduled, hajaro.DefectStatusRepaired}, gotFilter.Statuses)
	require.NotNil(t, gotFilter.WorkType)
	assert.Equal(t, "도배", *gotFilter.WorkType)
	require.NotNil(t, gotFilter.RequestedFrom)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *gotFilter.RequestedFrom)
	assert.Equal(t, 3, gotFilter.Page)
}

func TestContractorDefects_UnknownStatus(t *testing.T) {
	s := newTestServer(t, apphttp.Config{}, contractorUser())

	req := httptest.NewRequest(http.MethodGet, "/api/contractors/defects?status=BOGUS", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "BOGUS")
}

func TestContractorDefects_NoContractorAffiliation(t *testing.T) {
	user := contractorUser()
	user.ContractorID = nil

	s := newTestServer(t, apphttp.Config{}, user)

	req := httptest.NewRequest(http.MethodGet, "/api/contractors/defects", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAssignPartner(t *testing.T) {
	user := contractorUser()
	defectID := uuid.New()
	partnerID := uuid.New()
	q := queue.NewMockQueue()
	email := &stubEmail{}

	defects := &mock.DefectService{
		AssignPartnerFn: func(ctx context.Context, contractorID, dID, pID uuid.UUID) error {
			require.Equal(t, *user.ContractorID, contractorID)
			require.Equal(t, defectID, dID)
			require.Equal(t, partnerID, pID)
			return nil
		},
		FindDefectByIDFn: func(ctx context.Context, id uuid.UUID) (*hajaro.Defect, error) {
			return &hajaro.Defect{
				ID:       id,
				Status:   hajaro.DefectStatusPartnerAssigned,
				Location: "안방",
				Complex:  &hajaro.Complex{Name: "반석자이"},
				Unit:     &hajaro.Unit{Dong: "101", Ho: "1203"},
			}, nil
		},
	}
	users := &mock.UserService{
		FindEmployeesByPartnerFn: func(ctx context.Context, pID uuid.UUID) ([]*hajaro.User, error) {
			require.Equal(t, partnerID, pID)
			return []*hajaro.User{
				{ID: uuid.New(), Email: "admin@partner.example.com", Role: hajaro.RolePartnerAdmin},
				{ID: uuid.New(), Email: "engineer@partner.example.com", Role: hajaro.RoleEngineer},
			}, nil
		},
	}

	s := newTestServer(t, apphttp.Config{
		DefectService: defects,
		UserService:   users,
		EmailService:  email,
		Queue:         q,
	}, user)

	body := fmt.Sprintf(`{"partnerId":%q}`, partnerID)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/contractors/defects/%s/assign-partner", defectID), strings.NewReader(body))
	req.Header.Set(echoHeaderContentType, "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	jobs, err := q.ListJobs(context.Background(), queue.JobFilter{DefectID: &defectID})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, string(hajaro.DefectStatusPartnerAssigned), jobs[0].Payload["status"])

	// Only partner admins get the assignment email
	assert.Equal(t, []string{"admin@partner.example.com"}, email.assigned)
}

func TestAssignPartner_NoDuty(t *testing.T) {
	user := contractorUser()
	defects := &mock.DefectService{
		AssignPartnerFn: func(ctx context.Context, contractorID, defectID, partnerID uuid.UUID) error {
			return hajaro.Invalid("partner has no duty covering this defect")
		},
	}

	s := newTestServer(t, apphttp.Config{DefectService: defects}, user)

	body := fmt.Sprintf(`{"partnerId":%q}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/contractors/defects/%s/assign-partner", uuid.New()), strings.NewReader(body))
	req.Header.Set(echoHeaderContentType, "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssignDuty(t *testing.T) {
	user := contractorUser()
	partnerID := uuid.New()
	unitID := uuid.New()

	var gotDuty *hajaro.Association
	associations := &mock.AssociationService{
		AssignDutyFn: func(ctx context.Context, duty *hajaro.Association) error {
			duty.ID = uuid.New()
			gotDuty = duty
			return nil
		},
	}

	s := newTestServer(t, apphttp.Config{AssociationService: associations}, user)

	body := fmt.Sprintf(`{"partnerId":%q,"unitId":%q,"workTypes":["도배","타일"]}`, partnerID, unitID)
	req := httptest.NewRequest(http.MethodPost, "/api/contractors/duties", strings.NewReader(body))
	req.Header.Set(echoHeaderContentType, "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, gotDuty)
	assert.Equal(t, *user.ContractorID, gotDuty.ContractorID)
	assert.Equal(t, partnerID, gotDuty.PartnerID)
	assert.Equal(t, []string{"도배", "타일"}, gotDuty.WorkTypes)
}

func TestAssignDuty_EmptyWorkTypes(t *testing.T) {
	s := newTestServer(t, apphttp.Config{}, contractorUser())

	body := fmt.Sprintf(`{"partnerId":%q,"unitId":%q,"workTypes":[]}`, uuid.New(), uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/api/contractors/duties", strings.NewReader(body))
	req.Header.Set(echoHeaderContentType, "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteDuty(t *testing.T) {
	user := contractorUser()
	dutyID := uuid.New()

	deleted := false
	associations := &mock.AssociationService{
		DeleteDutyFn: func(ctx context.Context, contractorID, id uuid.UUID) error {
			require.Equal(t, *user.ContractorID, contractorID)
			require.Equal(t, dutyID, id)
			deleted = true
			return nil
		},
	}

	s := newTestServer(t, apphttp.Config{AssociationService: associations}, user)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/contractors/duties/%s", dutyID), nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, deleted)
}
