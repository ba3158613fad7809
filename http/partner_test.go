package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/banseok/hajaro"
	apphttp "github.com/banseok/hajaro/http"
	"github.com/banseok/hajaro/internal/queue"
	"github.com/banseok/hajaro/mock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartnerStats(t *testing.T) {
	user := partnerAdminUser()

	partners := &mock.PartnerService{
		GetDefectStatsFn: func(ctx context.Context, partnerID uuid.UUID) (*hajaro.PartnerDefectStats, error) {
			require.Equal(t, *user.PartnerID, partnerID)
			return &hajaro.PartnerDefectStats{
				PartnerID:    partnerID,
				NotProcessed: 4,
				InProgress:   2,
				Repaired:     7,
			}, nil
		},
	}

	s := newTestServer(t, apphttp.Config{PartnerService: partners}, user)

	req := httptest.NewRequest(http.MethodGet, "/api/partners/stats", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got hajaro.PartnerDefectStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 4, got.NotProcessed)
	assert.Equal(t, 7, got.Repaired)
}

func TestPartnerDefects_ScopedToPartner(t *testing.T) {
	user := partnerAdminUser()

	var gotFilter hajaro.DefectFilter
	defects := &mock.DefectService{
		FindDefectsFn: func(ctx context.Context, filter hajaro.DefectFilter) (*hajaro.DefectPage, error) {
			gotFilter = filter
			return &hajaro.DefectPage{Groups: []*hajaro.UnitDefectGroup{}}, nil
		},
	}

	s := newTestServer(t, apphttp.Config{DefectService: defects}, user)

	req := httptest.NewRequest(http.MethodGet, "/api/partners/defects?bucket=not_processed", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, gotFilter.PartnerID)
	assert.Equal(t, *user.PartnerID, *gotFilter.PartnerID)
	assert.Equal(t, hajaro.RolePartnerAdmin, gotFilter.Role)
	assert.Equal(t, []string{"not_processed"}, gotFilter.Buckets)
}

func TestAssignEngineer(t *testing.T) {
	user := partnerAdminUser()
	defectID := uuid.New()
	engineerID := uuid.New()
	q := queue.NewMockQueue()

	defects := &mock.DefectService{
		AssignEngineerFn: func(ctx context.Context, partnerID, dID, eID uuid.UUID) error {
			require.Equal(t, *user.PartnerID, partnerID)
			require.Equal(t, defectID, dID)
			require.Equal(t, engineerID, eID)
			return nil
		},
	}

	s := newTestServer(t, apphttp.Config{DefectService: defects, Queue: q}, user)

	body := fmt.Sprintf(`{"engineerId":%q}`, engineerID)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/partners/defects/%s/assign-engineer", defectID), strings.NewReader(body))
	req.Header.Set(echoHeaderContentType, "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	jobs, err := q.ListJobs(context.Background(), queue.JobFilter{DefectID: &defectID})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, string(hajaro.DefectStatusScheduled), jobs[0].Payload["status"])
}

func TestAssignEngineer_OtherPartnersDefect(t *testing.T) {
	user := partnerAdminUser()
	defects := &mock.DefectService{
		AssignEngineerFn: func(ctx context.Context, partnerID, defectID, engineerID uuid.UUID) error {
			return hajaro.NotFound("defect not found")
		},
	}

	s := newTestServer(t, apphttp.Config{DefectService: defects}, user)

	body := fmt.Sprintf(`{"engineerId":%q}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/partners/defects/%s/assign-engineer", uuid.New()), strings.NewReader(body))
	req.Header.Set(echoHeaderContentType, "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRejectByPartnerAdmin(t *testing.T) {
	user := partnerAdminUser()
	defectID := uuid.New()
	q := queue.NewMockQueue()

	defects := &mock.DefectService{
		RejectByPartnerAdminFn: func(ctx context.Context, partnerID, dID uuid.UUID) error {
			require.Equal(t, *user.PartnerID, partnerID)
			require.Equal(t, defectID, dID)
			return nil
		},
	}

	s := newTestServer(t, apphttp.Config{DefectService: defects, Queue: q}, user)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/partners/defects/%s/reject", defectID), nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	jobs, err := q.ListJobs(context.Background(), queue.JobFilter{DefectID: &defectID})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, string(hajaro.DefectStatusRejected), jobs[0].Payload["status"])
}

func TestListEngineers(t *testing.T) {
	user := partnerAdminUser()

	users := &mock.UserService{
		FindEngineersByPartnerFn: func(ctx context.Context, partnerID uuid.UUID) ([]*hajaro.User, error) {
			require.Equal(t, *user.PartnerID, partnerID)
			return []*hajaro.User{
				{ID: uuid.New(), Name: "최기사", Role: hajaro.RoleEngineer},
			}, nil
		},
	}

	s := newTestServer(t, apphttp.Config{UserService: users}, user)

	req := httptest.NewRequest(http.MethodGet, "/api/partners/engineers", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []*hajaro.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "최기사", got[0].Name)
}
