package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/banseok/hajaro"
	apphttp "github.com/banseok/hajaro/http"
	"github.com/banseok/hajaro/internal/queue"
	"github.com/banseok/hajaro/internal/storage"
	"github.com/banseok/hajaro/mock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineerTasks(t *testing.T) {
	user := engineerUser()
	complexID := uuid.New()

	var gotComplexID uuid.UUID
	var gotFilter hajaro.DefectFilter
	defects := &mock.DefectService{
		FindEngineerTasksFn: func(ctx context.Context, engineerID, cID uuid.UUID, filter hajaro.DefectFilter) ([]*hajaro.DongTaskGroup, error) {
			require.Equal(t, user.ID, engineerID)
			gotComplexID = cID
			gotFilter = filter
			return []*hajaro.DongTaskGroup{}, nil
		},
	}

	s := newTestServer(t, apphttp.Config{DefectService: defects}, user)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/engineers/complexes/%s/tasks?dong=103", complexID), nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, complexID, gotComplexID)
	assert.Equal(t, hajaro.RoleEngineer, gotFilter.Role)
	assert.Equal(t, []string{"103"}, gotFilter.Dongs)
}

func TestRejectByEngineer(t *testing.T) {
	user := engineerUser()
	defectID := uuid.New()
	q := queue.NewMockQueue()

	var gotReason string
	defects := &mock.DefectService{
		RejectByEngineerFn: func(ctx context.Context, engineerID, dID uuid.UUID, reason string) error {
			require.Equal(t, user.ID, engineerID)
			require.Equal(t, defectID, dID)
			gotReason = reason
			return nil
		},
	}

	s := newTestServer(t, apphttp.Config{DefectService: defects, Queue: q}, user)

	body := `{"reason":"자재 수급 불가"}`
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/engineers/defects/%s/reject", defectID), strings.NewReader(body))
	req.Header.Set(echoHeaderContentType, "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "자재 수급 불가", gotReason)

	jobs, err := q.ListJobs(context.Background(), queue.JobFilter{DefectID: &defectID})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, string(hajaro.DefectStatusRejected), jobs[0].Payload["status"])
}

func TestRejectByEngineer_MissingReason(t *testing.T) {
	s := newTestServer(t, apphttp.Config{}, engineerUser())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/engineers/defects/%s/reject", uuid.New()), strings.NewReader(`{}`))
	req.Header.Set(echoHeaderContentType, "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkRepaired(t *testing.T) {
	user := engineerUser()
	defectID := uuid.New()
	q := queue.NewMockQueue()

	var gotImage string
	defects := &mock.DefectService{
		MarkRepairedFn: func(ctx context.Context, engineerID, dID uuid.UUID, repairedImage string) error {
			require.Equal(t, user.ID, engineerID)
			require.Equal(t, defectID, dID)
			gotImage = repairedImage
			return nil
		},
	}

	s := newTestServer(t, apphttp.Config{
		DefectService: defects,
		FileStorage:   testStorage(t),
		Queue:         q,
	}, user)

	body, contentType := multipartBody(t, "image", "after.png", pngHeader, nil)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/engineers/defects/%s/repair", defectID), body)
	req.Header.Set(echoHeaderContentType, contentType)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(gotImage, storage.KindRepaired+"/"))

	jobs, err := q.ListJobs(context.Background(), queue.JobFilter{DefectID: &defectID})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, string(hajaro.DefectStatusRepaired), jobs[0].Payload["status"])
}

func TestMarkRepaired_AlreadyRejected(t *testing.T) {
	user := engineerUser()
	defects := &mock.DefectService{
		MarkRepairedFn: func(ctx context.Context, engineerID, defectID uuid.UUID, repairedImage string) error {
			return hajaro.NotAllowed("defect is not scheduled for repair")
		},
	}

	s := newTestServer(t, apphttp.Config{
		DefectService: defects,
		FileStorage:   testStorage(t),
	}, user)

	body, contentType := multipartBody(t, "image", "after.png", pngHeader, nil)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/engineers/defects/%s/repair", uuid.New()), body)
	req.Header.Set(echoHeaderContentType, contentType)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
