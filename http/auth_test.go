package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/banseok/hajaro"
	apphttp "github.com/banseok/hajaro/http"
	"github.com/banseok/hajaro/mock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	userID := uuid.New()

	users := &mock.UserService{
		AuthenticateFn: func(ctx context.Context, email, password string) (*hajaro.User, error) {
			if email != "resident@example.com" || password != "correct-password" {
				return nil, hajaro.Unauthorized("invalid credentials")
			}
			return &hajaro.User{ID: userID, Email: email, Role: hajaro.RoleResident}, nil
		},
	}
	sessions := &mock.SessionService{
		CreateSessionFn: func(ctx context.Context, uid uuid.UUID, duration time.Duration) (*hajaro.Session, error) {
			require.Equal(t, userID, uid)
			return &hajaro.Session{
				ID:        uuid.New(),
				UserID:    uid,
				Token:     "issued-token",
				ExpiresAt: time.Now().Add(duration),
			}, nil
		},
	}

	s := newTestServer(t, apphttp.Config{UserService: users, SessionService: sessions}, nil)

	body := `{"email":"resident@example.com","password":"correct-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set(echoHeaderContentType, "application/json")
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp apphttp.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "issued-token", resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, userID, resp.User.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := &mock.UserService{
		AuthenticateFn: func(ctx context.Context, email, password string) (*hajaro.User, error) {
			return nil, hajaro.Unauthorized("invalid credentials")
		},
	}

	s := newTestServer(t, apphttp.Config{UserService: users}, nil)

	body := `{"email":"resident@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set(echoHeaderContentType, "application/json")
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), hajaro.EUNAUTHORIZED)
}

func TestLogin_MissingFields(t *testing.T) {
	s := newTestServer(t, apphttp.Config{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
	req.Header.Set(echoHeaderContentType, "application/json")
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout(t *testing.T) {
	user := residentUser()

	deleted := ""
	sessions := &mock.SessionService{
		DeleteSessionFn: func(ctx context.Context, token string) error {
			deleted = token
			return nil
		},
	}

	s := newTestServer(t, apphttp.Config{SessionService: sessions}, user)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testToken, deleted)
}

func TestMe(t *testing.T) {
	user := residentUser()
	s := newTestServer(t, apphttp.Config{}, user)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got hajaro.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Email, got.Email)
}

func TestRequireAuth_MissingToken(t *testing.T) {
	s := newTestServer(t, apphttp.Config{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole_WrongRole(t *testing.T) {
	// A resident calling a contractor route is forbidden
	s := newTestServer(t, apphttp.Config{}, residentUser())

	req := httptest.NewRequest(http.MethodGet, "/api/contractors/defects", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()

	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

const echoHeaderContentType = "Content-Type"
