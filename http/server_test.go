package http_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/banseok/hajaro"
	apphttp "github.com/banseok/hajaro/http"
	"github.com/banseok/hajaro/internal/queue"
	"github.com/banseok/hajaro/internal/session"
	"github.com/banseok/hajaro/mock"
	"github.com/google/uuid"
)

const testToken = "test-session-token"

// newTestServer builds a server over mocks. The nil services in cfg are
// filled with zero-value mocks; authUser, when set, is resolvable through
// the bearer token testToken.
func newTestServer(t *testing.T, cfg apphttp.Config, authUser *hajaro.User) *apphttp.Server {
	t.Helper()

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.DefectService == nil {
		cfg.DefectService = &mock.DefectService{}
	}
	if cfg.UserService == nil {
		cfg.UserService = &mock.UserService{}
	}
	if cfg.ApartmentService == nil {
		cfg.ApartmentService = &mock.ApartmentService{}
	}
	if cfg.ContractorService == nil {
		cfg.ContractorService = &mock.ContractorService{}
	}
	if cfg.PartnerService == nil {
		cfg.PartnerService = &mock.PartnerService{}
	}
	if cfg.AssociationService == nil {
		cfg.AssociationService = &mock.AssociationService{}
	}
	if cfg.NotificationService == nil {
		cfg.NotificationService = &mock.NotificationService{}
	}
	if cfg.DeviceTokenService == nil {
		cfg.DeviceTokenService = &mock.DeviceTokenService{}
	}
	if cfg.SessionService == nil {
		cfg.SessionService = &mock.SessionService{}
	}
	if cfg.Queue == nil {
		cfg.Queue = queue.NewMockQueue()
	}

	if authUser != nil {
		sessions := &mock.SessionService{
			FindSessionByTokenFn: func(ctx context.Context, token string) (*hajaro.Session, error) {
				if token != testToken {
					return nil, hajaro.Unauthorized("invalid or expired session")
				}
				return &hajaro.Session{
					ID:        uuid.New(),
					UserID:    authUser.ID,
					Token:     token,
					ExpiresAt: time.Now().Add(time.Hour),
				}, nil
			},
		}
		users := &mock.UserService{
			FindUserByIDFn: func(ctx context.Context, id uuid.UUID) (*hajaro.User, error) {
				if id != authUser.ID {
					return nil, hajaro.NotFound("user not found")
				}
				return authUser, nil
			},
		}
		cfg.SessionCache = session.NewCache(sessions, users)
	} else {
		cfg.SessionCache = session.NewCache(cfg.SessionService, cfg.UserService)
	}

	s := apphttp.NewServer(cfg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Close(ctx)
	})
	return s
}

func residentUser() *hajaro.User {
	unitID := uuid.New()
	return &hajaro.User{
		ID:          uuid.New(),
		Email:       "resident@example.com",
		Name:        "김입주",
		Role:        hajaro.RoleResident,
		UnitID:      &unitID,
		ReceivePush: true,
	}
}

func contractorUser() *hajaro.User {
	contractorID := uuid.New()
	return &hajaro.User{
		ID:           uuid.New(),
		Email:        "staff@contractor.example.com",
		Name:         "박시공",
		Role:         hajaro.RoleContractor,
		ContractorID: &contractorID,
	}
}

func partnerAdminUser() *hajaro.User {
	partnerID := uuid.New()
	return &hajaro.User{
		ID:        uuid.New(),
		Email:     "admin@partner.example.com",
		Name:      "이협력",
		Role:      hajaro.RolePartnerAdmin,
		PartnerID: &partnerID,
	}
}

func engineerUser() *hajaro.User {
	partnerID := uuid.New()
	return &hajaro.User{
		ID:        uuid.New(),
		Email:     "engineer@partner.example.com",
		Name:      "최기사",
		Role:      hajaro.RoleEngineer,
		PartnerID: &partnerID,
	}
}

func platformUser() *hajaro.User {
	return &hajaro.User{
		ID:    uuid.New(),
		Email: "ops@platform.example.com",
		Name:  "운영자",
		Role:  hajaro.RolePlatform,
	}
}
