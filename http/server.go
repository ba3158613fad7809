// Package http implements the Echo transport over the domain services. One
// route group per role keeps each client app's surface separate.
package http

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/banseok/hajaro"
	appmiddleware "github.com/banseok/hajaro/internal/middleware"
	"github.com/banseok/hajaro/internal/queue"
	"github.com/banseok/hajaro/internal/session"
	"github.com/banseok/hajaro/internal/storage"
	"github.com/banseok/hajaro/internal/validation"
	"github.com/labstack/echo/v4"
)

// Server represents the HTTP server with all its dependencies.
type Server struct {
	echo   *echo.Echo
	ln     net.Listener
	logger *slog.Logger

	// Configuration
	Addr            string
	SessionDuration time.Duration

	// Domain services
	defectService       hajaro.DefectService
	userService         hajaro.UserService
	apartmentService    hajaro.ApartmentService
	contractorService   hajaro.ContractorService
	partnerService      hajaro.PartnerService
	associationService  hajaro.AssociationService
	notificationService hajaro.NotificationService
	deviceTokenService  hajaro.DeviceTokenService
	sessionService      hajaro.SessionService

	// Infrastructure
	sessions    *session.Cache
	fileStorage storage.FileStorage
	queue       queue.Queue
	email       EmailSender

	rateLimiter     *appmiddleware.RateLimiter
	authRateLimiter *appmiddleware.RateLimiter
}

// EmailSender is the slice of the email service the transport needs.
type EmailSender interface {
	SendWelcomeEmail(to, name, tempPassword string) error
	SendDefectAssignedEmail(to, complexName, dong, ho, location string) error
}

// Config holds the configuration for creating a new Server.
type Config struct {
	Addr            string
	Logger          *slog.Logger
	SessionDuration time.Duration

	// Domain services
	DefectService       hajaro.DefectService
	UserService         hajaro.UserService
	ApartmentService    hajaro.ApartmentService
	ContractorService   hajaro.ContractorService
	PartnerService      hajaro.PartnerService
	AssociationService  hajaro.AssociationService
	NotificationService hajaro.NotificationService
	DeviceTokenService  hajaro.DeviceTokenService
	SessionService      hajaro.SessionService

	// Infrastructure
	SessionCache *session.Cache
	FileStorage  storage.FileStorage
	Queue        queue.Queue
	EmailService EmailSender
}

// NewServer creates a new HTTP server with the given configuration.
func NewServer(cfg Config) *Server {
	s := &Server{
		Addr:                cfg.Addr,
		logger:              cfg.Logger,
		SessionDuration:     cfg.SessionDuration,
		defectService:       cfg.DefectService,
		userService:         cfg.UserService,
		apartmentService:    cfg.ApartmentService,
		contractorService:   cfg.ContractorService,
		partnerService:      cfg.PartnerService,
		associationService:  cfg.AssociationService,
		notificationService: cfg.NotificationService,
		deviceTokenService:  cfg.DeviceTokenService,
		sessionService:      cfg.SessionService,
		sessions:            cfg.SessionCache,
		fileStorage:         cfg.FileStorage,
		queue:               cfg.Queue,
		email:               cfg.EmailService,
	}

	if s.SessionDuration == 0 {
		s.SessionDuration = hajaro.DefaultSessionDuration
	}

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Validator = validation.NewValidator()

	s.registerMiddleware()
	s.registerRoutes()

	return s
}

// Echo returns the underlying Echo instance.
// Use sparingly - prefer registering routes through Server methods.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Open starts the HTTP server.
func (s *Server) Open() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.echo.Server.Serve(s.ln); err != nil {
			s.logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	s.logger.Info("server started", slog.String("addr", s.Addr))
	return nil
}

// Close gracefully shuts down the HTTP server.
func (s *Server) Close(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return err
	}
	s.rateLimiter.Shutdown()
	s.authRateLimiter.Shutdown()
	s.logger.Info("server stopped")
	return nil
}

// URL returns the URL of the server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}
