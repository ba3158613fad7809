package http

import (
	"github.com/banseok/hajaro"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes sets up all routes for the server.
// All routes are defined in this single file for easy navigation.
func (s *Server) registerRoutes() {
	// Health and metrics (public)
	s.echo.GET("/health", s.handleHealthCheck)
	s.echo.GET("/health/live", s.handleLivenessCheck)
	s.echo.GET("/health/ready", s.handleReadinessCheck)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Auth
	auth := s.echo.Group("/api/auth")
	auth.POST("/login", s.handleLogin, s.authRateLimiter.Middleware())
	auth.POST("/logout", s.handleLogout, s.RequireAuth())
	auth.GET("/me", s.handleMe, s.RequireAuth())

	// Defect detail, visible to every role that can see the defect
	api := s.echo.Group("/api", s.RequireAuth())
	api.GET("/defects/:id", s.handleGetDefect)

	// Resident app
	residents := s.echo.Group("/api/residents", s.RequireAuth(), s.RequireRole(hajaro.RoleResident))
	residents.POST("/defects", s.handleCreateDefect)
	residents.GET("/units/:unitId/defects", s.handleListUnitDefects)
	residents.POST("/defects/:id/confirm", s.handleConfirmDefect)
	residents.POST("/defects/:id/cancel", s.handleCancelDefect)
	residents.GET("/notifications", s.handleListNotifications)
	residents.POST("/notifications/read", s.handleMarkNotificationsRead)
	residents.POST("/device-tokens", s.handleRegisterDeviceToken)
	residents.DELETE("/device-tokens", s.handleDeleteDeviceToken)
	residents.PUT("/push-setting", s.handleUpdatePushSetting)

	// Contractor dashboard
	contractors := s.echo.Group("/api/contractors", s.RequireAuth(), s.RequireRole(hajaro.RoleContractor))
	contractors.GET("/defects", s.handleContractorDefects)
	contractors.GET("/defects/critical", s.handleCriticalDefects)
	contractors.POST("/defects/:id/assign-partner", s.handleAssignPartner)
	contractors.GET("/complexes", s.handleSearchComplexes)
	contractors.GET("/complexes/:complexId/dongs", s.handleListDongs)
	contractors.GET("/complexes/:complexId/dongs/:dong/hos", s.handleListHos)
	contractors.GET("/work-types", s.handleListWorkTypes)
	contractors.POST("/work-types", s.handleCreateWorkType)
	contractors.POST("/work-types/details", s.handleAddWorkDetail)
	contractors.GET("/partners", s.handleListPartners)
	contractors.GET("/partnerships", s.handleListPartnerships)
	contractors.POST("/partnerships", s.handleCreatePartnership)
	contractors.GET("/duties", s.handleListDuties)
	contractors.POST("/duties", s.handleAssignDuty)
	contractors.DELETE("/duties/:id", s.handleDeleteDuty)

	// Partner back office
	partners := s.echo.Group("/api/partners", s.RequireAuth(), s.RequireRole(hajaro.RolePartnerAdmin))
	partners.GET("/stats", s.handlePartnerStats)
	partners.GET("/defects", s.handlePartnerDefects)
	partners.POST("/defects/:id/assign-engineer", s.handleAssignEngineer)
	partners.POST("/defects/:id/reject", s.handleRejectByPartnerAdmin)
	partners.GET("/engineers", s.handleListEngineers)
	partners.GET("/employees", s.handleListEmployees)

	// Engineer app
	engineers := s.echo.Group("/api/engineers", s.RequireAuth(), s.RequireRole(hajaro.RoleEngineer))
	engineers.GET("/complexes", s.handleEngineerComplexes)
	engineers.GET("/complexes/:complexId/tasks", s.handleEngineerTasks)
	engineers.POST("/defects/:id/reject", s.handleRejectByEngineer)
	engineers.POST("/defects/:id/repair", s.handleMarkRepaired)

	// Platform console
	platform := s.echo.Group("/api/platform", s.RequireAuth(), s.RequireRole(hajaro.RolePlatform))
	platform.POST("/users", s.handleCreateUser)
	platform.GET("/defects/daily-counts", s.handleDailyDefectCounts)
}
