// Package server
//
// @title BloodBridge Web
// @version 1.0
// @description Server-rendered front-end for the BloodBridge API
// @host localhost:8080
// @BasePath /
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/backend"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/config"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/guard"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/session"
)

// Server represents the HTTP server
type Server struct {
	router    *gin.Engine
	db        *gorm.DB
	config    *config.Config
	logger    zerolog.Logger
	validator *validator.Validate
	store     session.Store
	sessions  *session.Manager
	tokens    *session.Tokens
	limiter   *ipLimiter
	cron      *cron.Cron
	version   string
}

// New creates a new server instance backed by the configured database
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := session.OpenDB(cfg.Database.URL, zlog)
	if err != nil {
		return nil, err
	}

	if cfg.Session.SecretIsEphemeral {
		zlog.Warn().Msg("SESSION_SECRET not set - sessions will not survive a restart")
	}

	s := newServer(cfg, session.NewDBStore(db), zlog, version)
	s.db = db
	return s, nil
}

func newServer(cfg *config.Config, store session.Store, zlog zerolog.Logger, version string) *Server {
	s := &Server{
		config:    cfg,
		logger:    zlog,
		validator: newValidator(),
		store:     store,
		tokens:    session.NewTokens(cfg.Session.Secret, cfg.Session.TTL),
		limiter:   newIPLimiter(cfg.Server.LoginRatePerMin),
		version:   version,
		sessions: session.NewManager(store, backend.Options{
			BaseURL:            cfg.Backend.BaseURL,
			Timeout:            cfg.Backend.Timeout,
			InsecureSkipVerify: cfg.Backend.InsecureSkipVerify,
		}, cfg.Session.TTL, zlog),
	}

	s.setupRouter()
	return s
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	switch s.config.App.Environment {
	case "local":
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.router.SetHTMLTemplate(loadTemplates())

	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())

	// CORS for the /api/session consumers on other origins
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.router.GET("/health", s.healthCheck)

	pages := s.router.Group("/")
	pages.Use(s.sessionMiddleware())
	{
		pages.GET("/", s.landingPage)
		pages.GET("/about", s.aboutPage)
		pages.GET("/contact", s.contactPage)

		pages.GET("/login", s.loginPage)
		pages.POST("/login", s.loginRateLimit(), s.login)
		pages.GET("/signup", s.signupPage)
		pages.POST("/signup", s.signup)
		pages.POST("/logout", s.logout)

		private := pages.Group("")
		private.Use(s.guardMiddleware(guard.Authenticated))
		{
			private.GET("/home", s.homePage)
			private.GET("/user", s.userPage)
			private.GET("/donation", s.donationPage)
			private.POST("/donation", s.scheduleDonation)
			private.GET("/request", s.requestPage)
			private.POST("/request", s.submitRequest)
			private.GET("/profile", s.profilePage)
			private.POST("/profile", s.updateProfile)
			private.POST("/profile/appointments/:id", s.updateAppointment)
			private.POST("/profile/appointments/:id/delete", s.deleteAppointment)
		}

		admin := pages.Group("/admin")
		admin.Use(s.guardMiddleware(guard.Admin))
		{
			admin.GET("", s.adminDashboard)
			admin.POST("/inventory/:id", s.adminUpdateInventory)
			admin.POST("/inventory/:id/add", s.adminAddUnits)
			admin.POST("/inventory/:id/remove", s.adminRemoveUnits)
			admin.POST("/inventory/:id/delete", s.adminDeleteInventory)
			admin.POST("/appointments/:id/approve", s.adminApproveAppointment)
			admin.POST("/appointments/:id/cancel", s.adminCancelAppointment)
			admin.POST("/users/:id", s.adminUpdateUser)
			admin.POST("/users/:id/delete", s.adminDeleteUser)
		}
	}

	// Session accessor for script consumers
	api := s.router.Group("/api/session")
	api.Use(s.sessionMiddleware())
	{
		api.GET("", s.getSession)
		api.POST("/refetch", s.refetchSession)
		api.POST("/logout", s.logoutSession)
	}

	s.router.NoRoute(s.sessionMiddleware(), s.notFound)
}

func (s *Server) allowedOrigins() []string {
	if len(s.config.Server.AllowedOrigins) > 0 {
		return s.config.Server.AllowedOrigins
	}
	return []string{"http://localhost:5173"}
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "bloodbridge-web",
		"version":   s.version,
		"sessions":  s.sessions.Len(),
	})
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	if err := s.startSweeper(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// WriteTimeout covers the guard wait plus a backend round trip
	srv := &http.Server{
		Addr:              s.config.Server.Address,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.config.Session.GuardWait + s.config.Backend.Timeout + 30*time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info().Str("address", srv.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.Close()
	s.logger.Info().Msg("Server shutdown complete")
	return nil
}

// Close stops background work and releases the database
func (s *Server) Close() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.sessions.Close()

	// Close database connection to flush WAL writes
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				s.logger.Error().Err(err).Msg("Error closing database")
			}
		}
	}
}
