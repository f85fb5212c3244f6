// Package http is the HTTP adapter: it translates requests into application
// service calls and service errors into status codes.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/application/port"
	"github.com/expensedesk/reimbursement-backoffice/internal/application/service"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	requests    service.RequestService
	attachments service.AttachmentService
	employees   service.EmployeeService
	reports     service.ReportService
	auth        *service.AuthService
	storage     port.FileStorage
	logger      *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	requests service.RequestService,
	attachments service.AttachmentService,
	employees service.EmployeeService,
	reports service.ReportService,
	auth *service.AuthService,
	storage port.FileStorage,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		requests:    requests,
		attachments: attachments,
		employees:   employees,
		reports:     reports,
		auth:        auth,
		storage:     storage,
		logger:      logger,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     *zap.Logger
}

// NewServer creates a new HTTP server with the given handlers
func NewServer(config ServerConfig, handlers *Handlers, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		handlers: handlers,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger(s.logger))
	s.router.Use(corsMiddleware())
}

func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.GET("/health", h.HealthCheck)

	api := s.router.Group("/api/v1")

	api.POST("/auth/login", h.Login)

	authed := api.Group("")
	authed.Use(authMiddleware(h.auth))
	{
		authed.POST("/requests", h.CreateRequest)
		authed.GET("/requests", h.ListRequests)
		authed.GET("/requests/:id", h.GetRequest)
		authed.PUT("/requests/:id", h.UpdateRequest)
		authed.DELETE("/requests/:id", h.DeleteRequest)

		authed.POST("/requests/:id/submit", h.SubmitRequest)
		authed.POST("/requests/:id/cancel", h.CancelRequest)
		authed.GET("/requests/:id/history", h.ListHistory)

		authed.POST("/requests/:id/attachments", h.AttachFile)
		authed.GET("/requests/:id/attachments", h.ListAttachments)
		authed.DELETE("/requests/:id/attachments/:attachmentID", h.RemoveAttachment)

		authed.GET("/employees", h.ListEmployees)
		authed.GET("/employees/:id", h.GetEmployee)

		authed.POST("/reports", h.RequestReport)
		authed.GET("/reports/:id", h.GetReport)
		authed.GET("/reports/:id/download", h.DownloadReport)
	}

	// Financial decisions require the FINANCE or ADMIN role.
	finance := authed.Group("")
	finance.Use(requireRoles(entity.RoleFinance, entity.RoleAdmin))
	{
		finance.POST("/requests/:id/approve", h.ApproveRequest)
		finance.POST("/requests/:id/reject", h.RejectRequest)
		finance.POST("/requests/:id/pay", h.PayRequest)
	}

	admin := authed.Group("")
	admin.Use(requireRoles(entity.RoleAdmin))
	{
		admin.POST("/auth/register", h.Register)
		admin.POST("/employees", h.CreateEmployee)
		admin.PUT("/employees/:id", h.UpdateEmployee)
		admin.DELETE("/employees/:id", h.DeleteEmployee)
		admin.POST("/reports/purge-expired", h.PurgeExpiredReports)
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	respondOK(c, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
