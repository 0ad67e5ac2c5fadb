// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/api"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
	"github.com/your-org/storefront/internal/interfaces/http/routes"
	"github.com/your-org/storefront/internal/pkg/metrics"
	"github.com/your-org/storefront/internal/pkg/pdf"
	"github.com/your-org/storefront/internal/storefront"
)

// HealthChecker is implemented by storage backends that can be pinged
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Dependencies are the components the server routes to
type Dependencies struct {
	Registry *storefront.Registry
	Backend  *api.Backend
	Metrics  *metrics.Metrics
	PDF      *pdf.Service
	Storage  HealthChecker
	Log      logrus.FieldLogger
}

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	deps       Dependencies
	gin        *gin.Engine
	httpServer *http.Server
	limiter    *middleware.IPLimiter
	startedAt  time.Time
}

// NewServer creates a new HTTP server instance with its routes registered
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    cfg,
		deps:      deps,
		gin:       gin.New(),
		limiter:   middleware.NewIPLimiter(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst),
		startedAt: time.Now(),
	}
	if len(cfg.Security.TrustedProxies) > 0 {
		if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			deps.Log.WithError(err).Warn("Ignoring invalid TRUSTED_PROXIES")
		}
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.deps.Log.Infof("🚀 HTTP Server starting on port %s", s.config.Server.Port)
	s.deps.Log.Infof("🌐 API Base URL: http://localhost:%s/api/v1", s.config.Server.Port)
	s.deps.Log.Infof("🔗 Backend: %s", s.config.API.BaseURL)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.deps.Log.Info("🛑 Shutting down HTTP server...")

	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.deps.Log.Info("✅ HTTP server stopped gracefully")
	return nil
}

// RunLimiterJanitor forgets idle client IPs every interval until ctx is done
func (s *Server) RunLimiterJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.limiter.Prune(interval)
		}
	}
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(middleware.Recovery(s.deps.Log))
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.deps.Log, s.deps.Metrics))
	s.gin.Use(middleware.CORS(s.config.Security))
	s.gin.Use(middleware.SecurityHeaders())
	s.gin.Use(middleware.RateLimit(s.config.Security, s.limiter))
	s.gin.Use(middleware.RequestSizeLimit(s.config.Server.MaxBodyBytes))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)
	if s.deps.Metrics != nil {
		s.gin.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}

	apiV1 := s.gin.Group("/api/v1")
	apiV1.Use(middleware.Visitor(s.config.Server.VisitorTTL, s.config.Server.CookieSecure))
	apiV1.Use(middleware.Notifications())

	routes.SetupRoutes(apiV1, s.deps.Registry, s.deps.PDF, s.config)

	if s.config.IsDevelopment() {
		s.gin.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":     "Storefront gateway",
				"version":     s.config.App.Version,
				"environment": s.config.App.Environment,
				"health":      "/health",
				"endpoints": gin.H{
					"auth":     "/api/v1/auth",
					"products": "/api/v1/products",
					"cart":     "/api/v1/cart",
					"checkout": "/api/v1/checkout",
					"orders":   "/api/v1/orders",
					"returns":  "/api/v1/returns",
					"admin":    "/api/v1/admin",
				},
			})
		})
	}
}

// healthCheck reports whether the client state storage is reachable
func (s *Server) healthCheck(c *gin.Context) {
	if s.deps.Storage != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := s.deps.Storage.Health(ctx); err != nil {
			s.deps.Log.WithError(err).Warn("Storage health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "storage unreachable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck reports not ready while the backend circuit breaker is open
func (s *Server) readinessCheck(c *gin.Context) {
	breaker := "closed"
	if s.deps.Backend != nil {
		breaker = s.deps.Backend.BreakerState()
	}

	status := http.StatusOK
	state := "ready"
	if breaker == "open" {
		status = http.StatusServiceUnavailable
		state = "backend unavailable"
	}

	c.JSON(status, gin.H{
		"status":    state,
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
		"breaker":   breaker,
		"visitors":  s.deps.Registry.Len(),
	})
}
