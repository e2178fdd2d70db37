// Package server provides HTTP server management and lifecycle handling for the
// MCP transport. It includes server setup, middleware configuration, route
// management, and graceful shutdown capabilities with proper error handling
// and logging.
package server

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fdatools/openfda-mcp/config"
	"github.com/fdatools/openfda-mcp/interfaces"
	"github.com/fdatools/openfda-mcp/logging"
	"github.com/fdatools/openfda-mcp/metrics"
)

// Global server start time
var serverStartTime = time.Now()

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router chi.Router
	health interfaces.HealthChecker
	mcp    http.Handler
	config *config.Config
}

// NewServer creates a new server instance. mcpHandler carries the streamable
// MCP protocol and is mounted under /mcp.
func NewServer(cfg *config.Config, health interfaces.HealthChecker, mcpHandler http.Handler) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:     router,
			Addr:        cfg.Address + ":" + cfg.Port,
			ReadTimeout: 15 * time.Second,
			// Streamable MCP holds GET streams open for server
			// notifications, so writes get a much longer deadline.
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router: router,
		health: health,
		mcp:    mcpHandler,
		config: cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.DefaultLoggingService.Logger))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))

	// Browser-based MCP clients talk to /mcp cross-origin and must be able
	// to read the session header back from responses.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Mcp-Session-Id", "Last-Event-ID"},
		ExposedHeaders:   []string{"Mcp-Session-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Use(metrics.Metrics)
	s.router.Use(RateLimitHandler)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/metrics", promhttp.Handler().ServeHTTP)
	s.router.Mount("/mcp", s.mcp)
}

// handleHealth serves database readiness, freshness and record counts. The
// transport layer adds process-level fields on top of what the checker knows.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, details, httpStatus := s.health.HealthCheck(r.Context())

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	details["status"] = status
	details["uptime"] = formatUptimeHuman(time.Since(serverStartTime))
	details["memory_usage_mb"] = int(m.Alloc / 1024 / 1024)
	details["goroutines"] = runtime.NumGoroutine()

	respondWithJSON(w, httpStatus, details)
}

// Start starts the server
func (s *Server) Start() error {
	// Start profiling server if in development mode
	if s.config.Env == "dev" {
		s.startProfilingServer()
	}

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	// Wait a bit for any ongoing requests to complete
	logging.Info("Waiting for ongoing requests to complete...")
	time.Sleep(2 * time.Second)

	logging.Info("Server shutdown complete")
	return nil
}

// Router exposes the underlying chi router so tests can drive requests
// through the full middleware stack without a listening socket.
func (s *Server) Router() chi.Router {
	return s.router
}

// startProfilingServer starts the pprof profiling server in development mode
func (s *Server) startProfilingServer() {
	go func() {
		fmt.Println("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			fmt.Println("Profiling server failed: ", err)
		}
	}()
}
