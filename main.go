package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fdatools/openfda-mcp/config"
	"github.com/fdatools/openfda-mcp/drugquery"
	"github.com/fdatools/openfda-mcp/health"
	"github.com/fdatools/openfda-mcp/logging"
	"github.com/fdatools/openfda-mcp/mcpserver"
	"github.com/fdatools/openfda-mcp/openfda"
	"github.com/fdatools/openfda-mcp/scheduler"
	"github.com/fdatools/openfda-mcp/server"
)

const version = "1.0.0"

func init() {
	// Read the env variables from the working directory
	err := godotenv.Load()
	if err != nil {
		// If failed, try loading from the executable directory. MCP hosts
		// commonly launch the binary with an arbitrary working directory.
		ex, err := os.Executable()
		if err != nil {
			slog.Error("Failed to get executable path", "error", err)
			os.Exit(1)
		}

		exPath := filepath.Dir(ex)

		if err := os.Chdir(exPath); err != nil {
			slog.Error("Failed to change directory", "error", err)
			os.Exit(1)
		}

		// A missing .env is fine, configuration falls back to defaults
		_ = godotenv.Load()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	// Initialize slog for structured logging to console and file. Console
	// output goes to stderr so the stdio transport keeps stdout clean.
	logging.InitLogger(cfg.LogDir, logging.ParseLevel(cfg.LogLevel), cfg.LogRetentionWeeks, cfg.MaxLogFileSize)

	query := drugquery.NewService(drugquery.Options{
		StorePath:        filepath.Join(cfg.DataDir, "drugs.db"),
		MaxStalenessDays: cfg.MaxStalenessDays,
	}, nil)
	defer func() {
		if err := query.Close(); err != nil {
			logging.Warn("Failed to close drug database", "error", err)
		}
	}()

	fda, err := openfda.NewClient(cfg.OpenFDAAPIKey)
	if err != nil {
		logging.Error("Failed to create OpenFDA client", "error", err)
		os.Exit(1)
	}

	mcp := mcpserver.New(version, query, fda)

	sched := scheduler.NewScheduler(query, cfg.MaxStalenessDays, cfg.PrefetchOnStart)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	switch cfg.Transport {
	case "stdio":
		runStdio(mcp)
	default:
		runHTTP(cfg, query, mcp)
	}
}

// runStdio serves the MCP protocol over stdin/stdout until the host closes
// the stream.
func runStdio(mcp *mcpserver.Server) {
	logging.Info("Serving MCP over stdio", "version", version)

	if err := mcp.ServeStdio(); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error("Stdio server failed", "error", err)
		os.Exit(1)
	}

	logging.Info("Stdio session ended")
}

// runHTTP serves the streamable MCP protocol over HTTP together with the
// health and metrics endpoints, shutting down gracefully on SIGINT/SIGTERM.
func runHTTP(cfg *config.Config, query *drugquery.Service, mcp *mcpserver.Server) {
	checker := health.NewHealthChecker(query, cfg.MaxStalenessDays)
	srv := server.NewServer(cfg, checker, mcp.HTTPHandler())

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	// Create a context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
	}
}
