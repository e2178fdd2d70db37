package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/fdatools/openfda-mcp/config"
	"github.com/fdatools/openfda-mcp/logging"
)

// fakeHealthChecker implements interfaces.HealthChecker for testing
type fakeHealthChecker struct {
	status     string
	details    map[string]any
	httpStatus int
}

func (f *fakeHealthChecker) HealthCheck(ctx context.Context) (string, map[string]any, int) {
	details := make(map[string]any, len(f.details))
	for k, v := range f.details {
		details[k] = v
	}
	return f.status, details, f.httpStatus
}

// fakeMCPHandler records requests routed to the /mcp mount
type fakeMCPHandler struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeMCPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.paths = append(f.paths, r.URL.Path)
	f.mu.Unlock()
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"jsonrpc":"2.0"}`))
}

func testConfig() *config.Config {
	return &config.Config{
		Transport:      "http",
		Port:           "8080",
		Address:        "localhost",
		Env:            "test",
		LogLevel:       "error",
		MaxRequestBody: 1048576,
		MaxHeaderSize:  1048576,
	}
}

func newTestServer(t *testing.T, checker *fakeHealthChecker) (*Server, *fakeMCPHandler) {
	t.Helper()

	logging.InitLogger(t.TempDir(), slog.LevelError, 1, 1024*1024)

	if checker == nil {
		checker = &fakeHealthChecker{
			status:     "healthy",
			details:    map[string]any{"products": 100},
			httpStatus: http.StatusOK,
		}
	}

	mcp := &fakeMCPHandler{}
	return NewServer(testConfig(), checker, mcp), mcp
}

func TestNewServer(t *testing.T) {
	server, _ := newTestServer(t, nil)

	if server == nil {
		t.Fatal("Server should not be nil")
	}

	if server.server.Addr != "localhost:8080" {
		t.Errorf("Expected server address localhost:8080, got %s", server.server.Addr)
	}

	if server.router == nil {
		t.Error("Router should not be nil")
	}

	if server.health == nil {
		t.Error("Health checker should be set")
	}

	if server.mcp == nil {
		t.Error("MCP handler should be set")
	}
}

func TestServerConfiguration(t *testing.T) {
	server, _ := newTestServer(t, nil)

	if server.server.ReadTimeout != 15*time.Second {
		t.Errorf("Read timeout should be 15 seconds, got %v", server.server.ReadTimeout)
	}

	// MCP GET streams stay open for notifications, writes need headroom
	if server.server.WriteTimeout != 120*time.Second {
		t.Errorf("Write timeout should be 120 seconds, got %v", server.server.WriteTimeout)
	}

	if server.server.IdleTimeout != 60*time.Second {
		t.Errorf("Idle timeout should be 60 seconds, got %v", server.server.IdleTimeout)
	}
}

func TestHealthRoute(t *testing.T) {
	checker := &fakeHealthChecker{
		status:     "healthy",
		details:    map[string]any{"products": 45000},
		httpStatus: http.StatusOK,
	}
	server, _ := newTestServer(t, checker)

	req := httptest.NewRequest("GET", "/health", nil)
	req.RemoteAddr = "127.0.0.1:1234"
	rr := httptest.NewRecorder()

	server.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Health response is not valid JSON: %v", err)
	}

	if body["status"] != "healthy" {
		t.Errorf("Expected status healthy, got %v", body["status"])
	}
	if body["uptime"] == nil {
		t.Error("Health response should include uptime")
	}
	if body["memory_usage_mb"] == nil {
		t.Error("Health response should include memory usage")
	}
	if body["products"] != float64(45000) {
		t.Errorf("Expected checker details in response, got %v", body["products"])
	}
}

func TestHealthRouteReportsCheckerStatus(t *testing.T) {
	checker := &fakeHealthChecker{
		status:     "unhealthy",
		details:    map[string]any{"error": "database handle lost"},
		httpStatus: http.StatusServiceUnavailable,
	}
	server, _ := newTestServer(t, checker)

	req := httptest.NewRequest("GET", "/health", nil)
	req.RemoteAddr = "127.0.0.1:1234"
	rr := httptest.NewRecorder()

	server.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 from checker, got %d", rr.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	server, _ := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/metrics", nil)
	req.RemoteAddr = "127.0.0.1:1234"
	rr := httptest.NewRecorder()

	server.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	if rr.Body.Len() == 0 {
		t.Error("Metrics response should not be empty")
	}
}

func TestMCPMount(t *testing.T) {
	server, mcp := newTestServer(t, nil)

	for _, path := range []string{"/mcp", "/mcp/session"} {
		req := httptest.NewRequest("POST", path, nil)
		req.RemoteAddr = "127.0.0.1:1234"
		rr := httptest.NewRecorder()

		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("Expected status 200 for %s, got %d", path, rr.Code)
		}
	}

	mcp.mu.Lock()
	defer mcp.mu.Unlock()
	if len(mcp.paths) != 2 {
		t.Errorf("Expected 2 requests routed to the MCP handler, got %d", len(mcp.paths))
	}
}

func TestMiddlewareChain(t *testing.T) {
	server, _ := newTestServer(t, nil)

	server.router.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		if requestID == "" {
			t.Error("RequestID should be available in request context")
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("test"))
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "127.0.0.1:1234"
	rr := httptest.NewRecorder()

	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

func TestServerLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("lifecycle test sleeps through the shutdown drain")
	}

	logging.InitLogger(t.TempDir(), slog.LevelError, 1, 1024*1024)

	cfg := testConfig()
	cfg.Port = "0" // Ephemeral port
	checker := &fakeHealthChecker{status: "healthy", details: map[string]any{}, httpStatus: http.StatusOK}

	server := NewServer(cfg, checker, &fakeMCPHandler{})

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	// Give the listener time to bind
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Server shutdown should not error: %v", err)
	}

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("Expected ErrServerClosed after shutdown, got: %v", err)
		}
	case <-time.After(1 * time.Second):
		t.Error("Server should have returned after shutdown")
	}
}

func TestFormatUptimeHuman(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{
			name:     "zero duration",
			duration: 0,
			expected: "0s",
		},
		{
			name:     "seconds only",
			duration: 45 * time.Second,
			expected: "45s",
		},
		{
			name:     "minutes and seconds",
			duration: 2*time.Minute + 30*time.Second,
			expected: "2m 30s",
		},
		{
			name:     "hours, minutes, and seconds",
			duration: 1*time.Hour + 2*time.Minute + 30*time.Second,
			expected: "1h 2m 30s",
		},
		{
			name:     "days, hours, minutes, and seconds",
			duration: 2*24*time.Hour + 1*time.Hour + 2*time.Minute + 30*time.Second,
			expected: "2d 1h 2m 30s",
		},
		{
			name:     "exactly one day",
			duration: 24 * time.Hour,
			expected: "1d 0h 0m 0s",
		},
		{
			name:     "exactly one hour",
			duration: time.Hour,
			expected: "1h 0m 0s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatUptimeHuman(tt.duration)
			if result != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, result)
			}
		})
	}
}
