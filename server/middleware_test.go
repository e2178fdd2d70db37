package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetTokenCost(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		query        string
		expectedCost int64
	}{
		{"Health endpoint", "/health", "", 5},
		{"Health with params", "/health", "test=value", 5},
		{"Metrics endpoint", "/metrics", "", 5},

		// MCP requests may hit SQLite or the OpenFDA API
		{"MCP root", "/mcp", "", 20},
		{"MCP subpath", "/mcp/session", "", 20},
		{"MCP with session query", "/mcp", "sessionId=abc", 20},

		// Default case
		{"Unknown endpoint", "/unknown", "", 20},
		{"Root path", "/", "", 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path+"?"+tt.query, nil)
			cost := getTokenCost(req)

			if cost != tt.expectedCost {
				t.Errorf("Expected cost %d for path %s with query %s, got %d",
					tt.expectedCost, tt.path, tt.query, cost)
			}
		})
	}
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		expected   string
	}{
		{"IPv4 with port", "192.168.1.1:12345", "192.168.1.1"},
		{"IPv6 with port", "[::1]:12345", "::1"},
		{"No port", "192.168.1.1", "192.168.1.1"},
		{"Forwarded IP without port", "203.0.113.1", "203.0.113.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clientKey(tt.remoteAddr); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestRateLimiterGetBucket(t *testing.T) {
	rl := NewRateLimiter()

	first := rl.getBucket("203.0.113.10")
	second := rl.getBucket("203.0.113.10")
	other := rl.getBucket("203.0.113.11")

	if first != second {
		t.Error("Same client should get the same bucket")
	}
	if first == other {
		t.Error("Different clients should get different buckets")
	}
}

func TestRateLimitHandlerAllows(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	req.RemoteAddr = "203.0.113.20:40000"

	rr := httptest.NewRecorder()
	handler := RateLimitHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	if rr.Header().Get("X-RateLimit-Limit") != "1000" {
		t.Errorf("Expected X-RateLimit-Limit 1000, got %s", rr.Header().Get("X-RateLimit-Limit"))
	}
	if rr.Header().Get("X-RateLimit-Rate") != "3" {
		t.Errorf("Expected X-RateLimit-Rate 3, got %s", rr.Header().Get("X-RateLimit-Rate"))
	}
	if rr.Header().Get("X-RateLimit-Remaining") == "" {
		t.Error("Expected X-RateLimit-Remaining header to be set")
	}
}

func TestRateLimitHandlerBlocks(t *testing.T) {
	handler := RateLimitHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Capacity 1000, MCP cost 20, so 50 requests drain the bucket
	var blocked bool
	for i := 0; i < 52; i++ {
		req := httptest.NewRequest("POST", "/mcp", nil)
		req.RemoteAddr = "203.0.113.30:40000"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code == http.StatusTooManyRequests {
			blocked = true
			if rr.Header().Get("Retry-After") != "60" {
				t.Errorf("Expected Retry-After 60, got %s", rr.Header().Get("Retry-After"))
			}
			if rr.Header().Get("X-RateLimit-Remaining") != "0" {
				t.Errorf("Expected X-RateLimit-Remaining 0, got %s", rr.Header().Get("X-RateLimit-Remaining"))
			}
			break
		}
	}

	if !blocked {
		t.Error("Expected rate limiter to block after bucket exhaustion")
	}
}

func TestRateLimitHandlerSharesBucketAcrossPorts(t *testing.T) {
	handler := RateLimitHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Drain the bucket from one source port
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest("POST", "/mcp", nil)
		req.RemoteAddr = "203.0.113.40:40000"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
	}

	// A reconnect from another port must hit the same bucket
	req := httptest.NewRequest("POST", "/mcp", nil)
	req.RemoteAddr = "203.0.113.40:40001"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 for drained client on a new port, got %d", rr.Code)
	}
}

func TestRespondWithJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	respondWithJSON(rr, http.StatusTeapot, map[string]string{"error": "test message"})

	if rr.Code != http.StatusTeapot {
		t.Errorf("Expected status 418, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if body["error"] != "test message" {
		t.Errorf("Expected error field in response, got %v", body)
	}
}

func TestRespondWithJSONNilPayload(t *testing.T) {
	rr := httptest.NewRecorder()
	respondWithJSON(rr, http.StatusNoContent, nil)

	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("Expected empty body for nil payload, got %q", rr.Body.String())
	}
}
