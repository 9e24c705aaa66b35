package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) Health(ctx context.Context) error {
	return m.err
}

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		dbErr      error
		redisErr   error
		wantStatus int
		wantBody   string
	}{
		{name: "all healthy", wantStatus: http.StatusOK, wantBody: "healthy"},
		{name: "postgres down", dbErr: errors.New("connection refused"), wantStatus: http.StatusServiceUnavailable, wantBody: "unhealthy"},
		{name: "redis down", redisErr: errors.New("connection timeout"), wantStatus: http.StatusServiceUnavailable, wantBody: "unhealthy"},
		{name: "both down", dbErr: errors.New("db"), redisErr: errors.New("redis"), wantStatus: http.StatusServiceUnavailable, wantBody: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(&mockHealthChecker{err: tt.dbErr}, &mockHealthChecker{err: tt.redisErr})

			rr := httptest.NewRecorder()
			handler.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %q", ct)
			}

			var response HealthResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			if response.Status != tt.wantBody {
				t.Errorf("expected status %q, got %q", tt.wantBody, response.Status)
			}
			if response.Timestamp == "" {
				t.Error("expected timestamp to be set")
			}
			if tt.dbErr != nil && !strings.Contains(response.Checks["postgres"], tt.dbErr.Error()) {
				t.Errorf("expected postgres failure detail, got %q", response.Checks["postgres"])
			}
		})
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler(&mockHealthChecker{}, &mockHealthChecker{}).Ready(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "ready" {
		t.Errorf("expected 200 ready, got %d %q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	NewHealthHandler(&mockHealthChecker{}, &mockHealthChecker{err: errors.New("down")}).Ready(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rr.Code != http.StatusServiceUnavailable || rr.Body.String() != "not ready" {
		t.Errorf("expected 503 not ready, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestHealthHandler_Live(t *testing.T) {
	handler := NewHealthHandler(nil, nil)

	rr := httptest.NewRecorder()
	handler.Live(rr, httptest.NewRequest(http.MethodGet, "/live", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if rr.Body.String() != "alive" {
		t.Errorf("expected body 'alive', got %q", rr.Body.String())
	}
}
