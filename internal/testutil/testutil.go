// Package testutil provides HTTP helpers for exercising the API in tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

// NewTestRequest creates a JSON request for testing.
func NewTestRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewTestRequestWithJSON marshals data as the request body.
func NewTestRequestWithJSON(t *testing.T, method, path string, data interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return NewTestRequest(method, path, bytes.NewReader(body))
}

// WithBearer sets the Authorization header the API expects.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// Serve runs req through h and returns the recorded response.
func Serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// AssertStatusCode checks if the response has the expected status code.
func AssertStatusCode(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// AssertDetail checks the status and the {"detail": ...} body of an error.
func AssertDetail(t *testing.T, rr *httptest.ResponseRecorder, status int, detail string) {
	t.Helper()
	AssertStatusCode(t, rr, status)
	if got := ParseJSONResponse(t, rr.Body.Bytes())["detail"]; got != detail {
		t.Errorf("expected detail %q, got %v", detail, got)
	}
}

// ParseJSONResponse parses a JSON object body into a map.
func ParseJSONResponse(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to parse JSON response %q: %v", body, err)
	}
	return result
}

// RandomEmail generates a unique address for testing.
func RandomEmail() string {
	return uuid.New().String()[:8] + "@test.com"
}
