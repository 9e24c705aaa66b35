package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/HammerMeetNail/butterfly/internal/models"
)

func newJSONRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(SetUserInContext(req.Context(), user))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Email: "alice@example.com", IsActive: true}
}

func assertDetail(t *testing.T, rr *httptest.ResponseRecorder, status int, detail string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d (%s)", status, rr.Code, rr.Body.String())
	}
	if ct := rr.Result().Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected content type application/json, got %q", ct)
	}
	var response DetailResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Detail != detail {
		t.Fatalf("expected detail %q, got %q", detail, response.Detail)
	}
}

func assertFieldError(t *testing.T, rr *httptest.ResponseRecorder, status int, field, msg string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d (%s)", status, rr.Code, rr.Body.String())
	}
	var errs FieldErrors
	if err := json.Unmarshal(rr.Body.Bytes(), &errs); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	msgs := errs[field]
	if len(msgs) == 0 {
		t.Fatalf("expected errors for %q, got %v", field, errs)
	}
	if msg != "" && msgs[0] != msg {
		t.Fatalf("expected %q for %q, got %q", msg, field, msgs[0])
	}
}
