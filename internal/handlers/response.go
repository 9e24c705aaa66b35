package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/HammerMeetNail/butterfly/internal/logging"
)

const maxBodyBytes = 1 << 20

const (
	msgInternalError = "Internal server error"
	msgNotFound      = "Not found."
	msgForbidden     = "You do not have permission to perform this action."
	msgNotAuthorized = "Authentication credentials were not provided."
)

type DetailResponse struct {
	Detail string `json:"detail"`
}

// FieldErrors maps a request field, or "non_field_errors", to its messages.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, DetailResponse{Detail: detail})
}

func writeFieldErrors(w http.ResponseWriter, status int, errs FieldErrors) {
	writeJSON(w, status, errs)
}

func writeInternalError(w http.ResponseWriter, msg string, err error) {
	logging.Error(msg, map[string]interface{}{"error": err.Error()})
	writeDetail(w, http.StatusInternalServerError, msgInternalError)
}

// decodeJSON reads a JSON object from the body. An empty body decodes to
// the zero value so missing fields surface as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("JSON parse error - %w", err)
	}
	return nil
}

func writeParseError(w http.ResponseWriter, err error) {
	writeDetail(w, http.StatusBadRequest, err.Error())
}

func logRequestError(r *http.Request, msg string, err error) {
	fields := map[string]interface{}{
		"error":  err.Error(),
		"method": r.Method,
		"path":   r.URL.Path,
	}
	if user := GetUserFromContext(r.Context()); user != nil {
		fields["user_id"] = user.ID.String()
	}
	logging.Error(msg, fields)
}
