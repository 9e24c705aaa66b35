package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/HammerMeetNail/butterfly/internal/logging"
)

// Recover turns a handler panic into a logged 500 response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logging.Error("Panic serving request", map[string]interface{}{
				"panic":  rec,
				"method": r.Method,
				"path":   r.URL.Path,
				"stack":  string(debug.Stack()),
			})
			writeDetail(w, http.StatusInternalServerError, msgInternalFailure)
		}()
		next.ServeHTTP(w, r)
	})
}
