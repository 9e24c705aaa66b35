package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/HammerMeetNail/butterfly/internal/handlers"
	"github.com/HammerMeetNail/butterfly/internal/logging"
	"github.com/HammerMeetNail/butterfly/internal/models"
	"github.com/HammerMeetNail/butterfly/internal/services"
)

const bearerScheme = "Bearer"

const (
	msgNoCredentials   = "Invalid token header. No credentials provided."
	msgTokenHasSpaces  = "Invalid token header. Token string should not contain spaces."
	msgInvalidToken    = "Invalid token."
	msgUserInactive    = "User inactive or deleted."
	msgNotProvided     = "Authentication credentials were not provided."
	msgInternalFailure = "Internal server error"
)

var (
	ErrNoCredentials  = errors.New(msgNoCredentials)
	ErrTokenHasSpaces = errors.New(msgTokenHasSpaces)
)

// ParseBearer extracts the key from an Authorization header value. It
// returns an empty key and no error when the header does not use the
// Bearer scheme at all, so other schemes are simply not authenticated.
func ParseBearer(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) == 0 || parts[0] != bearerScheme {
		return "", nil
	}
	switch len(parts) {
	case 1:
		return "", ErrNoCredentials
	case 2:
		return parts[1], nil
	default:
		return "", ErrTokenHasSpaces
	}
}

type TokenResolver interface {
	Resolve(ctx context.Context, key string) (*models.User, error)
}

type AuthMiddleware struct {
	tokens TokenResolver
}

func NewAuthMiddleware(tokens TokenResolver) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate resolves a bearer token and adds its user to the context.
// Requests without a bearer header pass through anonymously; a header
// that is present but invalid is rejected with 401.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := ParseBearer(r.Header.Get("Authorization"))
		if err != nil {
			writeUnauthorized(w, err.Error())
			return
		}
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.tokens.Resolve(r.Context(), key)
		switch {
		case errors.Is(err, services.ErrTokenNotFound):
			writeUnauthorized(w, msgInvalidToken)
			return
		case errors.Is(err, services.ErrUserInactive):
			writeUnauthorized(w, msgUserInactive)
			return
		case err != nil:
			logging.Error("Error resolving token", map[string]interface{}{
				"error": err.Error(),
				"path":  r.URL.Path,
			})
			writeDetail(w, http.StatusInternalServerError, msgInternalFailure)
			return
		}

		ctx := handlers.SetUserInContext(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests that Authenticate left anonymous.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handlers.GetUserFromContext(r.Context()) == nil {
			writeUnauthorized(w, msgNotProvided)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", bearerScheme)
	writeDetail(w, http.StatusUnauthorized, detail)
}
