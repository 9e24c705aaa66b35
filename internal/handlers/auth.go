package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/HammerMeetNail/butterfly/internal/models"
	"github.com/HammerMeetNail/butterfly/internal/services"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgEmailTaken         = "profile with this email address already exists."
)

type AuthHandler struct {
	userService  services.UserServiceInterface
	authService  services.AuthServiceInterface
	tokenService services.TokenServiceInterface
}

func NewAuthHandler(userService services.UserServiceInterface, authService services.AuthServiceInterface, tokenService services.TokenServiceInterface) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		authService:  authService,
		tokenService: tokenService,
	}
}

type RegisterRequest struct {
	Email string  `json:"email" validate:"required,email,max=255"`
	Name  *string `json:"name" validate:"omitempty,max=250"`
}

// LoginRequest carries no validation tags: a missing email is reported as
// invalid credentials like any other unknown identity.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SetPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// Register creates an identity from an email and optional name. Field
// errors are reported with status 200, which existing clients rely on.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeParseError(w, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if errs := validateRequest(req); errs != nil {
		writeFieldErrors(w, http.StatusOK, errs)
		return
	}

	user, err := h.userService.Create(r.Context(), models.CreateUserParams{
		Email: req.Email,
		Name:  req.Name,
	})
	if errors.Is(err, services.ErrEmailAlreadyExists) {
		writeFieldErrors(w, http.StatusOK, FieldErrors{"email": {msgEmailTaken}})
		return
	}
	if err != nil {
		writeInternalError(w, "Error creating user", err)
		return
	}

	// Login issues the token too, so a failure here is not fatal.
	if _, err := h.tokenService.Issue(r.Context(), user.ID); err != nil {
		logRequestError(r, "Error issuing token at registration", err)
	}

	writeJSON(w, http.StatusOK, user.Summary())
}

// Login exchanges an email and optional password for the user's token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeParseError(w, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeDetail(w, http.StatusBadRequest, msgInvalidCredentials)
		return
	}

	user, err := h.authService.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrInvalidCredentials) {
		writeDetail(w, http.StatusBadRequest, msgInvalidCredentials)
		return
	}
	if err != nil {
		writeInternalError(w, "Error authenticating user", err)
		return
	}

	token, err := h.tokenService.Issue(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, "Error issuing token", err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token.Key})
}

// SetPassword stores a credential for the authenticated user.
func (h *AuthHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeDetail(w, http.StatusUnauthorized, msgNotAuthorized)
		return
	}

	var req SetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeParseError(w, err)
		return
	}
	if errs := validateRequest(req); errs != nil {
		writeFieldErrors(w, http.StatusBadRequest, errs)
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		writeFieldErrors(w, http.StatusBadRequest, FieldErrors{"password": {"This password is too short. It must contain at least 8 characters."}})
		return
	case errors.Is(err, services.ErrPasswordTooLong):
		writeFieldErrors(w, http.StatusBadRequest, FieldErrors{"password": {"Ensure this password has no more than 72 bytes."}})
		return
	case err != nil:
		writeInternalError(w, "Error hashing password", err)
		return
	}

	if err := h.userService.SetPassword(r.Context(), user.ID, hash); err != nil {
		writeInternalError(w, "Error updating password", err)
		return
	}

	writeDetail(w, http.StatusOK, "Password updated.")
}
