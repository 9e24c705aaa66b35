package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/HammerMeetNail/butterfly/internal/models"
	"github.com/HammerMeetNail/butterfly/internal/services"
)

const msgDuplicatePair = "The fields owner, profile must make a unique set."

type FriendHandler struct {
	friendService services.FriendServiceInterface
}

func NewFriendHandler(friendService services.FriendServiceInterface) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

// CreateStatusRequest ignores any owner in the payload; the caller is
// always the owner.
type CreateStatusRequest struct {
	Profile string `json:"profile" validate:"required"`
	Status  string `json:"status" validate:"omitempty,oneof=SEND ACCEPT REJECT"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=SEND ACCEPT REJECT"`
}

func invalidPKMessage(value string) string {
	return fmt.Sprintf("Invalid pk %q - object does not exist.", value)
}

// CreateStatus sends a friend request from the caller to a profile.
func (h *FriendHandler) CreateStatus(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeDetail(w, http.StatusUnauthorized, msgNotAuthorized)
		return
	}

	// Throttling applies before the body is looked at.
	if err := h.friendService.CheckThrottle(r.Context(), user.ID); err != nil {
		h.writeCreateError(w, r, CreateStatusRequest{}, err)
		return
	}

	var req CreateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeParseError(w, err)
		return
	}
	if errs := validateRequest(req); errs != nil {
		writeFieldErrors(w, http.StatusBadRequest, errs)
		return
	}

	profileID, err := uuid.Parse(req.Profile)
	if err != nil {
		writeFieldErrors(w, http.StatusBadRequest, FieldErrors{"profile": {invalidPKMessage(req.Profile)}})
		return
	}

	friendship, err := h.friendService.Create(r.Context(), models.CreateFriendshipParams{
		OwnerID:   user.ID,
		ProfileID: profileID,
		Status:    models.FriendshipStatus(req.Status),
	})
	if err != nil {
		h.writeCreateError(w, r, req, err)
		return
	}

	writeJSON(w, http.StatusCreated, friendship)
}

func (h *FriendHandler) writeCreateError(w http.ResponseWriter, r *http.Request, req CreateStatusRequest, err error) {
	var throttled *services.ThrottledError
	switch {
	case errors.As(err, &throttled):
		secs := throttled.WaitSeconds()
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		writeDetail(w, http.StatusTooManyRequests, fmt.Sprintf("Request was throttled. Expected available in %d seconds.", secs))
	case errors.Is(err, services.ErrProfileNotFound):
		writeFieldErrors(w, http.StatusBadRequest, FieldErrors{"profile": {invalidPKMessage(req.Profile)}})
	case errors.Is(err, services.ErrCannotFriendSelf):
		writeFieldErrors(w, http.StatusBadRequest, FieldErrors{"profile": {"You cannot send a friend request to yourself."}})
	case errors.Is(err, services.ErrFriendshipExists):
		writeFieldErrors(w, http.StatusBadRequest, FieldErrors{"non_field_errors": {msgDuplicatePair}})
	case errors.Is(err, services.ErrInvalidStatus):
		writeFieldErrors(w, http.StatusBadRequest, FieldErrors{"status": {fmt.Sprintf("%q is not a valid choice.", req.Status)}})
	default:
		logRequestError(r, "Error creating friend request", err)
		writeDetail(w, http.StatusInternalServerError, msgInternalError)
	}
}

// UpdateStatus moves a relationship the caller takes part in to a new status.
func (h *FriendHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeDetail(w, http.StatusUnauthorized, msgNotAuthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusNotFound, msgNotFound)
		return
	}

	var req UpdateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeParseError(w, err)
		return
	}
	if errs := validateRequest(req); errs != nil {
		writeFieldErrors(w, http.StatusBadRequest, errs)
		return
	}

	friendship, err := h.friendService.UpdateStatus(r.Context(), user.ID, id, models.FriendshipStatus(req.Status))
	switch {
	case errors.Is(err, services.ErrFriendshipNotFound):
		writeDetail(w, http.StatusNotFound, msgNotFound)
		return
	case errors.Is(err, services.ErrNotFriendshipParticipant):
		writeDetail(w, http.StatusForbidden, msgForbidden)
		return
	case errors.Is(err, services.ErrInvalidTransition):
		writeFieldErrors(w, http.StatusBadRequest, FieldErrors{"status": {"This friend request has already been answered."}})
		return
	case errors.Is(err, services.ErrInvalidStatus):
		writeFieldErrors(w, http.StatusBadRequest, FieldErrors{"status": {fmt.Sprintf("%q is not a valid choice.", req.Status)}})
		return
	case err != nil:
		logRequestError(r, "Error updating friend request", err)
		writeDetail(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusCreated, friendship)
}

// Friends lists the caller's accepted relationships.
func (h *FriendHandler) Friends(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.friendService.ListAccepted)
}

// Received lists the pending requests the caller has sent.
func (h *FriendHandler) Received(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.friendService.ListOwnSentRequests)
}

// Incoming lists pending requests that target the caller.
func (h *FriendHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.friendService.ListIncomingRequests)
}

func (h *FriendHandler) list(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, id uuid.UUID) ([]models.Friendship, error)) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeDetail(w, http.StatusUnauthorized, msgNotAuthorized)
		return
	}

	friendships, err := fetch(r.Context(), user.ID)
	if err != nil {
		logRequestError(r, "Error listing friendships", err)
		writeDetail(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	writeJSON(w, http.StatusOK, friendships)
}
