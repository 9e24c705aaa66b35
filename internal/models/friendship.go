package models

import (
	"time"

	"github.com/google/uuid"
)

type FriendshipStatus string

const (
	FriendshipStatusSend   FriendshipStatus = "SEND"
	FriendshipStatusAccept FriendshipStatus = "ACCEPT"
	FriendshipStatusReject FriendshipStatus = "REJECT"
)

func (s FriendshipStatus) IsValid() bool {
	switch s {
	case FriendshipStatusSend, FriendshipStatusAccept, FriendshipStatusReject:
		return true
	}
	return false
}

// IsTerminal reports whether no further change of status is allowed.
func (s FriendshipStatus) IsTerminal() bool {
	return s == FriendshipStatusAccept || s == FriendshipStatusReject
}

// CanTransitionTo allows any move out of SEND. A terminal status may only
// be rewritten with itself.
func (s FriendshipStatus) CanTransitionTo(next FriendshipStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if !s.IsTerminal() {
		return true
	}
	return s == next
}

type Friendship struct {
	ID        uuid.UUID        `json:"id"`
	OwnerID   uuid.UUID        `json:"owner"`
	ProfileID uuid.UUID        `json:"profile"`
	Status    FriendshipStatus `json:"status"`
	CreatedAt time.Time        `json:"-"`
	UpdatedAt time.Time        `json:"-"`
}

type CreateFriendshipParams struct {
	OwnerID   uuid.UUID
	ProfileID uuid.UUID
	Status    FriendshipStatus
}
