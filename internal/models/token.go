package models

import (
	"time"

	"github.com/google/uuid"
)

// Token is the opaque bearer credential. Each user has exactly one.
type Token struct {
	Key       string    `json:"token"`
	UserID    uuid.UUID `json:"-"`
	CreatedAt time.Time `json:"-"`
}
