package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         *string   `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"-"`
	IsAdmin      bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPassword reports whether a credential is stored for the user.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Summary is the public projection used by registration and the directory.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email}
}

type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type CreateUserParams struct {
	Email        string
	Name         *string
	PasswordHash string
	IsAdmin      bool
}

// NormalizeEmail trims surrounding whitespace and lower-cases the domain
// part. The local part is kept as given.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}
