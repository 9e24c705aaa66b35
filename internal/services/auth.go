package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/HammerMeetNail/butterfly/internal/models"
)

const (
	bcryptCost        = 12
	minPasswordLength = 8
	maxPasswordBytes  = 72
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
)

// CredentialPolicy decides how a supplied password is treated when the
// identity has no stored credential.
type CredentialPolicy struct {
	// PasswordRequired makes such a login fail. When false the password
	// is only checked if a credential exists.
	PasswordRequired bool
}

func DefaultCredentialPolicy() CredentialPolicy {
	return CredentialPolicy{PasswordRequired: true}
}

type userByEmailGetter interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthService struct {
	users  userByEmailGetter
	policy CredentialPolicy
}

func NewAuthService(users userByEmailGetter, policy CredentialPolicy) *AuthService {
	return &AuthService{users: users, policy: policy}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) VerifyPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Authenticate resolves the identity for a login attempt. An empty password
// means none was supplied and the identity is returned as is.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if password == "" {
		return user, nil
	}

	if !user.HasPassword() {
		if s.policy.PasswordRequired {
			return nil, ErrInvalidCredentials
		}
		return user, nil
	}

	if !s.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
