package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/butterfly/internal/models"
)

// UserServiceInterface defines the contract for identity storage.
type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetPassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// AuthServiceInterface defines the contract for credential checks.
type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// TokenServiceInterface defines the contract for bearer tokens.
type TokenServiceInterface interface {
	Issue(ctx context.Context, userID uuid.UUID) (*models.Token, error)
	Resolve(ctx context.Context, key string) (*models.User, error)
}

// FriendServiceInterface defines the contract for friend relationships.
type FriendServiceInterface interface {
	CheckThrottle(ctx context.Context, ownerID uuid.UUID) error
	Create(ctx context.Context, params models.CreateFriendshipParams) (*models.Friendship, error)
	UpdateStatus(ctx context.Context, callerID, friendshipID uuid.UUID, status models.FriendshipStatus) (*models.Friendship, error)
	ListAccepted(ctx context.Context, ownerID uuid.UUID) ([]models.Friendship, error)
	ListOwnSentRequests(ctx context.Context, ownerID uuid.UUID) ([]models.Friendship, error)
	ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error)
}

// DirectoryServiceInterface defines the contract for the user directory.
type DirectoryServiceInterface interface {
	Search(ctx context.Context, q models.DirectoryQuery) (*models.DirectoryPage, error)
}

var (
	_ UserServiceInterface      = (*UserService)(nil)
	_ AuthServiceInterface      = (*AuthService)(nil)
	_ TokenServiceInterface     = (*TokenService)(nil)
	_ FriendServiceInterface    = (*FriendService)(nil)
	_ DirectoryServiceInterface = (*DirectoryService)(nil)
)
