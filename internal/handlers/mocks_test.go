package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/butterfly/internal/models"
	"github.com/HammerMeetNail/butterfly/internal/services"
)

type mockUserService struct {
	CreateFunc      func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc     func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFunc  func(ctx context.Context, email string) (*models.User, error)
	SetPasswordFunc func(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &models.User{ID: uuid.New(), Email: params.Email, Name: params.Name, IsActive: true}, nil
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, services.ErrUserNotFound
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, services.ErrUserNotFound
}

func (m *mockUserService) SetPassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	if m.SetPasswordFunc != nil {
		return m.SetPasswordFunc(ctx, userID, passwordHash)
	}
	return nil
}

type mockAuthService struct {
	HashPasswordFunc   func(password string) (string, error)
	VerifyPasswordFunc func(hash, password string) bool
	AuthenticateFunc   func(ctx context.Context, email, password string) (*models.User, error)
}

func (m *mockAuthService) HashPassword(password string) (string, error) {
	if m.HashPasswordFunc != nil {
		return m.HashPasswordFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *mockAuthService) VerifyPassword(hash, password string) bool {
	if m.VerifyPasswordFunc != nil {
		return m.VerifyPasswordFunc(hash, password)
	}
	return hash == "hashed:"+password
}

func (m *mockAuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	return nil, services.ErrUserNotFound
}

type mockTokenService struct {
	IssueFunc   func(ctx context.Context, userID uuid.UUID) (*models.Token, error)
	ResolveFunc func(ctx context.Context, key string) (*models.User, error)
}

func (m *mockTokenService) Issue(ctx context.Context, userID uuid.UUID) (*models.Token, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, userID)
	}
	return &models.Token{Key: "0123456789abcdef0123456789abcdef01234567", UserID: userID}, nil
}

func (m *mockTokenService) Resolve(ctx context.Context, key string) (*models.User, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, key)
	}
	return nil, services.ErrTokenNotFound
}

type mockFriendService struct {
	CheckThrottleFunc        func(ctx context.Context, ownerID uuid.UUID) error
	CreateFunc               func(ctx context.Context, params models.CreateFriendshipParams) (*models.Friendship, error)
	UpdateStatusFunc         func(ctx context.Context, callerID, friendshipID uuid.UUID, status models.FriendshipStatus) (*models.Friendship, error)
	ListAcceptedFunc         func(ctx context.Context, ownerID uuid.UUID) ([]models.Friendship, error)
	ListOwnSentRequestsFunc  func(ctx context.Context, ownerID uuid.UUID) ([]models.Friendship, error)
	ListIncomingRequestsFunc func(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error)
}

func (m *mockFriendService) CheckThrottle(ctx context.Context, ownerID uuid.UUID) error {
	if m.CheckThrottleFunc != nil {
		return m.CheckThrottleFunc(ctx, ownerID)
	}
	return nil
}

func (m *mockFriendService) Create(ctx context.Context, params models.CreateFriendshipParams) (*models.Friendship, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	status := params.Status
	if status == "" {
		status = models.FriendshipStatusSend
	}
	return &models.Friendship{ID: uuid.New(), OwnerID: params.OwnerID, ProfileID: params.ProfileID, Status: status}, nil
}

func (m *mockFriendService) UpdateStatus(ctx context.Context, callerID, friendshipID uuid.UUID, status models.FriendshipStatus) (*models.Friendship, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, callerID, friendshipID, status)
	}
	return nil, services.ErrFriendshipNotFound
}

func (m *mockFriendService) ListAccepted(ctx context.Context, ownerID uuid.UUID) ([]models.Friendship, error) {
	if m.ListAcceptedFunc != nil {
		return m.ListAcceptedFunc(ctx, ownerID)
	}
	return []models.Friendship{}, nil
}

func (m *mockFriendService) ListOwnSentRequests(ctx context.Context, ownerID uuid.UUID) ([]models.Friendship, error) {
	if m.ListOwnSentRequestsFunc != nil {
		return m.ListOwnSentRequestsFunc(ctx, ownerID)
	}
	return []models.Friendship{}, nil
}

func (m *mockFriendService) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error) {
	if m.ListIncomingRequestsFunc != nil {
		return m.ListIncomingRequestsFunc(ctx, userID)
	}
	return []models.Friendship{}, nil
}

type mockDirectoryService struct {
	SearchFunc func(ctx context.Context, q models.DirectoryQuery) (*models.DirectoryPage, error)
}

func (m *mockDirectoryService) Search(ctx context.Context, q models.DirectoryQuery) (*models.DirectoryPage, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, q)
	}
	return &models.DirectoryPage{Page: 1, PageSize: 10, Results: []models.UserSummary{}}, nil
}

var (
	_ services.UserServiceInterface      = (*mockUserService)(nil)
	_ services.AuthServiceInterface      = (*mockAuthService)(nil)
	_ services.TokenServiceInterface     = (*mockTokenService)(nil)
	_ services.FriendServiceInterface    = (*mockFriendService)(nil)
	_ services.DirectoryServiceInterface = (*mockDirectoryService)(nil)
)
