package main

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/butterfly/internal/models"
	"github.com/HammerMeetNail/butterfly/internal/services"
)

// memoryStore is an in-memory stand-in for the user, auth and token services.
type memoryStore struct {
	mu     sync.Mutex
	users  map[string]*models.User
	tokens map[string]uuid.UUID
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[string]*models.User{}, tokens: map[string]uuid.UUID{}}
}

func (s *memoryStore) Create(ctx context.Context, p models.CreateUserParams) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := models.NormalizeEmail(p.Email)
	if _, ok := s.users[email]; ok {
		return nil, services.ErrEmailAlreadyExists
	}
	u := &models.User{ID: uuid.New(), Email: email, Name: p.Name, PasswordHash: p.PasswordHash, IsAdmin: p.IsAdmin, IsActive: true}
	s.users[email] = u
	return u, nil
}

func (s *memoryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, services.ErrUserNotFound
}

func (s *memoryStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[models.NormalizeEmail(email)]; ok {
		return u, nil
	}
	return nil, services.ErrUserNotFound
}

func (s *memoryStore) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	u.PasswordHash = hash
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", services.ErrPasswordTooShort
	}
	return "hashed:" + password, nil
}

func (s *memoryStore) VerifyPassword(hash, password string) bool {
	return hash == "hashed:"+password
}

func (s *memoryStore) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if password != "" && !s.VerifyPassword(u.PasswordHash, password) {
		return nil, services.ErrInvalidCredentials
	}
	return u, nil
}

func (s *memoryStore) Issue(ctx context.Context, userID uuid.UUID) (*models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, id := range s.tokens {
		if id == userID {
			return &models.Token{Key: key, UserID: id}, nil
		}
	}
	key := strings.ReplaceAll(uuid.NewString(), "-", "")
	s.tokens[key] = userID
	return &models.Token{Key: key, UserID: userID}, nil
}

func (s *memoryStore) Resolve(ctx context.Context, key string) (*models.User, error) {
	s.mu.Lock()
	id, ok := s.tokens[key]
	s.mu.Unlock()
	if !ok {
		return nil, services.ErrTokenNotFound
	}
	return s.GetByID(ctx, id)
}

type stubFriends struct{}

func (stubFriends) CheckThrottle(ctx context.Context, ownerID uuid.UUID) error {
	return nil
}

func (stubFriends) Create(ctx context.Context, p models.CreateFriendshipParams) (*models.Friendship, error) {
	return &models.Friendship{ID: uuid.New(), OwnerID: p.OwnerID, ProfileID: p.ProfileID, Status: models.FriendshipStatusSend}, nil
}

func (stubFriends) UpdateStatus(ctx context.Context, callerID, id uuid.UUID, status models.FriendshipStatus) (*models.Friendship, error) {
	return nil, services.ErrFriendshipNotFound
}

func (stubFriends) ListAccepted(ctx context.Context, id uuid.UUID) ([]models.Friendship, error) {
	return []models.Friendship{}, nil
}

func (stubFriends) ListOwnSentRequests(ctx context.Context, id uuid.UUID) ([]models.Friendship, error) {
	return []models.Friendship{}, nil
}

func (stubFriends) ListIncomingRequests(ctx context.Context, id uuid.UUID) ([]models.Friendship, error) {
	return []models.Friendship{}, nil
}

type stubDirectory struct{}

func (stubDirectory) Search(ctx context.Context, q models.DirectoryQuery) (*models.DirectoryPage, error) {
	return &models.DirectoryPage{Page: 1, PageSize: 10, Results: []models.UserSummary{}}, nil
}

type okChecker struct{}

func (okChecker) Health(ctx context.Context) error { return nil }
