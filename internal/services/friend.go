package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/butterfly/internal/models"
)

var (
	ErrFriendshipNotFound       = errors.New("friendship not found")
	ErrFriendshipExists         = errors.New("friendship already exists")
	ErrCannotFriendSelf         = errors.New("cannot send friend request to yourself")
	ErrProfileNotFound          = errors.New("profile does not exist")
	ErrInvalidStatus            = errors.New("invalid friendship status")
	ErrInvalidTransition        = errors.New("friendship status cannot change")
	ErrNotFriendshipParticipant = errors.New("only the owner or target can update a friendship")
)

const friendshipColumns = `id, owner_id, profile_id, status, created_at, updated_at`

type FriendService struct {
	db       DB
	throttle *RequestThrottle
	now      func() time.Time
}

func NewFriendService(db DB, throttle *RequestThrottle) *FriendService {
	return &FriendService{db: db, throttle: throttle, now: time.Now}
}

func scanFriendship(row Row) (*models.Friendship, error) {
	f := &models.Friendship{}
	var status string
	if err := row.Scan(&f.ID, &f.OwnerID, &f.ProfileID, &status, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Status = models.FriendshipStatus(status)
	return f, nil
}

// CheckThrottle fails with a *ThrottledError when the owner has no request
// left in the current window. It reads outside any transaction, so Create
// checks again under the owner lock.
func (s *FriendService) CheckThrottle(ctx context.Context, ownerID uuid.UUID) error {
	decision, err := s.throttle.Check(ctx, s.db, ownerID, s.now())
	if err != nil {
		return err
	}
	if !decision.Allowed {
		friendRequestsThrottled.Inc()
		return &ThrottledError{RetryAfter: decision.RetryAfter}
	}
	return nil
}

// Create stores a friend request from params.OwnerID. The owner row is
// locked for the duration of the transaction so the throttle count and
// the insert cannot interleave with another create by the same owner.
func (s *FriendService) Create(ctx context.Context, params models.CreateFriendshipParams) (*models.Friendship, error) {
	status := params.Status
	if status == "" {
		status = models.FriendshipStatusSend
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin friend request transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	var lockedID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR NO KEY UPDATE`, params.OwnerID).Scan(&lockedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock owner: %w", err)
	}

	now := s.now()
	decision, err := s.throttle.Check(ctx, tx, params.OwnerID, now)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		friendRequestsThrottled.Inc()
		return nil, &ThrottledError{RetryAfter: decision.RetryAfter}
	}

	var profileExists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, params.ProfileID).Scan(&profileExists)
	if err != nil {
		return nil, fmt.Errorf("check profile: %w", err)
	}
	if !profileExists {
		return nil, ErrProfileNotFound
	}

	if params.ProfileID == params.OwnerID {
		return nil, ErrCannotFriendSelf
	}

	friendship, err := scanFriendship(tx.QueryRow(ctx,
		`INSERT INTO friendships (owner_id, profile_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (owner_id, profile_id) DO NOTHING
		 RETURNING `+friendshipColumns,
		params.OwnerID, params.ProfileID, string(status), now,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFriendshipExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert friendship: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit friend request: %w", err)
	}
	committed = true

	friendRequestsCreated.Inc()
	return friendship, nil
}

// UpdateStatus changes only the status of a relationship the caller takes
// part in.
func (s *FriendService) UpdateStatus(ctx context.Context, callerID, friendshipID uuid.UUID, status models.FriendshipStatus) (*models.Friendship, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	current, err := s.GetByID(ctx, friendshipID)
	if err != nil {
		return nil, err
	}
	if callerID != current.OwnerID && callerID != current.ProfileID {
		return nil, ErrNotFriendshipParticipant
	}
	if !current.Status.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}

	updated, err := scanFriendship(s.db.QueryRow(ctx,
		`UPDATE friendships
		 SET status = $1, updated_at = $2
		 WHERE id = $3 AND status = $4
		 RETURNING `+friendshipColumns,
		string(status), s.now(), friendshipID, string(current.Status),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, fmt.Errorf("update friendship status: %w", err)
	}

	friendStatusUpdates.WithLabelValues(string(status)).Inc()
	return updated, nil
}

func (s *FriendService) GetByID(ctx context.Context, friendshipID uuid.UUID) (*models.Friendship, error) {
	f, err := scanFriendship(s.db.QueryRow(ctx,
		`SELECT `+friendshipColumns+` FROM friendships WHERE id = $1`,
		friendshipID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFriendshipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get friendship: %w", err)
	}
	return f, nil
}

// ListAccepted returns the caller's accepted outgoing relationships.
func (s *FriendService) ListAccepted(ctx context.Context, ownerID uuid.UUID) ([]models.Friendship, error) {
	return s.list(ctx,
		`SELECT `+friendshipColumns+` FROM friendships
		 WHERE owner_id = $1 AND status = $2
		 ORDER BY created_at, id`,
		ownerID, string(models.FriendshipStatusAccept),
	)
}

// ListOwnSentRequests returns pending requests the caller sent.
func (s *FriendService) ListOwnSentRequests(ctx context.Context, ownerID uuid.UUID) ([]models.Friendship, error) {
	return s.list(ctx,
		`SELECT `+friendshipColumns+` FROM friendships
		 WHERE owner_id = $1 AND status = $2
		 ORDER BY created_at, id`,
		ownerID, string(models.FriendshipStatusSend),
	)
}

// ListIncomingRequests returns pending requests that target the caller.
func (s *FriendService) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error) {
	return s.list(ctx,
		`SELECT `+friendshipColumns+` FROM friendships
		 WHERE profile_id = $1 AND status = $2
		 ORDER BY created_at, id`,
		userID, string(models.FriendshipStatusSend),
	)
}

func (s *FriendService) list(ctx context.Context, sql string, args ...any) ([]models.Friendship, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing friendships: %w", err)
	}
	defer rows.Close()

	friendships := []models.Friendship{}
	for rows.Next() {
		f, err := scanFriendship(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning friendship: %w", err)
		}
		friendships = append(friendships, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating friendships: %w", err)
	}
	return friendships, nil
}
