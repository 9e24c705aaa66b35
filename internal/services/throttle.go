package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

var ErrTooManyRequests = errors.New("too many requests")

// ThrottledError reports how long the caller has to wait. It matches
// ErrTooManyRequests under errors.Is.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("friend request throttled, retry in %s", e.RetryAfter)
}

func (e *ThrottledError) Unwrap() error {
	return ErrTooManyRequests
}

// WaitSeconds rounds RetryAfter up to whole seconds, never below one.
func (e *ThrottledError) WaitSeconds() int {
	secs := int(math.Ceil(e.RetryAfter.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

type ThrottleDecision struct {
	Allowed    bool
	Recent     int
	RetryAfter time.Duration
}

// RequestThrottle limits how many friend requests an owner may create in a
// trailing window.
type RequestThrottle struct {
	limit  int
	window time.Duration
}

func NewRequestThrottle(limit int, window time.Duration) *RequestThrottle {
	return &RequestThrottle{limit: limit, window: window}
}

// Check counts the owner's requests created at or after now minus the
// window. Pass the transaction that will perform the insert when the
// result must hold until commit.
func (t *RequestThrottle) Check(ctx context.Context, q Querier, ownerID uuid.UUID, now time.Time) (ThrottleDecision, error) {
	rows, err := q.Query(ctx,
		`SELECT created_at FROM friendships
		 WHERE owner_id = $1 AND created_at >= $2
		 ORDER BY created_at DESC
		 LIMIT $3`,
		ownerID, now.Add(-t.window), t.limit,
	)
	if err != nil {
		return ThrottleDecision{}, fmt.Errorf("counting recent friend requests: %w", err)
	}
	defer rows.Close()

	var oldest time.Time
	recent := 0
	for rows.Next() {
		var createdAt time.Time
		if err := rows.Scan(&createdAt); err != nil {
			return ThrottleDecision{}, fmt.Errorf("scanning friend request time: %w", err)
		}
		oldest = createdAt
		recent++
	}
	if err := rows.Err(); err != nil {
		return ThrottleDecision{}, fmt.Errorf("iterating friend request times: %w", err)
	}

	if recent < t.limit {
		return ThrottleDecision{Allowed: true, Recent: recent}, nil
	}

	retry := oldest.Add(t.window).Sub(now)
	if retry < 0 {
		retry = 0
	}
	return ThrottleDecision{Allowed: false, Recent: recent, RetryAfter: retry}, nil
}
