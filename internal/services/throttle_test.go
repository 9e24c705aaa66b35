package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRequestThrottle_Check(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		times       []time.Time
		wantAllowed bool
		wantRetry   time.Duration
	}{
		{name: "no history", wantAllowed: true},
		{
			name:        "below limit",
			times:       []time.Time{now.Add(-10 * time.Second), now.Add(-20 * time.Second)},
			wantAllowed: true,
		},
		{
			name: "at limit",
			times: []time.Time{
				now.Add(-10 * time.Second),
				now.Add(-30 * time.Second),
				now.Add(-60 * time.Second),
			},
			wantAllowed: false,
			wantRetry:   2 * time.Minute,
		},
		{
			name: "oldest exactly on boundary",
			times: []time.Time{
				now.Add(-time.Second),
				now.Add(-2 * time.Second),
				now.Add(-3 * time.Minute),
			},
			wantAllowed: false,
			wantRetry:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ownerID := uuid.New()
			q := &fakeTx{
				QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
					if !strings.Contains(sql, "FROM friendships") {
						t.Fatalf("unexpected sql: %q", sql)
					}
					if args[0] != ownerID {
						t.Fatalf("expected owner arg, got %v", args[0])
					}
					if since := args[1].(time.Time); !since.Equal(now.Add(-3 * time.Minute)) {
						t.Fatalf("expected window start %v, got %v", now.Add(-3*time.Minute), since)
					}
					if args[2] != 3 {
						t.Fatalf("expected limit 3, got %v", args[2])
					}
					rows := &fakeRows{}
					for _, ts := range tt.times {
						rows.rows = append(rows.rows, []any{ts})
					}
					return rows, nil
				},
			}

			decision, err := NewRequestThrottle(3, 3*time.Minute).Check(context.Background(), q, ownerID, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if decision.Allowed != tt.wantAllowed {
				t.Fatalf("expected allowed=%v, got %+v", tt.wantAllowed, decision)
			}
			if decision.RetryAfter != tt.wantRetry {
				t.Fatalf("expected retry %v, got %v", tt.wantRetry, decision.RetryAfter)
			}
			if decision.Recent != len(tt.times) {
				t.Fatalf("expected recent %d, got %d", len(tt.times), decision.Recent)
			}
		})
	}
}

func TestRequestThrottle_QueryError(t *testing.T) {
	q := &fakeTx{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			return nil, errors.New("boom")
		},
	}
	if _, err := NewRequestThrottle(3, time.Minute).Check(context.Background(), q, uuid.New(), time.Now()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRequestThrottle_RowsError(t *testing.T) {
	rows := &fakeRows{err: errors.New("stream broken")}
	q := &fakeTx{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			return rows, nil
		},
	}
	if _, err := NewRequestThrottle(3, time.Minute).Check(context.Background(), q, uuid.New(), time.Now()); err == nil {
		t.Fatal("expected error")
	}
	if !rows.closed {
		t.Fatal("expected rows to be closed")
	}
}

func TestThrottledError(t *testing.T) {
	err := fmt.Errorf("create: %w", &ThrottledError{RetryAfter: 1500 * time.Millisecond})
	if !errors.Is(err, ErrTooManyRequests) {
		t.Fatal("expected ThrottledError to match ErrTooManyRequests")
	}
	var te *ThrottledError
	if !errors.As(err, &te) {
		t.Fatal("expected errors.As to find ThrottledError")
	}
	if te.WaitSeconds() != 2 {
		t.Fatalf("expected 2 seconds, got %d", te.WaitSeconds())
	}
	if (&ThrottledError{}).WaitSeconds() != 1 {
		t.Fatal("expected minimum wait of one second")
	}
}
