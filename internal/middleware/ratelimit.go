package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/HammerMeetNail/butterfly/internal/logging"
)

// RateStore counts hits for a key inside a fixed window.
type RateStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

type redisRateStore struct {
	client *redis.Client
}

// NewRedisRateStore returns a fixed-window counter backed by Redis.
func NewRedisRateStore(client *redis.Client) RateStore {
	return &redisRateStore{client: client}
}

func (s *redisRateStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("incrementing %s: %w", key, err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("setting expiry on %s: %w", key, err)
		}
		return count, window, nil
	}
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("reading ttl of %s: %w", key, err)
	}
	if ttl < 0 {
		// A key without expiry would never reset.
		_ = s.client.Expire(ctx, key, window).Err()
		ttl = window
	}
	return count, ttl, nil
}

type KeyFunc func(r *http.Request) string

// RateLimiter enforces limit requests per window for each key. Counts live
// in the store; when the store is absent or failing, an in-process token
// bucket takes over if fallback is enabled, otherwise requests pass.
type RateLimiter struct {
	store    RateStore
	limit    int64
	window   time.Duration
	prefix   string
	keyFunc  KeyFunc
	fallback *localLimiter
}

func NewRateLimiter(store RateStore, limit int64, window time.Duration, prefix string, keyFunc KeyFunc, fallback bool) *RateLimiter {
	if keyFunc == nil {
		keyFunc = GetClientIP
	}
	rl := &RateLimiter{
		store:   store,
		limit:   limit,
		window:  window,
		prefix:  prefix,
		keyFunc: keyFunc,
	}
	if fallback {
		rl.fallback = newLocalLimiter(limit, window)
	}
	return rl
}

// NewAuthRateLimiter limits login and registration attempts per client IP.
func NewAuthRateLimiter(store RateStore, perMinute int64) *RateLimiter {
	return NewRateLimiter(store, perMinute, time.Minute, "ratelimit:auth:", GetClientIP, true)
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.prefix + rl.keyFunc(r)

		allowed, remaining, retryAfter, ok := rl.checkStore(r.Context(), key)
		if !ok {
			if rl.fallback == nil {
				next.ServeHTTP(w, r)
				return
			}
			allowed, remaining, retryAfter = rl.fallback.allow(key, time.Now())
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(rl.limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			secs := int(retryAfter.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeDetail(w, http.StatusTooManyRequests, fmt.Sprintf("Request was throttled. Expected available in %d seconds.", secs))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) checkStore(ctx context.Context, key string) (allowed bool, remaining int64, retryAfter time.Duration, ok bool) {
	if rl.store == nil {
		return false, 0, 0, false
	}
	count, ttl, err := rl.store.Incr(ctx, key, rl.window)
	if err != nil {
		logging.Warn("Rate limit store unavailable", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
		return false, 0, 0, false
	}
	remaining = rl.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.limit, remaining, ttl, true
}

type localLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	window    time.Duration
	clients   map[string]*localClient
	lastPrune time.Time
}

type localClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLocalLimiter(limit int64, window time.Duration) *localLimiter {
	return &localLimiter{
		limit:   rate.Every(window / time.Duration(limit)),
		burst:   int(limit),
		window:  window,
		clients: make(map[string]*localClient),
	}
}

func (l *localLimiter) allow(key string, now time.Time) (bool, int64, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) > l.window {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > 2*l.window {
				delete(l.clients, k)
			}
		}
		l.lastPrune = now
	}

	c, found := l.clients[key]
	if !found {
		c = &localClient{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now

	reservation := c.limiter.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, 0, delay
	}
	remaining := int64(c.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining, 0
}

// GetClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then
// the host part of RemoteAddr.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
