package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/HammerMeetNail/butterfly/internal/logging"
	"github.com/HammerMeetNail/butterfly/internal/models"
)

const (
	tokenKeyBytes     = 20
	tokenCachePrefix  = "token:"
	tokenIssueRetries = 3
	pgFKViolation     = "23503"
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrUserInactive  = errors.New("user inactive or deleted")
)

// TokenService issues and resolves the single bearer token of each user.
type TokenService struct {
	db       DB
	redis    RedisClient
	cacheTTL time.Duration
}

// NewTokenService wires the token store. redis may be nil, in which case
// every lookup goes to PostgreSQL.
func NewTokenService(db DB, redis RedisClient, cacheTTL time.Duration) *TokenService {
	return &TokenService{db: db, redis: redis, cacheTTL: cacheTTL}
}

func generateTokenKey() (string, error) {
	b := make([]byte, tokenKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Issue returns the user's token, creating it on first use.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID) (*models.Token, error) {
	for attempt := 0; attempt < tokenIssueRetries; attempt++ {
		key, err := generateTokenKey()
		if err != nil {
			return nil, err
		}

		token := &models.Token{}
		err = s.db.QueryRow(ctx,
			`INSERT INTO auth_tokens (key, user_id)
			 VALUES ($1, $2)
			 ON CONFLICT (user_id) DO NOTHING
			 RETURNING key, user_id, created_at`,
			key, userID,
		).Scan(&token.Key, &token.UserID, &token.CreatedAt)
		switch {
		case err == nil:
			return token, nil
		case errors.Is(err, pgx.ErrNoRows):
			return s.getByUser(ctx, userID)
		case isUniqueViolation(err):
			// Key collision; draw another.
			continue
		case isFKViolation(err):
			return nil, ErrUserNotFound
		default:
			return nil, fmt.Errorf("issuing token: %w", err)
		}
	}
	return nil, fmt.Errorf("issuing token: no unique key after %d attempts", tokenIssueRetries)
}

func isFKViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgFKViolation
}

func (s *TokenService) getByUser(ctx context.Context, userID uuid.UUID) (*models.Token, error) {
	token := &models.Token{}
	err := s.db.QueryRow(ctx,
		`SELECT key, user_id, created_at FROM auth_tokens WHERE user_id = $1`,
		userID,
	).Scan(&token.Key, &token.UserID, &token.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting token: %w", err)
	}
	return token, nil
}

// Resolve returns the active owner of key.
func (s *TokenService) Resolve(ctx context.Context, key string) (*models.User, error) {
	if key == "" {
		return nil, ErrTokenNotFound
	}

	if userID, ok := s.cachedUserID(ctx, key); ok {
		user, err := s.getUser(ctx, userID)
		if err == nil {
			return checkActive(user)
		}
		if !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		s.evict(ctx, key)
	}

	user, err := scanUser(s.db.QueryRow(ctx,
		`SELECT u.id, u.email, u.name, COALESCE(u.password_hash, ''), u.is_active, u.is_admin, u.created_at, u.updated_at
		 FROM auth_tokens t
		 JOIN users u ON u.id = t.user_id
		 WHERE t.key = $1`,
		key,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolving token: %w", err)
	}

	s.cache(ctx, key, user.ID)
	return checkActive(user)
}

func checkActive(user *models.User) (*models.User, error) {
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

func (s *TokenService) getUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting token owner: %w", err)
	}
	return user, nil
}

func (s *TokenService) cachedUserID(ctx context.Context, key string) (uuid.UUID, bool) {
	if s.redis == nil {
		return uuid.Nil, false
	}
	val, err := s.redis.Get(ctx, tokenCachePrefix+key)
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false
	}
	if err != nil {
		logging.Warn("Token cache read failed, falling back to database", map[string]interface{}{"error": err.Error()})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(val)
	if err != nil {
		s.evict(ctx, key)
		return uuid.Nil, false
	}
	return id, true
}

func (s *TokenService) cache(ctx context.Context, key string, userID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, tokenCachePrefix+key, userID.String(), s.cacheTTL); err != nil {
		logging.Warn("Token cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *TokenService) evict(ctx context.Context, key string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, tokenCachePrefix+key); err != nil {
		logging.Warn("Token cache eviction failed", map[string]interface{}{"error": err.Error()})
	}
}
