package main

import (
	"fmt"

	"github.com/HammerMeetNail/butterfly/internal/config"
	"github.com/HammerMeetNail/butterfly/internal/database"
	"github.com/HammerMeetNail/butterfly/internal/logging"
	"github.com/HammerMeetNail/butterfly/internal/services"
)

// app holds the connections and services shared by every subcommand.
type app struct {
	cfg    *config.Config
	logger *logging.Logger

	db    *database.PostgresDB
	redis *database.RedisDB

	users     *services.UserService
	auth      *services.AuthService
	tokens    *services.TokenService
	friends   *services.FriendService
	directory *services.DirectoryService
}

// newApp connects to PostgreSQL and, when withRedis is set, Redis.
func newApp(cfg *config.Config, logger *logging.Logger, withRedis bool) (*app, error) {
	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, db: db}

	if withRedis {
		logger.Info("Connecting to Redis", map[string]interface{}{"addr": cfg.Redis.Addr()})
		a.redis, err = database.NewRedisDB(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
	}

	a.wireServices()
	return a, nil
}

func (a *app) wireServices() {
	pool := services.NewPoolAdapter(a.db.Pool)

	// A nil interface, not a typed nil adapter, disables the token cache.
	var cache services.RedisClient
	if a.redis != nil {
		cache = services.NewRedisAdapter(a.redis.Client)
	}

	a.users = services.NewUserService(pool)
	a.auth = services.NewAuthService(a.users, services.CredentialPolicy{
		PasswordRequired: a.cfg.Auth.PasswordRequired,
	})
	a.tokens = services.NewTokenService(pool, cache, a.cfg.Auth.TokenCacheTTL)
	a.friends = services.NewFriendService(pool, services.NewRequestThrottle(
		a.cfg.Friends.RequestLimit,
		a.cfg.Friends.RequestWindow,
	))
	a.directory = services.NewDirectoryService(pool, a.cfg.Directory.PageSize)
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	a.db.Close()
	_ = a.logger.Sync()
}
