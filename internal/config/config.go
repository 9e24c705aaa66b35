package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Friends   FriendsConfig
	Directory DirectoryConfig
}

type ServerConfig struct {
	Host           string   `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port           int      `env:"SERVER_PORT" envDefault:"8080"`
	Secure         bool     `env:"SERVER_SECURE" envDefault:"false"` // Send HSTS
	Environment    string   `env:"APP_ENV" envDefault:"development"` // "development", "production", "test"
	Debug          bool     `env:"DEBUG" envDefault:"false"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"butterfly"`
	Password string `env:"DB_PASSWORD" envDefault:"butterfly"`
	DBName   string `env:"DB_NAME" envDefault:"butterfly"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type AuthConfig struct {
	// PasswordRequired makes a supplied password fail against an identity
	// that has no stored credential.
	PasswordRequired bool          `env:"AUTH_PASSWORD_REQUIRED" envDefault:"true"`
	TokenCacheTTL    time.Duration `env:"TOKEN_CACHE_TTL" envDefault:"1h"`
	RateLimit        int64         `env:"AUTH_RATE_LIMIT" envDefault:"20"` // per client IP per minute
}

type FriendsConfig struct {
	RequestLimit  int           `env:"FRIEND_REQUEST_LIMIT" envDefault:"3"`
	RequestWindow time.Duration `env:"FRIEND_REQUEST_WINDOW" envDefault:"3m"`
}

type DirectoryConfig struct {
	PageSize int `env:"DIRECTORY_PAGE_SIZE" envDefault:"10"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Load reads an optional .env file from the working directory and then
// parses the environment. Variables already set win over the file.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Friends.RequestLimit <= 0 {
		return errors.New("FRIEND_REQUEST_LIMIT must be positive")
	}
	if c.Friends.RequestWindow <= 0 {
		return errors.New("FRIEND_REQUEST_WINDOW must be positive")
	}
	if c.Directory.PageSize <= 0 {
		return errors.New("DIRECTORY_PAGE_SIZE must be positive")
	}
	if c.Auth.RateLimit <= 0 {
		return errors.New("AUTH_RATE_LIMIT must be positive")
	}
	return nil
}
