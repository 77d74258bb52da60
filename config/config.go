package config

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	AuthTypeBasic   = "basic_auth"
	AuthTypeSession = "session_auth"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	HTTPHost string `env:"HTTP_HOST, default=0.0.0.0"`
	HTTPPort string `env:"HTTP_PORT, default=8080"`
	GRPCHost string `env:"GRPC_HOST, default=0.0.0.0"`
	GRPCPort string `env:"GRPC_PORT, default=9090"`
	MySQLDSN string `env:"MYSQL_DSN, required"`

	Auth    AuthConfig
	Redis   RedisConfig
	Logging LoggingConfig
}

type AuthConfig struct {
	Type          string   `env:"AUTH_TYPE, default=session_auth"`
	SessionName   string   `env:"SESSION_NAME, default=_my_session_id"`
	SessionStore  string   `env:"SESSION_STORE, default=memory"`
	BcryptCost    int      `env:"BCRYPT_COST, default=10"`
	ExcludedPaths []string `env:"EXCLUDED_PATHS, default=/api/v1/status/,/api/v1/unauthorized/,/api/v1/forbidden/,/api/v1/auth_session/login/"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL, default=info"`
	Format string `env:"LOG_FORMAT, default=json"`
}

// Load reads a .env file when one exists, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Auth.Type {
	case AuthTypeBasic, AuthTypeSession:
	default:
		return fmt.Errorf("unsupported AUTH_TYPE %q", c.Auth.Type)
	}

	switch c.Auth.SessionStore {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.Auth.SessionStore)
	}

	if c.Auth.SessionName == "" {
		return fmt.Errorf("SESSION_NAME must not be empty")
	}
	return nil
}

func (c *Config) DSN() string {
	return c.MySQLDSN
}
