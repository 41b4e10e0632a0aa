package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v8"
	_ "github.com/joho/godotenv/autoload"

	"github.com/teammachinist/tiendaqr/internal"
)

type Config struct {
	App      AppConfig
	JWT      JWTConfig
	Identity IdentityConfig
	Redis    RedisConfig
}

type AppConfig struct {
	Port     string `env:"PORT" envDefault:"8001"`
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	SiteURL  string `env:"SITE_URL" envDefault:"http://localhost:3000"`
	CoreURL  string `env:"CORE_SERVICE_URL" envDefault:"http://localhost:8002"`

	// presented to core's internal routes
	ServiceToken string `env:"SERVICE_TOKEN" envDefault:"dev-service-token"`
}

type JWTConfig struct {
	Secret   string `env:"JWT_SECRET" envDefault:"your-secret-key"`
	Issuer   string `env:"JWT_ISSUER" envDefault:""`
	Audience string `env:"JWT_AUDIENCE" envDefault:""`
}

type IdentityConfig struct {
	URL    string `env:"IDENTITY_URL" envDefault:"http://localhost:9999"`
	APIKey string `env:"IDENTITY_API_KEY" envDefault:""`
}

// RedisConfig disables session caching and revocation when Addr is empty.
// Core must point at the same redis for sign-out to reach the dashboard.
type RedisConfig struct {
	Addr            string        `env:"REDIS_ADDR" envDefault:""`
	Password        string        `env:"REDIS_PASSWORD" envDefault:""`
	DB              int           `env:"REDIS_DB" envDefault:"0"`
	SessionCacheTTL time.Duration `env:"SESSION_CACHE_TTL" envDefault:"5m"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}
	if cfg.App.Env == "production" && cfg.JWT.Secret == "your-secret-key" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}
	if cfg.App.ServiceToken == "" {
		return nil, fmt.Errorf("SERVICE_TOKEN must not be empty")
	}
	if cfg.App.Env == "production" && cfg.App.ServiceToken == internal.DefaultServiceToken {
		return nil, fmt.Errorf("SERVICE_TOKEN must be set in production")
	}
	if cfg.Identity.URL == "" {
		return nil, fmt.Errorf("IDENTITY_URL is required")
	}
	return cfg, nil
}

func (c *Config) CacheEnabled() bool { return c.Redis.Addr != "" }
