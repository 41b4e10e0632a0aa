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
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Store    StoreConfig
}

type AppConfig struct {
	Port       string        `env:"PORT" envDefault:"8002"`
	Env        string        `env:"ENV" envDefault:"development"`
	LogLevel   string        `env:"LOG_LEVEL" envDefault:"info"`
	FileURL    string        `env:"FILE_SERVICE_URL" envDefault:"http://localhost:8003"`
	BodyLimit  int           `env:"BODY_LIMIT" envDefault:"10485760"`
	APITimeout time.Duration `env:"API_TIMEOUT" envDefault:"30s"`

	// shared with the files service and the auth gateway
	ServiceToken string `env:"SERVICE_TOKEN" envDefault:"dev-service-token"`
}

// DatabaseConfig selects the in-memory store when URL is empty.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envDefault:""`
}

// RedisConfig selects in-memory carts and no catalog cache when Addr is empty.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:""`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type JWTConfig struct {
	Secret   string `env:"JWT_SECRET" envDefault:"your-secret-key"`
	Issuer   string `env:"JWT_ISSUER" envDefault:""`
	Audience string `env:"JWT_AUDIENCE" envDefault:""`
}

type StoreConfig struct {
	ActiveOnly      bool          `env:"STOREFRONT_ACTIVE_ONLY" envDefault:"false"`
	CartTTL         time.Duration `env:"CART_TTL" envDefault:"720h"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"1m"`
	ProofURLTTL     time.Duration `env:"PROOF_URL_TTL" envDefault:"1h"`
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
	return cfg, nil
}

func (c *Config) InMemory() bool { return c.Database.URL == "" }

func (c *Config) CacheEnabled() bool { return c.Redis.Addr != "" }
