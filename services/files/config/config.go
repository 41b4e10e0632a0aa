package config

import (
	"fmt"

	"github.com/caarlos0/env/v8"
	_ "github.com/joho/godotenv/autoload"

	"github.com/teammachinist/tiendaqr/internal"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8003"`
	Env         string `env:"ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:""`

	// MinIO; an empty endpoint keeps objects in memory
	MinIOEndpoint  string `env:"MINIO_ENDPOINT" envDefault:""`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY" envDefault:"minioadmin"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	PublicBaseURL  string `env:"PUBLIC_BASE_URL" envDefault:""`

	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`

	// shared with core; every /v1/file call must present it
	ServiceToken string `env:"SERVICE_TOKEN" envDefault:"dev-service-token"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if cfg.ServiceToken == "" {
		return nil, fmt.Errorf("SERVICE_TOKEN must not be empty")
	}
	if cfg.Env == "production" && cfg.ServiceToken == internal.DefaultServiceToken {
		return nil, fmt.Errorf("SERVICE_TOKEN must be set in production")
	}
	return cfg, nil
}
