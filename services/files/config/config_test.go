package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "minio:9000")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "minio:9000", cfg.MinIOEndpoint)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, "8003", cfg.Port)
}

func TestLoadRejectsZeroLimit(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestProductionRequiresServiceToken(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SERVICE_TOKEN", "dev-service-token")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SERVICE_TOKEN", "a-real-token")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "a-real-token", cfg.ServiceToken)
}
