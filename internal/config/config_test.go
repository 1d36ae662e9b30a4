package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := NewDefault()
	cfg.Storage.Endpoint = "minio.local:9000"
	cfg.Storage.AccessKey = "key"
	cfg.Storage.SecretKey = "secret"
	return cfg
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsMissingStorage(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Endpoint = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage endpoint")

	cfg = validConfig()
	cfg.Storage.SecretKey = ""
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage credentials")
}

func TestValidateRejectsMissingDatabaseCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Type = "pgsql"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database credentials")

	cfg.Database.User = "shelf"
	cfg.Database.Password = "secret"
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadBatchSize(t *testing.T) {
	cfg := validConfig()
	cfg.Service.BatchSize = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch size")
}
