package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "0123456789abcdef-test")
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MONGO_DATABASE", "pms_test")
	t.Setenv("AUTH_ACCESS_TTL", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "pms_test", cfg.Mongo.Database)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "0123456789abcdef-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, uint64(50), cfg.Mongo.MaxPoolSize)
	assert.False(t, cfg.Database.Enabled())
	assert.Empty(t, cfg.AI.APIKey)
	assert.Equal(t, 25, cfg.BodyLimitMB)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
}

func TestValidate(t *testing.T) {
	base := AppConfig{
		Mongo: MongoConfig{URI: "mongodb://x", Database: "d"},
		Auth:  AuthConfig{JWTSecret: "0123456789abcdef", AccessTTL: time.Minute, RefreshTTL: time.Hour},
	}
	assert.NoError(t, base.Validate())

	noURI := base
	noURI.Mongo.URI = ""
	assert.Error(t, noURI.Validate())

	badTTL := base
	badTTL.Auth.AccessTTL = 0
	assert.Error(t, badTTL.Validate())
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{Timezone: "Asia/Jakarta"}
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())

	cfg.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.Timezone = ""
	assert.Equal(t, time.UTC, cfg.Location())
}
