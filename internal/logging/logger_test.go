package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", time.UTC).Named("database")

	log.Info("db_migration_step", zap.String("migration_step", "users_email_unique"))
	log.Debug("suppressed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "db_migration_step", entry["msg"])
	assert.Equal(t, "database", entry["component"])
	assert.Equal(t, "users_email_unique", entry["migration_step"])
	assert.NotEmpty(t, entry["ts"])
}

func TestNewWithWriter_UnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "loud", nil)
	log.Debug("hidden")
	assert.Zero(t, buf.Len())
	log.Warn("shown")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestNew(t *testing.T) {
	_, err := New("verbose", time.UTC)
	assert.Error(t, err)

	log, err := New("debug", time.UTC)
	assert.NoError(t, err)
	assert.NotNil(t, log)
}
