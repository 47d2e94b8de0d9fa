package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GALAXY_JWT_SECRET", "0123456789abcdef")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8081", s.Addr)
	assert.Equal(t, "galaxy.db", s.DBPath)
	assert.Equal(t, "galaxy.yaml", s.CatalogPath)
	assert.Equal(t, 24*time.Hour, s.TokenTTL)
	assert.Equal(t, 3*time.Second, s.NotificationTTL)
	assert.Equal(t, 256, s.OutboxSize)
	assert.Equal(t, 30*time.Minute, s.SessionIdleTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GALAXY_JWT_SECRET", "0123456789abcdef")
	t.Setenv("GALAXY_ADDR", "127.0.0.1:9000")
	t.Setenv("GALAXY_NOTIFICATION_TTL", "5s")
	t.Setenv("GALAXY_OUTBOX_SIZE", "8")
	t.Setenv("GALAXY_SESSION_IDLE_TTL", "0")

	s, err := Load()
	require.NoError(t, err)
	assert.Zero(t, s.SessionIdleTTL)

	assert.Equal(t, "127.0.0.1:9000", s.Addr)
	assert.Equal(t, 5*time.Second, s.NotificationTTL)
	assert.Equal(t, 8, s.OutboxSize)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("GALAXY_JWT_SECRET", "short")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("GALAXY_JWT_SECRET", "0123456789abcdef")
	t.Setenv("GALAXY_HEARTBEAT", "often")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_NegativeIdleTTL(t *testing.T) {
	t.Setenv("GALAXY_JWT_SECRET", "0123456789abcdef")
	t.Setenv("GALAXY_SESSION_IDLE_TTL", "-1m")

	_, err := Load()
	assert.Error(t, err)
}
