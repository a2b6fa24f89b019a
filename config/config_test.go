package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Server.PortAttempts)
	assert.Equal(t, 331, cfg.Rooms.TotalTarget)
	assert.Equal(t, 100, cfg.Rooms.SeedThreshold)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Zero(t, cfg.Jobs.GatePassExpiryInterval)
	assert.False(t, cfg.Push.Enabled())
	assert.Equal(t, "22:00", cfg.Attendance.Curfew)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 8080
  allowed_origins: ["https://hostel.example"]
rooms:
  total_target: 40
booking:
  strict_roommates: true
jobs:
  gatepass_expiry_interval_seconds: 90
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CLIENT_ORIGIN", "https://a.example, https://b.example,")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port, "env should override the file")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 40, cfg.Rooms.TotalTarget)
	assert.True(t, cfg.Booking.StrictRoommates)
	assert.Equal(t, 90*time.Second, cfg.Jobs.GatePassExpiryInterval)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
