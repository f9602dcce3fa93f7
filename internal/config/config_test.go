package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, int64(50*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Session.CleanupInterval)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("OLSTUDIO_PORT", "9000")
	t.Setenv("OLSTUDIO_MAX_UPLOAD_MB", "5")
	t.Setenv("OLSTUDIO_SESSION_TTL", "30m")
	t.Setenv("OLSTUDIO_SESSION_SWEEP", "1m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, time.Minute, cfg.Session.CleanupInterval)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("OLSTUDIO_MAX_UPLOAD_MB", "plenty")
	t.Setenv("OLSTUDIO_SESSION_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(50*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
}

func TestLoad_RejectsNonPositiveLimits(t *testing.T) {
	t.Setenv("OLSTUDIO_MAX_UPLOAD_MB", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
