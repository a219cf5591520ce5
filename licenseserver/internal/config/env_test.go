package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, k := range []string{"LISTEN_ADDR", "DB_PATH", "JWT_SECRET", "LICENSE_LENGTH", "LOG_LEVEL", "ADMIN_USERNAME", "ADMIN_PASSWORD", "ADMIN_EMAIL"} {
		t.Setenv(k, kv[k])
	}
}

func TestLoadEnvDefaults(t *testing.T) {
	setEnv(t, map[string]string{"JWT_SECRET": "s"})

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultListenAddr, env.ListenAddr)
	assert.Equal(t, DefaultDBPath, env.DBPath)
	assert.Equal(t, DefaultLicenseLength, env.LicenseLength)
	assert.Equal(t, zerolog.InfoLevel, env.LogLevel)
	assert.False(t, env.HasAdmin())
}

func TestLoadEnvOverrides(t *testing.T) {
	setEnv(t, map[string]string{
		"JWT_SECRET":     "s",
		"LISTEN_ADDR":    "127.0.0.1:9000",
		"DB_PATH":        "/tmp/l.db",
		"LICENSE_LENGTH": "12",
		"LOG_LEVEL":      "DEBUG",
		"ADMIN_USERNAME": "root",
		"ADMIN_PASSWORD": "pw",
	})

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", env.ListenAddr)
	assert.Equal(t, "/tmp/l.db", env.DBPath)
	assert.Equal(t, 12, env.LicenseLength)
	assert.Equal(t, zerolog.DebugLevel, env.LogLevel)
	assert.True(t, env.HasAdmin())
}

func TestLoadEnvCollectsErrors(t *testing.T) {
	setEnv(t, map[string]string{
		"LICENSE_LENGTH": "4",
		"LOG_LEVEL":      "loud",
		"ADMIN_USERNAME": "root",
	})

	_, err := LoadEnv()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "JWT_SECRET is required")
	assert.Contains(t, msg, "LICENSE_LENGTH must be 8-128")
	assert.Contains(t, msg, "LOG_LEVEL")
	assert.Contains(t, msg, "ADMIN_USERNAME and ADMIN_PASSWORD")
}
