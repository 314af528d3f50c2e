package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "ctpgate", cfg.App.Name)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "paper", cfg.Session.Mode)
	assert.True(t, cfg.Session.Quick)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, "ctpgate.", cfg.NATS.Prefix)
	assert.True(t, cfg.Query.SnapshotOnReady)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
app:
  log_level: debug
session:
  mode: live
  broker: "9999"
  user: tester
  password: secret
  front: tcp://180.168.146.187:10130
nats:
  enabled: true
  url: nats://localhost:4222
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "live", cfg.Session.Mode)
	assert.Equal(t, "tcp://180.168.146.187:10130", cfg.Session.Front)
	assert.True(t, cfg.NATS.Enabled)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(writeConfig(t, "{}\n"))
		require.NoError(t, err)
		return cfg
	}

	t.Run("invalid mode", func(t *testing.T) {
		cfg := base()
		cfg.Session.Mode = "dryrun"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "session.mode")
	})

	t.Run("live mode requires credentials", func(t *testing.T) {
		cfg := base()
		cfg.Session.Mode = "live"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "session.broker")
		assert.Contains(t, err.Error(), "session.password")
		assert.Contains(t, err.Error(), "session.front")
	})

	t.Run("auth fields must pair", func(t *testing.T) {
		cfg := base()
		cfg.Session.AppID = "app"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth_code")
	})

	t.Run("nats url required when enabled", func(t *testing.T) {
		cfg := base()
		cfg.NATS.Enabled = true
		cfg.NATS.URL = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nats.url")
	})

	t.Run("paper defaults pass", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})
}
