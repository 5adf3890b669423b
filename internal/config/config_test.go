// File: internal/config/config_test.go
package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "chatdriver", cfg.Logger.ServiceName)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1280, cfg.Browser.Viewport.Width)
	assert.Equal(t, 800, cfg.Browser.Viewport.Height)
	assert.Equal(t, 5*time.Second, cfg.Harness.DefaultWaitTimeout)
	assert.Equal(t, 30*time.Second, cfg.Harness.LaunchTimeout)
	assert.Equal(t, 10*time.Second, cfg.Harness.CloseTimeout)
	assert.Equal(t, 0, cfg.Harness.MaxLogEntries)
	assert.Equal(t, time.Duration(0), cfg.Harness.KeyDelay)
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	valid := NewDefaultConfig()
	require.NoError(t, valid.Validate())

	t.Run("missing display url", func(t *testing.T) {
		cfg := *valid
		cfg.Harness.DisplayURL = ""
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "harness.display_url")
	})

	t.Run("non-positive wait timeout", func(t *testing.T) {
		cfg := *valid
		cfg.Harness.DefaultWaitTimeout = 0
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "default_wait_timeout")
	})

	t.Run("invalid launch rate", func(t *testing.T) {
		cfg := *valid
		cfg.Harness.LaunchRate = 0
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "launch_rate")
	})

	t.Run("negative buffer cap", func(t *testing.T) {
		cfg := *valid
		cfg.Harness.MaxLogEntries = -1
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "max_log_entries")
	})

	t.Run("degenerate viewport", func(t *testing.T) {
		cfg := *valid
		cfg.Browser.Viewport.Height = 0
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "viewport")
	})
}

// -- File Loading Tests --

func TestNewConfigFromViper(t *testing.T) {
	yaml := []byte(`
logger:
  level: debug
  format: json
browser:
  headless: false
  args:
    - "--disable-dev-shm-usage"
harness:
  display_url: "https://app.example.com"
  homeserver_url: "https://hs.example.com"
  default_wait_timeout: 8s
  max_log_entries: 2000
`)

	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewReader(yaml)))

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, []string{"--disable-dev-shm-usage"}, cfg.Browser.Args)
	assert.Equal(t, "https://app.example.com", cfg.Harness.DisplayURL)
	assert.Equal(t, "https://hs.example.com", cfg.Harness.HomeserverURL)
	assert.Equal(t, 8*time.Second, cfg.Harness.DefaultWaitTimeout)
	assert.Equal(t, 2000, cfg.Harness.MaxLogEntries)

	// Unset keys keep their defaults.
	assert.Equal(t, 1280, cfg.Browser.Viewport.Width)
}

func TestNewConfigFromViperRejectsInvalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("harness.display_url", "")

	_, err := NewConfigFromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
