// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Harness HarnessConfig `mapstructure:"harness" yaml:"harness"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// ViewportConfig fixes the emulated window size of every tab the harness opens.
type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// BrowserConfig holds the launch settings for the headless browser processes.
// Args are forwarded verbatim to the browser; the harness does not interpret them.
type BrowserConfig struct {
	Headless        bool           `mapstructure:"headless" yaml:"headless"`
	IgnoreTLSErrors bool           `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	ExecPath        string         `mapstructure:"exec_path" yaml:"exec_path"`
	Args            []string       `mapstructure:"args" yaml:"args"`
	Viewport        ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
}

// HarnessConfig tunes the test harness itself: where the application under
// test lives and how patient the wait primitives are.
type HarnessConfig struct {
	// DisplayURL is the base URL of the web client under test.
	DisplayURL string `mapstructure:"display_url" yaml:"display_url"`
	// HomeserverURL is the chat homeserver the client talks to. Stored for
	// scenario scripts; the session primitives never touch it.
	HomeserverURL string `mapstructure:"homeserver_url" yaml:"homeserver_url"`
	// DefaultWaitTimeout bounds WaitAndQuery/WaitForReload/WaitForNewPage
	// unless overridden per call.
	DefaultWaitTimeout time.Duration `mapstructure:"default_wait_timeout" yaml:"default_wait_timeout"`
	// LaunchTimeout bounds browser startup during session construction.
	LaunchTimeout time.Duration `mapstructure:"launch_timeout" yaml:"launch_timeout"`
	// CloseTimeout bounds how long Close waits for the browser process to exit.
	CloseTimeout time.Duration `mapstructure:"close_timeout" yaml:"close_timeout"`
	// LaunchRate and LaunchBurst throttle concurrent browser launches so a
	// multi-user run does not stampede the host.
	LaunchRate  float64 `mapstructure:"launch_rate" yaml:"launch_rate"`
	LaunchBurst int     `mapstructure:"launch_burst" yaml:"launch_burst"`
	// MaxLogEntries caps each session log buffer. Zero means unbounded.
	MaxLogEntries int `mapstructure:"max_log_entries" yaml:"max_log_entries"`
	// KeyDelay is an optional pause between simulated keystrokes.
	KeyDelay time.Duration `mapstructure:"key_delay" yaml:"key_delay"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "chatdriver")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "blue")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.viewport.width", 1280)
	v.SetDefault("browser.viewport.height", 800)

	// -- Harness --
	v.SetDefault("harness.display_url", "http://localhost:3000")
	v.SetDefault("harness.homeserver_url", "http://localhost:8008")
	v.SetDefault("harness.default_wait_timeout", "5s")
	v.SetDefault("harness.launch_timeout", "30s")
	v.SetDefault("harness.close_timeout", "10s")
	v.SetDefault("harness.launch_rate", 2.0)
	v.SetDefault("harness.launch_burst", 2)
	v.SetDefault("harness.max_log_entries", 0)
	v.SetDefault("harness.key_delay", "0s")
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults always unmarshal; anything else is a programming error.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Harness.DisplayURL == "" {
		return fmt.Errorf("harness.display_url is a required configuration field")
	}
	if c.Harness.DefaultWaitTimeout <= 0 {
		return fmt.Errorf("harness.default_wait_timeout must be a positive duration")
	}
	if c.Harness.LaunchTimeout <= 0 {
		return fmt.Errorf("harness.launch_timeout must be a positive duration")
	}
	if c.Harness.CloseTimeout <= 0 {
		return fmt.Errorf("harness.close_timeout must be a positive duration")
	}
	if c.Harness.LaunchRate <= 0 {
		return fmt.Errorf("harness.launch_rate must be greater than 0")
	}
	if c.Harness.LaunchBurst <= 0 {
		return fmt.Errorf("harness.launch_burst must be a positive integer")
	}
	if c.Harness.MaxLogEntries < 0 {
		return fmt.Errorf("harness.max_log_entries must not be negative")
	}
	if c.Browser.Viewport.Width <= 0 || c.Browser.Viewport.Height <= 0 {
		return fmt.Errorf("browser.viewport dimensions must be positive")
	}
	return nil
}
