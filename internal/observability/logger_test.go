// internal/observability/logger_test.go
package observability

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/chatdriver/internal/config"
)

// -- Test Helper Functions --

// memorySink is an in-memory zapcore.WriteSyncer so tests can inspect console
// output without redirecting stdout.
type memorySink struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (s *memorySink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *memorySink) Sync() error { return nil }

func (s *memorySink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// -- Test Cases --

func TestInitialize(t *testing.T) {

	t.Run("should initialize console logger with colors", func(t *testing.T) {
		ResetForTest()
		sink := &memorySink{}

		cfg := config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "TestService",
			Colors: config.ColorConfig{
				Info: "green",
			},
		}
		Initialize(cfg, sink)
		GetLogger().Info("This is a test message.")
		Sync()

		output := sink.String()
		assert.Contains(t, output, "INFO", "Output should contain the log level")
		assert.Contains(t, output, "This is a test message.", "Output should contain the message")
		assert.Contains(t, output, colorGreen, "Info level should be colorized green")
		assert.Contains(t, output, colorReset, "Output should contain the reset color code")
	})

	t.Run("should initialize json logger", func(t *testing.T) {
		ResetForTest()
		sink := &memorySink{}

		cfg := config.LoggerConfig{
			Level:       "info",
			Format:      "json",
			ServiceName: "JSONTest",
		}
		Initialize(cfg, sink)
		GetLogger().Warn("This is a JSON message.", zap.String("key", "value"))
		Sync()

		var logEntry map[string]interface{}
		err := json.Unmarshal([]byte(sink.String()), &logEntry)
		require.NoError(t, err, "Log output should be valid JSON")

		assert.Equal(t, "WARN", logEntry["level"])
		assert.Equal(t, "JSONTest", logEntry["logger"])
		assert.Equal(t, "This is a JSON message.", logEntry["msg"])
		assert.Equal(t, "value", logEntry["key"])
	})

	t.Run("should filter entries below the configured level", func(t *testing.T) {
		ResetForTest()
		sink := &memorySink{}

		Initialize(config.LoggerConfig{Level: "warn", Format: "json"}, sink)
		GetLogger().Info("quiet")
		GetLogger().Warn("loud")
		Sync()

		output := sink.String()
		assert.NotContains(t, output, "quiet")
		assert.Contains(t, output, "loud")
	})

	t.Run("should fall back to info on an invalid level", func(t *testing.T) {
		ResetForTest()
		sink := &memorySink{}

		Initialize(config.LoggerConfig{Level: "extremely-verbose", Format: "json"}, sink)
		GetLogger().Debug("hidden")
		GetLogger().Info("visible")
		Sync()

		output := sink.String()
		assert.NotContains(t, output, "hidden")
		assert.Contains(t, output, "visible")
	})

	t.Run("should write to a log file if configured", func(t *testing.T) {
		ResetForTest()
		logPath := filepath.Join(t.TempDir(), "harness.log")

		cfg := config.LoggerConfig{
			Level:   "debug",
			Format:  "json",
			LogFile: logPath,
			MaxSize: 1, // 1 MB
		}
		Initialize(cfg, &memorySink{})
		GetLogger().Error("This should go to the file.")
		Sync()

		content, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "This should go to the file.", "Log file should contain the message")
	})

	t.Run("should only initialize once", func(t *testing.T) {
		ResetForTest()
		first := &memorySink{}
		second := &memorySink{}

		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "First"}, first)
		logger1 := GetLogger()

		// A second call must be a no-op.
		Initialize(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "Second"}, second)
		logger2 := GetLogger()

		assert.Equal(t, logger1, logger2)
		logger2.Info("test")
		Sync()

		assert.Contains(t, first.String(), "First")
		assert.Empty(t, second.String(), "Second sink should never receive output")
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("should return a fallback logger if not initialized", func(t *testing.T) {
		ResetForTest()
		logger := GetLogger()
		require.NotNil(t, logger)
	})

	t.Run("should return the global logger after initialization", func(t *testing.T) {
		ResetForTest()
		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "GlobalTest"}, &memorySink{})

		logger := GetLogger()
		assert.Equal(t, globalLogger.Load(), logger)
	})
}
