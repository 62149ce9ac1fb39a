package logger

import (
	"log/slog"
	"os"
)

// EnvTestLevel sets the level of NewTestLogger, e.g. TEST_LOG_LEVEL=debug.
const EnvTestLevel = "TEST_LOG_LEVEL"

// NewTestLogger creates a logger for tests. It logs warnings and errors
// only, unless EnvTestLevel says otherwise or TEST_DEBUG is set.
func NewTestLogger() *slog.Logger {
	level := ParseLevel(os.Getenv(EnvTestLevel), slog.LevelWarn)
	if os.Getenv("TEST_DEBUG") != "" {
		level = slog.LevelDebug
	}

	return NewLogger(Config{Level: level, Format: "text", Output: os.Stdout})
}
