package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Logger returns the process logger, built on first use from the logging
// level.
func (c *Config) Logger() *slog.Logger {
	c.logOnce.Do(func() {
		if c.logger == nil {
			c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: ParseLevel(c.Logging.Level),
			}))
		}
	})
	return c.logger
}

// SetLogger replaces the process logger. Call it before the first Log.
func (c *Config) SetLogger(l *slog.Logger) {
	c.logger = l
}

// Log writes a formatted info message when level is within the configured
// verbosity. Level 0 is always written.
func (c *Config) Log(level int, format string, args ...interface{}) {
	if level > c.Logging.Verbosity {
		return
	}
	c.Logger().Info(fmt.Sprintf(format, args...), "v", level)
}

// ParseLevel maps a logging level name to a slog.Level. Unknown names are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
