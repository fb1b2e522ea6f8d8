// Package config handles configuration loading from CLI flags, environment variables, and TOML files.
package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration settings for the catalog server.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Catalog CatalogConfig `toml:"catalog"`
	Logging LoggingConfig `toml:"logging"`

	// Args holds positional arguments left after flag parsing (CLI only).
	Args []string `toml:"-"`

	logOnce sync.Once
	logger  *slog.Logger
}

// ServerConfig holds server-related settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	Dir  string `toml:"-"` // Base directory for config/ (CLI only, not in config file)
}

// CatalogConfig holds widget catalog settings.
type CatalogConfig struct {
	Manifest string   `toml:"manifest"` // TOML, Lua or HCL manifest; empty = built-in catalog
	Watch    bool     `toml:"watch"`    // Hot-load new widgets from the manifest
	Late     bool     `toml:"late"`     // Accept registrations after startup (implied by Watch)
	Debounce Duration `toml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level     string `toml:"level"`     // "debug", "info", "warn", "error"
	Verbosity int    `toml:"verbosity"` // 0=lifecycle, 1=registrations, 2=requests, 3=file events
}

// verbosityCounter implements flag.Value for counting -v flags.
type verbosityCounter int

func (v *verbosityCounter) String() string {
	return fmt.Sprintf("%d", *v)
}

func (v *verbosityCounter) Set(string) error {
	*v++
	return nil
}

func (v *verbosityCounter) IsBoolFlag() bool {
	return true
}

// expandVerbosityFlags preprocesses args to expand -vvv into -v -v -v.
func expandVerbosityFlags(args []string) []string {
	result := make([]string, 0, len(args))
	for _, arg := range args {
		if len(arg) > 2 && arg[0] == '-' && arg[1] == 'v' && strings.Trim(arg[1:], "v") == "" {
			for range arg[1:] {
				result = append(result, "-v")
			}
			continue
		}
		result = append(result, arg)
	}
	return result
}

// Duration is a time.Duration that can be unmarshaled from TOML strings.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String returns the duration as a string.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// DefaultConfig returns a Config with all default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Catalog: CatalogConfig{
			Debounce: Duration(100 * time.Millisecond),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from CLI flags, environment variables, and TOML file.
// Priority: CLI flags > env vars > TOML file > defaults
func Load(args []string) (*Config, error) {
	cfg := DefaultConfig()

	args = expandVerbosityFlags(args)

	fs := flag.NewFlagSet("n4games", flag.ContinueOnError)
	dir := fs.String("dir", "", "Base directory containing config/config.toml")

	host := fs.String("host", "", "HTTP listen address")
	port := fs.Int("port", 0, "HTTP listen port")

	manifest := fs.String("manifest", "", "Widget manifest (.toml, .lua or .hcl)")
	watch := fs.Bool("watch", false, "Hot-load widgets added to the manifest")
	late := fs.Bool("late", false, "Accept registrations after startup")
	debounce := fs.Duration("debounce", 0, "Manifest reload debounce delay")

	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	var verbosity verbosityCounter
	fs.Var(&verbosity, "v", "Verbosity level (use -v, -vv, or -vvv)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	configPath := "config/config.toml"
	if *dir != "" {
		configPath = *dir + "/config/config.toml"
	}
	if err := cfg.loadTOML(configPath); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyEnv()

	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *manifest != "" {
		cfg.Catalog.Manifest = *manifest
	}
	if *watch {
		cfg.Catalog.Watch = true
	}
	if *late {
		cfg.Catalog.Late = true
	}
	if *debounce != 0 {
		cfg.Catalog.Debounce = Duration(*debounce)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if verbosity > 0 {
		cfg.Logging.Verbosity = int(verbosity)
	}

	cfg.Server.Dir = *dir
	cfg.Args = fs.Args()

	return cfg, nil
}

// loadTOML loads configuration from a TOML file.
func (c *Config) loadTOML(path string) error {
	_, err := toml.DecodeFile(path, c)
	return err
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("N4GAMES_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("N4GAMES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("N4GAMES_MANIFEST"); v != "" {
		c.Catalog.Manifest = v
	}
	if v := os.Getenv("N4GAMES_WATCH"); v != "" {
		c.Catalog.Watch = v == "true" || v == "1"
	}
	if v := os.Getenv("N4GAMES_LATE"); v != "" {
		c.Catalog.Late = v == "true" || v == "1"
	}
	if v := os.Getenv("N4GAMES_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Catalog.Debounce = Duration(d)
		}
	}
	if v := os.Getenv("N4GAMES_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("N4GAMES_VERBOSITY"); v != "" {
		if verbosity, err := strconv.Atoi(v); err == nil {
			c.Logging.Verbosity = verbosity
		}
	}
}

// Verbosity returns the configured verbosity level.
func (c *Config) Verbosity() int {
	return c.Logging.Verbosity
}

// LateRegistration reports whether the registry must accept registrations
// after startup.
func (c *Config) LateRegistration() bool {
	return c.Catalog.Late || c.Catalog.Watch
}
