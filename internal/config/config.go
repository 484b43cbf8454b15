// Package config loads client settings from the environment and lets
// command-line flags override them.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Save backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Front ends.
const (
	FrontendGUI      = "gui"
	FrontendTerminal = "terminal"
)

// Config holds every client setting.
type Config struct {
	ServerURL      string        `env:"MHA_SERVER_URL" envDefault:"http://localhost:5000"`
	RequestTimeout time.Duration `env:"MHA_REQUEST_TIMEOUT" envDefault:"15s"`
	Retries        uint          `env:"MHA_RETRIES" envDefault:"2"`
	SaveBackend    string        `env:"MHA_SAVE_BACKEND" envDefault:"file"`
	SavePath       string        `env:"MHA_SAVE_PATH"`
	AssetPack      string        `env:"MHA_ASSET_PACK"`
	Frontend       string        `env:"MHA_FRONTEND" envDefault:"gui"`
	WindowWidth    int           `env:"MHA_WINDOW_WIDTH" envDefault:"1280"`
	WindowHeight   int           `env:"MHA_WINDOW_HEIGHT" envDefault:"800"`
	Lang           string        `env:"MHA_LANG"`
	LogLevel       string        `env:"MHA_LOG_LEVEL" envDefault:"info"`
	Preload        bool          `env:"MHA_PRELOAD" envDefault:"true"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target *Config) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// BindFlags registers flags whose defaults are the current field values, so
// flags parsed after ParseEnv override the environment.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ServerURL, "server", c.ServerURL, "game server base URL")
	fs.DurationVar(&c.RequestTimeout, "timeout", c.RequestTimeout, "per-request timeout")
	fs.UintVar(&c.Retries, "retries", c.Retries, "extra attempts after a transport failure")
	fs.StringVar(&c.SaveBackend, "save-backend", c.SaveBackend, "save store: file, sqlite or memory")
	fs.StringVar(&c.SavePath, "save-path", c.SavePath, "save directory (file) or database path (sqlite)")
	fs.StringVar(&c.AssetPack, "asset-pack", c.AssetPack, "YAML asset pack replacing the built-in one")
	fs.StringVar(&c.Frontend, "frontend", c.Frontend, "front end: gui or terminal")
	fs.IntVar(&c.WindowWidth, "width", c.WindowWidth, "window width in pixels")
	fs.IntVar(&c.WindowHeight, "height", c.WindowHeight, "window height in pixels")
	fs.StringVar(&c.Lang, "lang", c.Lang, "interface language (en, ja)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	fs.BoolVar(&c.Preload, "preload", c.Preload, "warm the image cache at startup")
}

// Load reads the environment, then args, and validates the result.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values that the parsers cannot.
func (c Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("server URL %q must be an absolute http(s) URL", c.ServerURL))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout))
	}
	switch c.SaveBackend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown save backend %q", c.SaveBackend))
	}
	switch c.Frontend {
	case FrontendGUI, FrontendTerminal:
	default:
		errs = append(errs, fmt.Errorf("unknown front end %q", c.Frontend))
	}
	if c.WindowWidth < 640 || c.WindowHeight < 480 {
		errs = append(errs, fmt.Errorf("window must be at least 640x480, got %dx%d", c.WindowWidth, c.WindowHeight))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel converts LogLevel for slog.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// ResolveSavePath returns SavePath, or a location under the user config
// directory when it is empty.
func (c Config) ResolveSavePath() (string, error) {
	if c.SavePath != "" {
		return c.SavePath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("no save path configured: %w", err)
	}
	base := filepath.Join(dir, "mhaclient")
	if c.SaveBackend == BackendSQLite {
		return filepath.Join(base, "save.db"), nil
	}
	return filepath.Join(base, "saves"), nil
}
