package config

import (
	"flag"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerURL != "http://localhost:5000" {
		t.Errorf("Expected default server URL, got '%s'", cfg.ServerURL)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("Expected 15s timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.Retries != 2 {
		t.Errorf("Expected 2 retries, got %d", cfg.Retries)
	}
	if cfg.SaveBackend != BackendFile || cfg.Frontend != FrontendGUI {
		t.Errorf("Expected file/gui defaults, got %s/%s", cfg.SaveBackend, cfg.Frontend)
	}
	if !cfg.Preload {
		t.Error("Expected preload on by default")
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("MHA_SERVER_URL", "https://game.example:8443")
	t.Setenv("MHA_REQUEST_TIMEOUT", "3s")
	t.Setenv("MHA_SAVE_BACKEND", "sqlite")
	t.Setenv("MHA_LANG", "ja")

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerURL != "https://game.example:8443" {
		t.Errorf("Expected env server URL, got '%s'", cfg.ServerURL)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("Expected 3s, got %s", cfg.RequestTimeout)
	}
	if cfg.SaveBackend != BackendSQLite || cfg.Lang != "ja" {
		t.Errorf("Expected sqlite/ja, got %s/%s", cfg.SaveBackend, cfg.Lang)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("MHA_FRONTEND", "gui")
	t.Setenv("MHA_RETRIES", "5")

	cfg, err := Load(newFlagSet(), []string{"-frontend", "terminal", "-retries", "0"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Frontend != FrontendTerminal {
		t.Errorf("Expected terminal, got '%s'", cfg.Frontend)
	}
	if cfg.Retries != 0 {
		t.Errorf("Expected 0 retries, got %d", cfg.Retries)
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("MHA_RETRIES", "many")
	_, err := Load(newFlagSet(), nil)
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Errorf("Expected parse env prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"relative url", func(c *Config) { c.ServerURL = "localhost:5000" }, "server URL"},
		{"ftp url", func(c *Config) { c.ServerURL = "ftp://x" }, "server URL"},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, "timeout"},
		{"backend", func(c *Config) { c.SaveBackend = "redis" }, "save backend"},
		{"frontend", func(c *Config) { c.Frontend = "web" }, "front end"},
		{"window", func(c *Config) { c.WindowWidth = 100 }, "window"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := Config{LogLevel: "debug"}
	level, err := cfg.SlogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("Expected debug level, got %v (%v)", level, err)
	}
	cfg.LogLevel = "WARN"
	if level, _ := cfg.SlogLevel(); level != slog.LevelWarn {
		t.Errorf("Expected warn level, got %v", level)
	}
}

func TestResolveSavePath(t *testing.T) {
	cfg := Config{SavePath: "/tmp/x", SaveBackend: BackendFile}
	if got, _ := cfg.ResolveSavePath(); got != "/tmp/x" {
		t.Errorf("Expected explicit path, got '%s'", got)
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfg = Config{SaveBackend: BackendSQLite}
	got, err := cfg.ResolveSavePath()
	if err != nil {
		t.Fatalf("ResolveSavePath failed: %v", err)
	}
	if filepath.Base(got) != "save.db" || filepath.Base(filepath.Dir(got)) != "mhaclient" {
		t.Errorf("Expected .../mhaclient/save.db, got '%s'", got)
	}
}
