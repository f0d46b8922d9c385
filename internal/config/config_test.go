package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

// isolate points HOME at an empty directory so no user config is read
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
}

// TestDefaults tests the built-in defaults
func TestDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 8000 {
		t.Errorf("Expected port 8000, got %d", cfg.Port)
	}
	if cfg.CSVPath != "SingeSheet.csv" {
		t.Errorf("Unexpected csv path %q", cfg.CSVPath)
	}
	if cfg.AudioDir != "german_audio" {
		t.Errorf("Unexpected audio dir %q", cfg.AudioDir)
	}
	if cfg.TranslateTimeout != 10*time.Second {
		t.Errorf("Unexpected timeout %s", cfg.TranslateTimeout)
	}
	if !slices.Equal(cfg.AllowedOrigins, []string{"http://localhost:3000", "http://localhost:5173"}) {
		t.Errorf("Unexpected origins %v", cfg.AllowedOrigins)
	}
}

// TestConfigFile tests reading an explicit yaml file
func TestConfigFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "vocab.yaml")
	content := `server:
  port: 9090
  allowed_origins:
    - http://localhost:3000
data:
  csv_path: /srv/words.csv
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Port)
	}
	if cfg.CSVPath != "/srv/words.csv" {
		t.Errorf("Unexpected csv path %q", cfg.CSVPath)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("Unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Unexpected log level %q", cfg.LogLevel)
	}
}

// TestMissingExplicitFile tests that a named config file must exist
func TestMissingExplicitFile(t *testing.T) {
	isolate(t)

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil); err == nil {
		t.Error("Expected error for missing config file")
	}
}

// TestEnvOverrides tests VOCAB_* variables and API keys
func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("VOCAB_SERVER_PORT", "7000")
	t.Setenv("VOCAB_DATA_AUDIO_DIR", "/tmp/audio")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 7000 {
		t.Errorf("Expected port 7000, got %d", cfg.Port)
	}
	if cfg.AudioDir != "/tmp/audio" {
		t.Errorf("Unexpected audio dir %q", cfg.AudioDir)
	}
	if cfg.AnthropicAPIKey != "sk-ant-test" {
		t.Errorf("Expected API key from environment")
	}
}

// TestAllowedOriginsFromEnv tests comma-separated origin lists
func TestAllowedOriginsFromEnv(t *testing.T) {
	tests := map[string][]string{
		"http://a.test,http://b.test":   {"http://a.test", "http://b.test"},
		"http://a.test, http://b.test,": {"http://a.test", "http://b.test"},
		"http://a.test http://b.test":   {"http://a.test", "http://b.test"},
		"*":                             {"*"},
	}

	for env, want := range tests {
		isolate(t)
		t.Setenv("VOCAB_SERVER_ALLOWED_ORIGINS", env)

		cfg, err := Load("", nil)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !slices.Equal(cfg.AllowedOrigins, want) {
			t.Errorf("Origins for %q = %v, want %v", env, cfg.AllowedOrigins, want)
		}
	}
}

// TestFlagOverrides tests that changed flags win over the environment
func TestFlagOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("VOCAB_SERVER_PORT", "7000")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 8000, "")
	flags.String("db", "vocabulary.db", "")
	if err := flags.Parse([]string{"--port", "6000"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 6000 {
		t.Errorf("Expected port 6000, got %d", cfg.Port)
	}
	if cfg.DatabasePath != "vocabulary.db" {
		t.Errorf("Unexpected database path %q", cfg.DatabasePath)
	}
}

// TestValidate tests rejection of out-of-range values
func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:             8000,
			CSVPath:          "a.csv",
			DatabasePath:     "a.db",
			LogLevel:         "info",
			TranslateTimeout: time.Second,
			OpenAISpeed:      1.0,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Zero port", func(c *Config) { c.Port = 0 }},
		{"Port too large", func(c *Config) { c.Port = 70000 }},
		{"Empty csv path", func(c *Config) { c.CSVPath = " " }},
		{"Empty database path", func(c *Config) { c.DatabasePath = "" }},
		{"Zero timeout", func(c *Config) { c.TranslateTimeout = 0 }},
		{"Speed too high", func(c *Config) { c.OpenAISpeed = 5 }},
		{"Unknown log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("Base config should be valid: %v", err)
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

// TestParseLevel tests log level names
func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}

	for name, want := range tests {
		got, err := ParseLevel(name)
		if err != nil {
			t.Errorf("ParseLevel(%q) failed: %v", name, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}
