// Package config loads settings from defaults, an optional yaml file,
// VOCAB_* environment variables and command-line flags, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. VOCAB_SERVER_PORT.
const EnvPrefix = "VOCAB"

// Config holds every runtime setting
type Config struct {
	Port             int
	AllowedOrigins   []string
	CSVPath          string
	AudioDir         string
	DatabasePath     string
	LogLevel         string
	TranslateTimeout time.Duration
	OpenAIModel      string
	OpenAIVoice      string
	OpenAISpeed      float64
	AnthropicAPIKey  string
	OpenAIAPIKey     string
}

// flagKeys maps command-line flag names to config keys
var flagKeys = map[string]string{
	"port":         "server.port",
	"csv":          "data.csv_path",
	"audio-dir":    "data.audio_dir",
	"output":       "data.audio_dir",
	"db":           "data.database_path",
	"log-level":    "log.level",
	"openai-model": "audio.openai_model",
	"openai-voice": "audio.openai_voice",
	"openai-speed": "audio.openai_speed",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("data.csv_path", "SingeSheet.csv")
	v.SetDefault("data.audio_dir", "german_audio")
	v.SetDefault("data.database_path", "vocabulary.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("translate.timeout", 10*time.Second)
	v.SetDefault("audio.openai_model", "tts-1")
	v.SetDefault("audio.openai_voice", "alloy")
	v.SetDefault("audio.openai_speed", 1.0)
}

// Load builds the configuration. cfgFile may be empty, in which case
// .vocab.yaml is searched for in the home directory and the working
// directory; a missing file is not an error. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".vocab")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Port:             v.GetInt("server.port"),
		AllowedOrigins:   splitList(v.GetStringSlice("server.allowed_origins")),
		CSVPath:          v.GetString("data.csv_path"),
		AudioDir:         v.GetString("data.audio_dir"),
		DatabasePath:     v.GetString("data.database_path"),
		LogLevel:         v.GetString("log.level"),
		TranslateTimeout: v.GetDuration("translate.timeout"),
		OpenAIModel:      v.GetString("audio.openai_model"),
		OpenAIVoice:      v.GetString("audio.openai_voice"),
		OpenAISpeed:      v.GetFloat64("audio.openai_speed"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList accepts both yaml lists and comma-separated environment values.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if strings.TrimSpace(c.CSVPath) == "" {
		return errors.New("data.csv_path cannot be empty")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return errors.New("data.database_path cannot be empty")
	}
	if c.TranslateTimeout <= 0 {
		return fmt.Errorf("invalid translate timeout %s", c.TranslateTimeout)
	}
	if c.OpenAISpeed < 0.25 || c.OpenAISpeed > 4.0 {
		return fmt.Errorf("openai speed %.2f out of range 0.25-4.0", c.OpenAISpeed)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel converts a level name to a slog.Level
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// NewLogger returns a JSON logger writing to stdout at the configured level
func (c *Config) NewLogger() *slog.Logger {
	level, _ := ParseLevel(c.LogLevel)
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
