// Package config loads the optional turing.yaml file shared by the CLI commands.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// FileNames are tried in order when no explicit path is given.
var FileNames = []string{"turing.yaml", "turing.yml", "turing.json"}

// Config holds the settings read from the config file. Zero values mean "use the default".
type Config struct {
	ProgramsDir string           `mapstructure:"programs_dir"`
	StepLimit   int              `mapstructure:"step_limit"`
	LogLevel    string           `mapstructure:"log_level"`
	LogFile     string           `mapstructure:"log_file"`
	Window      WindowConfig     `mapstructure:"window"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Encryption  EncryptionConfig `mapstructure:"encryption"`
	HTTP        HTTPConfig       `mapstructure:"http"`
	Metrics     MetricsConfig    `mapstructure:"metrics"`
}

// WindowConfig is the number of cells shown on each side of the head.
type WindowConfig struct {
	Left  int `mapstructure:"left"`
	Right int `mapstructure:"right"`
}

// RedisConfig selects the Redis session store. An empty Addr keeps sessions in memory.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// EncryptionConfig enables AES-256 encryption of stored sessions. Keys are base64
// encoded; fallback keys are only used to open sessions sealed before a rotation.
type EncryptionConfig struct {
	Key          string   `mapstructure:"key"`
	FallbackKeys []string `mapstructure:"fallback_keys"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		StepLimit: 1_000_000,
		LogLevel:  "warn",
		Window:    WindowConfig{Left: 10, Right: 10},
		HTTP:      HTTPConfig{Addr: ":8080"},
		Metrics:   MetricsConfig{Enabled: true},
	}
}

// Load reads path over the defaults. An empty path searches FileNames in the working
// directory; finding none is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		found, err := Find(".")
		if err != nil {
			return cfg, err
		}
		if found == "" {
			return cfg, nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Find returns the first of FileNames present in dir, or "" when there is none.
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		candidate := filepath.Join(dir, name)
		_, err := os.Stat(candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", nil
}

// Decode merges YAML (or JSON) data into cfg. Scalars are weakly typed, so "42" is a
// valid step limit and durations may be written as "10m".
func Decode(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}
