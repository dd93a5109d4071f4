// Package config resolves quantiz settings from defaults, an optional YAML
// file, a .env file and QUANTIZ_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/quantiz/internal/api"
)

// DefaultBaseURL is the trainer backend used when nothing else is set.
const DefaultBaseURL = "http://localhost:8000"

// Config holds all client configuration.
type Config struct {
	API   APIConfig   `yaml:"api"`
	Retry RetryConfig `yaml:"retry"`
	Store StoreConfig `yaml:"store"`
	Log   LogConfig   `yaml:"log"`
}

// APIConfig configures the remote trainer backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"` // per request. Default: 10s.
}

// RetryConfig configures retries of idempotent reads.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// StoreConfig locates the credential database. An empty Path uses
// store.DefaultDBPath.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LogConfig configures the log file. An empty File uses
// logging.DefaultLogPath.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"` // debug, info, warn, error. Default: info.
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	r := api.DefaultRetryConfig()
	return Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: 10 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts: r.MaxAttempts,
			InitialWait: r.InitialWait,
			MaxWait:     r.MaxWait,
			Multiplier:  r.Multiplier,
		},
		Log: LogConfig{Level: "info"},
	}
}

// APIRetry converts the retry settings for the api package.
func (c Config) APIRetry() api.RetryConfig {
	return api.RetryConfig{
		MaxAttempts: c.Retry.MaxAttempts,
		InitialWait: c.Retry.InitialWait,
		MaxWait:     c.Retry.MaxWait,
		Multiplier:  c.Retry.Multiplier,
	}
}

// Load builds a Config from defaults, the YAML file at path, a .env file in
// the working directory and the environment, in increasing priority. An
// empty path uses DefaultConfigPath, which may be absent; an explicit path
// must exist.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/quantiz/config.yaml, falling
// back to ~/.config. It returns "" when no home directory is known.
func DefaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "quantiz", "config.yaml")
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if u := os.Getenv("QUANTIZ_API_URL"); u != "" {
		c.API.BaseURL = u
	}
	if t := os.Getenv("QUANTIZ_API_TIMEOUT"); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return fmt.Errorf("QUANTIZ_API_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}
	if a := os.Getenv("QUANTIZ_RETRY_ATTEMPTS"); a != "" {
		n, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("QUANTIZ_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.MaxAttempts = n
	}
	if p := os.Getenv("QUANTIZ_DB"); p != "" {
		c.Store.Path = p
	}
	if f := os.Getenv("QUANTIZ_LOG_FILE"); f != "" {
		c.Log.File = f
	}
	if l := os.Getenv("QUANTIZ_LOG_LEVEL"); l != "" {
		c.Log.Level = l
	}
	return nil
}

// Validate checks the settings needed to talk to the backend.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api base URL is required (set QUANTIZ_API_URL or --api)")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api base URL must be http(s)://host, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got %s", c.API.Timeout)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
