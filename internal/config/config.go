// Package config loads the settings of the easing playground.
//
// Settings come from three layers, later layers winning:
//
//  1. Default()
//  2. an optional YAML file (--config or EASING_CONFIG)
//  3. environment variables, optionally seeded from a .env file
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sakif/easing-playground/internal/apperror"
	"github.com/sakif/easing-playground/internal/executor/docker"
	"github.com/sakif/easing-playground/internal/executor/sandbox"
	"github.com/sakif/easing-playground/internal/service"
)

// Sandbox backends.
const (
	BackendEmbedded = "embedded"
	BackendDocker   = "docker"
)

// Config is the complete application configuration.
type Config struct {
	Port      int    `yaml:"port"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // text or json

	// CacheDSN is the sqlite data source of the dense result cache.
	CacheDSN     string `yaml:"cache_dsn"`
	CacheEntries int    `yaml:"cache_entries"`

	MaxScriptLength  int     `yaml:"max_script_length"`
	DefaultTolerance float64 `yaml:"default_tolerance"`
	DefaultPrecision int     `yaml:"default_precision"`

	Sandbox SandboxConfig `yaml:"sandbox"`
	Docker  DockerConfig  `yaml:"docker"`
}

// SandboxConfig selects and tunes the executor backend.
type SandboxConfig struct {
	Backend  string `yaml:"backend"`
	Timeout  string `yaml:"timeout"`
	PoolSize int    `yaml:"pool_size"`
}

// DockerConfig tunes the docker backend.
type DockerConfig struct {
	Image       string  `yaml:"image"`
	WorkerPath  string  `yaml:"worker_path"`
	Pull        bool    `yaml:"pull"`
	MemoryLimit int64   `yaml:"memory_limit"`
	CPULimit    float64 `yaml:"cpu_limit"`
	PidsLimit   int64   `yaml:"pids_limit"`
	Timeout     string  `yaml:"timeout"`
	PoolSize    int     `yaml:"pool_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	sb := sandbox.DefaultConfig()
	dk := docker.DefaultConfig()
	return &Config{
		Port:             8080,
		LogLevel:         "info",
		LogFormat:        "text",
		CacheDSN:         ":memory:",
		CacheEntries:     service.DefaultCacheEntries,
		MaxScriptLength:  service.DefaultMaxScriptLength,
		DefaultTolerance: 0.0005,
		DefaultPrecision: 4,
		Sandbox: SandboxConfig{
			Backend:  BackendEmbedded,
			Timeout:  sb.Timeout.String(),
			PoolSize: sb.PoolSize,
		},
		Docker: DockerConfig{
			Image:       dk.Image,
			WorkerPath:  dk.Binary,
			Pull:        dk.Pull,
			MemoryLimit: dk.MemoryLimit,
			CPULimit:    dk.CPULimit,
			PidsLimit:   dk.PidsLimit,
			Timeout:     dk.Timeout.String(),
			PoolSize:    dk.PoolSize,
		},
	}
}

// Load builds the configuration from path and the environment.
//
// A missing YAML file or .env file is not an error: defaults and the
// process environment still apply. envFile never overrides variables that
// are already set.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if path == "" {
		path = os.Getenv("EASING_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return apperror.ValidationFailed("PORT", fmt.Sprintf("invalid PORT value %q", v))
		}
		c.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("CACHE_DSN"); v != "" {
		c.CacheDSN = v
	}
	if v := os.Getenv("MAX_SCRIPT_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperror.ValidationFailed("MAX_SCRIPT_LENGTH", fmt.Sprintf("invalid MAX_SCRIPT_LENGTH value %q", v))
		}
		c.MaxScriptLength = n
	}

	if v := os.Getenv("SANDBOX_BACKEND"); v != "" {
		c.Sandbox.Backend = v
	}
	if v := os.Getenv("SANDBOX_TIMEOUT"); v != "" {
		c.Sandbox.Timeout = v
	}
	if v := os.Getenv("SANDBOX_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperror.ValidationFailed("SANDBOX_POOL_SIZE", fmt.Sprintf("invalid SANDBOX_POOL_SIZE value %q", v))
		}
		c.Sandbox.PoolSize = n
	}

	if v := os.Getenv("DOCKER_IMAGE"); v != "" {
		c.Docker.Image = v
	}
	return nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return apperror.ValidationFailed("port", fmt.Sprintf("port %d out of range", c.Port))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return apperror.ValidationFailed("log_format", fmt.Sprintf("invalid log format %q (valid: text, json)", c.LogFormat))
	}
	if c.Sandbox.Backend != BackendEmbedded && c.Sandbox.Backend != BackendDocker {
		return apperror.ValidationFailed("sandbox.backend",
			fmt.Sprintf("invalid sandbox backend %q (valid: %s, %s)", c.Sandbox.Backend, BackendEmbedded, BackendDocker))
	}
	if _, err := parseDuration("sandbox.timeout", c.Sandbox.Timeout); err != nil {
		return err
	}
	if c.Sandbox.PoolSize < 1 {
		return apperror.ValidationFailed("sandbox.pool_size", "sandbox pool size must be at least 1")
	}
	if _, err := parseDuration("docker.timeout", c.Docker.Timeout); err != nil {
		return err
	}
	if c.Docker.PoolSize < 1 {
		return apperror.ValidationFailed("docker.pool_size", "docker pool size must be at least 1")
	}
	if c.MaxScriptLength < 1 {
		return apperror.ValidationFailed("max_script_length", "max script length must be at least 1")
	}
	if c.DefaultTolerance < 0 {
		return apperror.ValidationFailed("default_tolerance", "default tolerance must be >= 0")
	}
	if c.DefaultPrecision < 0 || c.DefaultPrecision > service.MaxPrecision {
		return apperror.ValidationFailed("default_precision",
			fmt.Sprintf("default precision must be between 0 and %d", service.MaxPrecision))
	}
	return nil
}

// SandboxOptions returns the embedded sandbox configuration.
// Call it on a validated Config.
func (c *Config) SandboxOptions() sandbox.Config {
	cfg := sandbox.DefaultConfig()
	cfg.Timeout, _ = time.ParseDuration(c.Sandbox.Timeout)
	cfg.PoolSize = c.Sandbox.PoolSize
	return cfg
}

// DockerOptions returns the docker backend configuration. The worker inside
// the container gets the sandbox timeout as its script budget.
// Call it on a validated Config.
func (c *Config) DockerOptions() docker.Config {
	cfg := docker.DefaultConfig()
	cfg.Image = c.Docker.Image
	cfg.Binary = c.Docker.WorkerPath
	cfg.Pull = c.Docker.Pull
	cfg.MemoryLimit = c.Docker.MemoryLimit
	cfg.CPULimit = c.Docker.CPULimit
	cfg.PidsLimit = c.Docker.PidsLimit
	cfg.Timeout, _ = time.ParseDuration(c.Docker.Timeout)
	cfg.ScriptTimeout, _ = time.ParseDuration(c.Sandbox.Timeout)
	cfg.PoolSize = c.Docker.PoolSize
	return cfg
}

// ServiceOptions returns the options of the easing service.
func (c *Config) ServiceOptions() service.Options {
	return service.Options{
		MaxScriptLength: c.MaxScriptLength,
		CacheEntries:    c.CacheEntries,
	}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, apperror.ValidationFailed("log_level", fmt.Sprintf("invalid log level %q", s))
	}
	return level, nil
}

// NewLogger builds the application logger described by c.
func (c *Config) NewLogger() *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, apperror.ValidationFailed(field, fmt.Sprintf("invalid duration %q", s))
	}
	if d < 0 {
		return 0, apperror.ValidationFailed(field, fmt.Sprintf("duration %q must not be negative", s))
	}
	return d, nil
}
