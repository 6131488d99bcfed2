package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/easing-playground/internal/apperror"
)

// clearEnv makes sure no override leaks in from the test environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "LOG_FORMAT", "CACHE_DSN", "MAX_SCRIPT_LENGTH",
		"SANDBOX_BACKEND", "SANDBOX_TIMEOUT", "SANDBOX_POOL_SIZE", "DOCKER_IMAGE", "EASING_CONFIG",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, BackendEmbedded, cfg.Sandbox.Backend)
	assert.Equal(t, ":memory:", cfg.CacheDSN)

	sb := cfg.SandboxOptions()
	assert.Equal(t, 2*time.Second, sb.Timeout)
	assert.Equal(t, 4, sb.PoolSize)

	dk := cfg.DockerOptions()
	assert.Equal(t, 5*time.Second, dk.Timeout)
	assert.Equal(t, 2*time.Second, dk.ScriptTimeout)
}

func TestLoad_MissingFilesUseDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "nope.yaml"), filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "easing.yaml", `
port: 9090
log_level: debug
default_precision: 2
sandbox:
  backend: docker
  timeout: 500ms
  pool_size: 2
docker:
  image: example/easing:dev
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.DefaultPrecision)
	assert.Equal(t, BackendDocker, cfg.Sandbox.Backend)
	assert.Equal(t, 500*time.Millisecond, cfg.SandboxOptions().Timeout)
	assert.Equal(t, "example/easing:dev", cfg.DockerOptions().Image)
	// Untouched keys keep their defaults.
	assert.Equal(t, Default().Docker.PoolSize, cfg.Docker.PoolSize)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("EASING_CONFIG", writeFile(t, "easing.yaml", "port: 7070\n"))

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "easing.yaml", "port: 9090\nsandbox:\n  pool_size: 2\n")
	t.Setenv("PORT", "3000")
	t.Setenv("SANDBOX_POOL_SIZE", "8")
	t.Setenv("SANDBOX_TIMEOUT", "750ms")
	t.Setenv("MAX_SCRIPT_LENGTH", "1000")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 8, cfg.Sandbox.PoolSize)
	assert.Equal(t, 750*time.Millisecond, cfg.SandboxOptions().Timeout)
	assert.Equal(t, 1000, cfg.ServiceOptions().MaxScriptLength)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	envFile := writeFile(t, ".env", "DOCKER_IMAGE=example/from-dotenv\nLOG_LEVEL=warn\n")
	t.Setenv("LOG_LEVEL", "error")
	t.Cleanup(func() { os.Unsetenv("DOCKER_IMAGE") })

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "example/from-dotenv", cfg.Docker.Image)
	// Variables already in the environment win over the .env file.
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		yaml  string
		field string
	}{
		{name: "port not a number", env: map[string]string{"PORT": "http"}, field: "PORT"},
		{name: "pool size not a number", env: map[string]string{"SANDBOX_POOL_SIZE": "many"}, field: "SANDBOX_POOL_SIZE"},
		{name: "unknown backend", env: map[string]string{"SANDBOX_BACKEND": "wasm"}, field: "sandbox.backend"},
		{name: "bad timeout", env: map[string]string{"SANDBOX_TIMEOUT": "soon"}, field: "sandbox.timeout"},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "loud"}, field: "log_level"},
		{name: "bad log format", yaml: "log_format: xml\n", field: "log_format"},
		{name: "precision too high", yaml: "default_precision: 11\n", field: "default_precision"},
		{name: "empty pool", yaml: "sandbox:\n  pool_size: 0\n", field: "sandbox.pool_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeFile(t, "easing.yaml", tt.yaml)
			}

			_, err := Load(path, "")
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrValidation)

			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "easing.yaml", "port: [1, 2\n"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
