package docker

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/easing-playground/internal/apperror"
	"github.com/sakif/easing-playground/internal/model"
)

func TestWorkerCommand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScriptTimeout = 1500 * time.Millisecond

	got := workerCommand(cfg, model.Request{Action: model.ActionProcessSVG, Script: "M0 0 L1 1"})
	assert.Equal(t, []string{
		"/usr/local/bin/easing", "worker",
		"--action", "process-svg",
		"--timeout", "1.5s",
		"--script", "M0 0 L1 1",
	}, got)
}

func TestDecodeReply(t *testing.T) {
	t.Run("result", func(t *testing.T) {
		res, err := decodeReply([]byte(`{"result":{"name":"ease","points":[[0,0],[1,1]],"duration":200}}`+"\n"), nil)
		require.NoError(t, err)
		assert.Equal(t, "ease", res.Name)
		assert.Equal(t, model.LinearData{{Pos: 0, Val: 0}, {Pos: 1, Val: 1}}, res.Points)
		assert.Equal(t, 200.0, res.Duration)
	})

	t.Run("error reply", func(t *testing.T) {
		_, err := decodeReply([]byte(`{"error":{"message":"No global function found.","kind":"NoFunctionFound"}}`), nil)
		assert.ErrorIs(t, err, apperror.ErrNoFunctionFound)
	})

	t.Run("no output", func(t *testing.T) {
		_, err := decodeReply(nil, []byte("exec format error\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrExecution)
		assert.Contains(t, err.Error(), "exec format error")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := decodeReply([]byte("panic: oops"), nil)
		assert.Error(t, err)
	})
}

func TestDockerExecutor(t *testing.T) {
	// Skip in CI environments if docker is not available
	if os.Getenv("CI") != "" || os.Getenv("EASING_DOCKER_TEST") == "" {
		t.Skip("Skipping docker test; set EASING_DOCKER_TEST=1 with the worker image built")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := DefaultConfig()
	// reduce pool size for local test speed
	cfg.PoolSize = 1
	if img := os.Getenv("DOCKER_IMAGE"); img != "" {
		cfg.Image = img
	}

	exec, err := New(cfg, logger)
	require.NoError(t, err, "Should initialize docker executor without error")
	defer exec.Close()

	t.Run("successful execution", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		res, err := exec.Execute(ctx, model.Request{
			Action: model.ActionProcessScript,
			Script: `function easeInQuad(x) { return x * x; }`,
		})
		require.NoError(t, err)
		assert.Equal(t, "ease-in-quad", res.Name)
		assert.Len(t, res.Points, model.Resolution)
	})

	t.Run("infinite loop timeout", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		_, err := exec.Execute(ctx, model.Request{
			Action: model.ActionProcessScript,
			Script: `function spin(x) { while (true) {} }`,
		})
		assert.ErrorIs(t, err, apperror.ErrTimedOut)
	})
}
