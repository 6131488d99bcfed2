// Package docker runs each request through the easing worker inside a
// pre-warmed, network-less container.
package docker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/sakif/easing-playground/internal/apperror"
	"github.com/sakif/easing-playground/internal/executor"
	"github.com/sakif/easing-playground/internal/model"
)

// Executor implements the executor.Executor interface using Docker.
type Executor struct {
	cli    *client.Client
	config Config
	logger *slog.Logger
	pool   *Pool
}

var _ executor.Executor = (*Executor)(nil)

// New creates a new Docker Executor and initializes the connection.
func New(cfg Config, logger *slog.Logger) (*Executor, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	if cfg.Pull {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		logger.Info("ensuring docker image is available", slog.String("image", cfg.Image))
		reader, err := cli.ImagePull(ctx, cfg.Image, image.PullOptions{})
		if err != nil {
			cli.Close()
			return nil, fmt.Errorf("failed to pull image: %w", err)
		}
		// Read everything to block until the pull is complete
		_, _ = io.Copy(io.Discard, reader)
		reader.Close()
		logger.Info("docker image is ready")
	}

	exec := &Executor{
		cli:    cli,
		config: cfg,
		logger: logger,
	}

	exec.pool = NewPool(cli, cfg, logger)
	exec.pool.Start()

	return exec, nil
}

// Close shuts down the executor pool and docker client.
func (e *Executor) Close() error {
	e.pool.Stop()
	return e.cli.Close()
}

// Execute runs req through the easing worker in a pre-warmed container.
func (e *Executor) Execute(ctx context.Context, req model.Request) (*model.ProcessResult, error) {
	if !req.Action.Valid() {
		return nil, apperror.ValidationFailed("action", "unknown action "+string(req.Action))
	}
	start := time.Now()

	containerID, err := e.pool.GetContainer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container from pool: %w", err)
	}

	// Containers are single-use.
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := e.cli.ContainerRemove(cleanupCtx, containerID, container.RemoveOptions{
			Force: true,
		})
		if err != nil {
			e.logger.Error("failed to remove container", slog.String("id", containerID), slog.String("error", err.Error()))
		}
	}()

	executeCtx, executeCancel := context.WithTimeout(ctx, e.config.Timeout)
	defer executeCancel()

	execResp, err := e.cli.ContainerExecCreate(executeCtx, containerID, container.ExecOptions{
		AttachStdout: true,
		AttachStderr: true,
		Cmd:          workerCommand(e.config, req),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create exec: %w", err)
	}

	attachResp, err := e.cli.ContainerExecAttach(executeCtx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to attach to exec: %w", err)
	}
	defer attachResp.Close()

	var stdout, stderr bytes.Buffer
	done := make(chan struct{})
	go func() {
		// Use stdcopy to demultiplex stdout from stderr
		_, _ = stdcopy.StdCopy(&stdout, &stderr, attachResp.Reader)
		close(done)
	}()

	select {
	case <-done:
	case <-executeCtx.Done():
		// Closing the hijacked connection unblocks StdCopy.
		attachResp.Close()
		<-done
		if ctx.Err() != nil {
			return nil, apperror.Cancelled(context.Cause(ctx))
		}
		return nil, apperror.TimedOut(fmt.Sprintf("Execution timed out after %s", e.config.Timeout), "")
	}

	e.logger.Debug("docker execution finished",
		slog.String("container", containerID),
		slog.Duration("took", time.Since(start)),
	)
	return decodeReply(stdout.Bytes(), stderr.Bytes())
}

// workerCommand is the exec command line for req.
func workerCommand(cfg Config, req model.Request) []string {
	return []string{
		cfg.Binary, "worker",
		"--action", string(req.Action),
		"--timeout", cfg.ScriptTimeout.String(),
		"--script", req.Script,
	}
}

// decodeReply parses the single JSON reply the worker prints on stdout.
func decodeReply(stdout, stderr []byte) (*model.ProcessResult, error) {
	out := bytes.TrimSpace(stdout)
	if len(out) == 0 {
		return nil, apperror.Execution(
			fmt.Sprintf("worker produced no reply: %s", strings.TrimSpace(string(stderr))), "")
	}

	var reply model.Reply
	if err := json.Unmarshal(out, &reply); err != nil {
		return nil, fmt.Errorf("decoding worker reply: %w", err)
	}
	return executor.ResultFromReply(reply)
}
