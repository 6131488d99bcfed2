package sandbox

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sakif/easing-playground/internal/apperror"
	"github.com/sakif/easing-playground/internal/executor"
	"github.com/sakif/easing-playground/internal/model"
)

var errPoolStopped = errors.New("sandbox pool stopped")

// Executor runs each request in its own pre-warmed instance.
type Executor struct {
	pool   *Pool
	logger *slog.Logger
}

var _ executor.Executor = (*Executor)(nil)

// New creates an Executor and starts its pool.
func New(cfg Config, logger *slog.Logger) *Executor {
	pool := NewPool(cfg, logger)
	pool.Start()
	return &Executor{pool: pool, logger: logger}
}

// Close stops the pool.
func (e *Executor) Close() error {
	e.pool.Stop()
	return nil
}

// Execute implements executor.Executor.
func (e *Executor) Execute(ctx context.Context, req model.Request) (*model.ProcessResult, error) {
	if !req.Action.Valid() {
		return nil, apperror.ValidationFailed("action", "unknown action "+string(req.Action))
	}

	in, err := e.pool.GetInstance(ctx)
	if err != nil {
		return nil, err
	}

	reply, err := exchange(ctx, in, req)
	if err != nil {
		return nil, err
	}
	return executor.ResultFromReply(reply)
}

// RunOnce handles req on a fresh instance and returns the reply it posted.
// It is what the worker subcommand runs inside a container.
func RunOnce(ctx context.Context, cfg Config, logger *slog.Logger, req model.Request) (model.Reply, error) {
	if !req.Action.Valid() {
		return model.Reply{}, apperror.ValidationFailed("action", "unknown action "+string(req.Action))
	}

	in, err := NewInstance(cfg, logger)
	if err != nil {
		return model.Reply{}, err
	}
	return exchange(ctx, in, req)
}

// exchange posts req to in from the sentinel origin and waits for the reply.
func exchange(ctx context.Context, in *Instance, req model.Request) (model.Reply, error) {
	port := NewPort()
	// Handle has already logged and posted any failure.
	_ = in.Handle(ctx, model.SentinelOrigin, req, port)
	return port.Receive(ctx)
}
