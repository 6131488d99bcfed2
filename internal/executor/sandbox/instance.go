// Package sandbox runs untrusted easing scripts and SVG path data in
// single-use, in-process JavaScript realms.
package sandbox

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/easing-playground/internal/abortable"
	"github.com/sakif/easing-playground/internal/apperror"
	"github.com/sakif/easing-playground/internal/classify"
	"github.com/sakif/easing-playground/internal/model"
)

// Instance is a single-use sandbox. The first accepted request consumes it;
// every later one is answered with an AlreadyUsed error.
type Instance struct {
	id     string
	cfg    Config
	logger *slog.Logger
	realm  *realm

	used       atomic.Bool
	executions atomic.Int64
}

// NewInstance creates an instance with a fresh realm.
func NewInstance(cfg Config, logger *slog.Logger) (*Instance, error) {
	r, err := newRealm()
	if err != nil {
		return nil, err
	}
	id := xid.New().String()
	return &Instance{
		id:     id,
		cfg:    cfg,
		logger: logger.With(slog.String("instance", id)),
		realm:  r,
	}, nil
}

func (in *Instance) ID() string {
	return in.id
}

// Executions returns how many times user code was evaluated. It never
// exceeds one.
func (in *Instance) Executions() int64 {
	return in.executions.Load()
}

// Handle processes req and posts exactly one reply on port, unless the
// request is dropped. Requests from any origin other than
// model.SentinelOrigin and requests with an unknown action are dropped
// without touching port or the used latch.
//
// A failed execution is posted as a classified error and also returned so
// the host can log it.
func (in *Instance) Handle(ctx context.Context, origin string, req model.Request, port classify.Poster) error {
	if origin != model.SentinelOrigin {
		in.logger.Debug("dropping request from foreign origin", slog.String("origin", origin))
		return nil
	}
	if !req.Action.Valid() {
		in.logger.Debug("dropping malformed request", slog.String("action", string(req.Action)))
		return nil
	}
	if !in.used.CompareAndSwap(false, true) {
		in.logger.Warn("rejecting request on used instance")
		return classify.Fail(port, apperror.AlreadyUsed())
	}

	start := time.Now()
	result, err := in.run(ctx, req)
	if err != nil {
		in.logger.Error("sandbox execution failed",
			slog.String("action", string(req.Action)),
			slog.String("kind", apperror.Kind(err)),
			slog.String("error", err.Error()),
		)
		return classify.Fail(port, err)
	}

	in.logger.Debug("sandbox execution finished",
		slog.String("action", string(req.Action)),
		slog.String("name", result.Name),
		slog.Duration("took", time.Since(start)),
	)
	port.Post(model.Reply{Result: result})
	return nil
}

func (in *Instance) run(ctx context.Context, req model.Request) (*model.ProcessResult, error) {
	return abortable.Do(ctx, func(onAbort func(func())) (*model.ProcessResult, error) {
		if req.Action == model.ActionProcessSVG {
			return SampleSVG(req.Script)
		}

		vm := in.realm.vm
		onAbort(func() { vm.Interrupt(interruptCancelled) })
		if in.cfg.Timeout > 0 {
			budget := time.AfterFunc(in.cfg.Timeout, func() { vm.Interrupt(interruptBudget) })
			defer budget.Stop()
		}
		return in.processScript(req.Script)
	})
}
