package sandbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/easing-playground/internal/apperror"
)

// Pool keeps a number of pre-warmed instances ready. Each instance is handed
// out once and never returned.
type Pool struct {
	config    Config
	logger    *slog.Logger
	instances chan *Instance
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewPool initializes a new instance pool wrapper.
func NewPool(cfg Config, logger *slog.Logger) *Pool {
	size := max(cfg.PoolSize, 1)
	return &Pool{
		config:    cfg,
		logger:    logger,
		instances: make(chan *Instance, size),
		done:      make(chan struct{}),
	}
}

// Start begins filling the pool with fresh instances in the background.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting sandbox pool manager", slog.Int("poolSize", cap(p.instances)))
		p.wg.Add(1)
		go p.manager()
	})
}

// Stop shuts down the manager and discards all pre-warmed instances.
// It is safe to call more than once.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("shutting down sandbox pool")
		close(p.done)
		p.wg.Wait()

		for {
			select {
			case <-p.instances:
			default:
				return
			}
		}
	})
}

// GetInstance returns an unused instance from the pool.
// It blocks until one is available or the context is canceled.
func (p *Pool) GetInstance(ctx context.Context) (*Instance, error) {
	select {
	case in := <-p.instances:
		return in, nil
	case <-p.done:
		return nil, apperror.Cancelled(errPoolStopped)
	case <-ctx.Done():
		return nil, apperror.Cancelled(context.Cause(ctx))
	}
}

// manager keeps the pool at capacity. Sends block while the pool is full.
func (p *Pool) manager() {
	defer p.wg.Done()

	for {
		in, err := NewInstance(p.config, p.logger)
		if err != nil {
			p.logger.Error("failed to create pre-warmed instance", slog.String("error", err.Error()))
			select {
			case <-time.After(time.Second): // backoff on failure
				continue
			case <-p.done:
				return
			}
		}

		select {
		case p.instances <- in:
		case <-p.done:
			return
		}
	}
}
