// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, caches, orchestrates
//	Executor / Repository    → runs untrusted code / stores dense results
//
// The CLI calls the same service as the HTTP handlers, so every rule below
// (size limits, precision range, caching) applies to both.
//
// DEPENDENCY INJECTION:
// EasingService takes an executor.Executor and a repository.ResultCache
// (interfaces), NOT a *sandbox.Executor or *sqlite.DB. Tests pass fakes, and
// main.go picks the embedded or the docker backend.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/sakif/easing-playground/internal/apperror"
	"github.com/sakif/easing-playground/internal/executor"
	"github.com/sakif/easing-playground/internal/model"
	"github.com/sakif/easing-playground/internal/pipeline"
	"github.com/sakif/easing-playground/internal/repository"
)

// Validation constants.
const (
	MaxPrecision           = 10
	DefaultMaxScriptLength = 100000 // ~100KB of script
	DefaultCacheEntries    = 512
	// MaxNameLength keeps "  --<name>-easing: linear(" well inside 80 columns.
	MaxNameLength = 48
)

// validName matches names that can stand in a CSS custom property.
var validName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ProcessInput is everything a caller supplies for one curve.
type ProcessInput struct {
	Action    model.Action
	Script    string
	Tolerance float64
	Precision int
	// Name overrides the name derived from the script.
	Name string
	// IdealDuration overrides the script's duration hint, in milliseconds.
	IdealDuration *float64
}

// ProcessOutput is the dense result together with its formatted form.
type ProcessOutput struct {
	Dense  *model.ProcessResult
	Output pipeline.Output
	// Cached is true when Dense came from the cache instead of a sandbox.
	Cached bool
}

// Options tune an EasingService.
type Options struct {
	MaxScriptLength int
	// CacheEntries is how many dense results the cache keeps; 0 keeps all.
	CacheEntries int
}

// EasingService turns scripts and SVG paths into CSS easing code.
type EasingService struct {
	exec   executor.Executor
	cache  repository.ResultCache
	logger *slog.Logger
	opts   Options
}

// NewEasingService creates a new EasingService. cache may be nil.
func NewEasingService(exec executor.Executor, cache repository.ResultCache, logger *slog.Logger, opts Options) *EasingService {
	if opts.MaxScriptLength <= 0 {
		opts.MaxScriptLength = DefaultMaxScriptLength
	}
	return &EasingService{
		exec:   exec,
		cache:  cache,
		logger: logger,
		opts:   opts,
	}
}

// Process validates in, obtains the dense curve and runs the pipeline on it.
func (s *EasingService) Process(ctx context.Context, in ProcessInput) (*ProcessOutput, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	dense, cached, err := s.Dense(ctx, model.Request{Action: in.Action, Script: in.Script})
	if err != nil {
		return nil, err
	}

	opts := pipeline.Options{
		Tolerance:     in.Tolerance,
		Precision:     in.Precision,
		Name:          dense.Name,
		IdealDuration: dense.Duration,
	}
	if in.Name != "" {
		opts.Name = in.Name
	}
	if in.IdealDuration != nil {
		opts.IdealDuration = *in.IdealDuration
	}

	return &ProcessOutput{
		Dense:  dense,
		Output: pipeline.Run(dense.Points, opts),
		Cached: cached,
	}, nil
}

// Dense returns the dense result of req, from the cache when possible.
// Only successful results are cached, and cache failures never fail the
// request.
func (s *EasingService) Dense(ctx context.Context, req model.Request) (*model.ProcessResult, bool, error) {
	key := repository.Key(req)

	if s.cache != nil {
		result, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			s.logger.Debug("dense result served from cache", slog.String("key", key[:12]))
			return result, true, nil
		case !errors.Is(err, apperror.ErrNotFound):
			s.logger.Warn("cache lookup failed", slog.String("error", err.Error()))
		}
	}

	result, err := s.exec.Execute(ctx, req)
	if err != nil {
		s.logger.Info("execution rejected",
			slog.String("action", string(req.Action)),
			slog.String("kind", apperror.Kind(err)),
			slog.String("error", err.Error()),
		)
		return nil, false, fmt.Errorf("executing %s: %w", req.Action, err)
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, req.Action, result); err != nil {
			s.logger.Warn("cache store failed", slog.String("error", err.Error()))
		} else if s.opts.CacheEntries > 0 {
			if n, err := s.cache.Prune(ctx, s.opts.CacheEntries); err != nil {
				s.logger.Warn("cache prune failed", slog.String("error", err.Error()))
			} else if n > 0 {
				s.logger.Debug("cache pruned", slog.Int64("removed", n))
			}
		}
	}

	s.logger.Info("curve sampled",
		slog.String("action", string(req.Action)),
		slog.String("name", result.Name),
		slog.Int("points", len(result.Points)),
	)
	return result, false, nil
}

func (s *EasingService) validate(in ProcessInput) error {
	if !in.Action.Valid() {
		return apperror.ValidationFailed("action",
			fmt.Sprintf("action must be %q or %q", model.ActionProcessScript, model.ActionProcessSVG))
	}
	if strings.TrimSpace(in.Script) == "" {
		return apperror.ValidationFailed("script", "script is required")
	}
	if len(in.Script) > s.opts.MaxScriptLength {
		return apperror.ValidationFailed("script",
			fmt.Sprintf("script must be %d characters or less", s.opts.MaxScriptLength))
	}
	if math.IsNaN(in.Tolerance) || math.IsInf(in.Tolerance, 0) || in.Tolerance < 0 {
		return apperror.ValidationFailed("tolerance", "tolerance must be a finite number >= 0")
	}
	if in.Precision < 0 || in.Precision > MaxPrecision {
		return apperror.ValidationFailed("precision",
			fmt.Sprintf("precision must be between 0 and %d", MaxPrecision))
	}
	if in.Name != "" && !validName.MatchString(in.Name) {
		return apperror.ValidationFailed("name", "name may only contain letters, digits, '-' and '_'")
	}
	if len(in.Name) > MaxNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}
	if d := in.IdealDuration; d != nil && (math.IsNaN(*d) || math.IsInf(*d, 0) || *d < 0) {
		return apperror.ValidationFailed("idealDuration", "idealDuration must be a finite number >= 0")
	}
	return nil
}
