// Package watch re-runs a script or SVG path every time its file changes
// and pushes the result through a pipeline.Pipeline.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/sakif/easing-playground/internal/model"
	"github.com/sakif/easing-playground/internal/pipeline"
)

// DenseFunc produces the dense result of a request. service.EasingService.Dense
// satisfies it.
type DenseFunc func(ctx context.Context, req model.Request) (*model.ProcessResult, bool, error)

// Options configure a Watcher.
type Options struct {
	Action model.Action
	// Name, when set, replaces the name derived from the file's contents.
	Name string
	// IdealDuration, when set, replaces the file's duration hint.
	IdealDuration *float64
	// OnError is called with every failed reload. The watcher keeps going.
	OnError func(error)
}

// Watcher feeds the contents of one file to a pipeline.
type Watcher struct {
	path   string
	dense  DenseFunc
	pipe   *pipeline.Pipeline
	opts   Options
	logger *slog.Logger
}

// New creates a Watcher for path.
func New(path string, dense DenseFunc, pipe *pipeline.Pipeline, opts Options, logger *slog.Logger) *Watcher {
	if opts.OnError == nil {
		opts.OnError = func(error) {}
	}
	return &Watcher{
		path:   filepath.Clean(path),
		dense:  dense,
		pipe:   pipe,
		opts:   opts,
		logger: logger.With(slog.String("file", path)),
	}
}

// Reload reads the file once and pushes its result into the pipeline. On
// failure the pipeline keeps its previous output.
func (w *Watcher) Reload(ctx context.Context) error {
	src, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", w.path, err)
	}

	result, cached, err := w.dense(ctx, model.Request{Action: w.opts.Action, Script: string(src)})
	if err != nil {
		return err
	}

	r := *result
	if w.opts.Name != "" {
		r.Name = w.opts.Name
	}
	if w.opts.IdealDuration != nil {
		r.Duration = *w.opts.IdealDuration
	}
	w.pipe.SetResult(&r)
	w.logger.Debug("reloaded", slog.Bool("cached", cached), slog.Int("points", len(r.Points)))
	return nil
}

// Run reloads once, then again after every write to the file, until ctx is
// done.
//
// The parent directory is watched rather than the file itself: editors that
// save by writing a temporary file and renaming it over the original would
// otherwise silently end the watch.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	w.reload(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			// Coalesce the burst of events a single save usually produces.
			drain(watcher.Events)
			w.reload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	if err := w.Reload(ctx); err != nil {
		w.logger.Debug("reload failed", slog.String("error", err.Error()))
		w.opts.OnError(err)
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func drain(events <-chan fsnotify.Event) {
	for {
		select {
		case <-events:
		default:
			return
		}
	}
}
