package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/easing-playground/internal/config"
	"github.com/sakif/easing-playground/internal/executor"
	"github.com/sakif/easing-playground/internal/executor/docker"
	"github.com/sakif/easing-playground/internal/executor/sandbox"
	"github.com/sakif/easing-playground/internal/handler"
	sqliteRepo "github.com/sakif/easing-playground/internal/repository/sqlite"
	"github.com/sakif/easing-playground/internal/server"
	"github.com/sakif/easing-playground/internal/service"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `serve starts the HTTP API:

  POST /api/process   convert a script or SVG path, JSON in and out
  POST /api/preview   same input, SVG image of the simplified curve
  GET  /healthz       liveness probe

Requests must carry "Origin: null"; others are answered with 204 and never executed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return serve(cmd, cfg, logger)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides PORT)")
	return cmd
}

// serve is the composition root: every dependency of the server is created
// here, and closed here once the server has stopped.
func serve(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	exec, closer, err := newExecutor(cfg, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	cache, err := sqliteRepo.New(cfg.CacheDSN)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer cache.Close()

	svc := service.NewEasingService(exec, cache, logger, cfg.ServiceOptions())

	srv := server.New(server.Config{
		Port: cfg.Port,
		Defaults: handler.Defaults{
			Tolerance: cfg.DefaultTolerance,
			Precision: cfg.DefaultPrecision,
		},
	}, svc, logger)

	logger.Info("easing playground ready",
		slog.String("backend", cfg.Sandbox.Backend),
		slog.String("cache", cfg.CacheDSN),
	)
	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	return srv.Start(cmd.Context())
}

// newExecutor builds the sandbox backend selected by the configuration.
func newExecutor(cfg *config.Config, logger *slog.Logger) (executor.Executor, io.Closer, error) {
	switch cfg.Sandbox.Backend {
	case config.BackendDocker:
		exec, err := docker.New(cfg.DockerOptions(), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("starting docker backend: %w", err)
		}
		return exec, exec, nil
	default:
		exec := sandbox.New(cfg.SandboxOptions(), logger)
		return exec, exec, nil
	}
}
