package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/easing-playground/internal/pipeline"
	sqliteRepo "github.com/sakif/easing-playground/internal/repository/sqlite"
	"github.com/sakif/easing-playground/internal/service"
	"github.com/sakif/easing-playground/internal/watch"
)

func newWatchCmd(flags *globalFlags) *cobra.Command {
	curve := &curveFlags{}

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Print fresh CSS every time a script or SVG path file is saved",
		Long: `watch converts file once, then again on every save, until interrupted.
A failing save prints its error and keeps the last good output.

Unchanged content is served from an in-memory cache instead of a new sandbox.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("tolerance") {
				curve.tolerance = cfg.DefaultTolerance
			}
			if !cmd.Flags().Changed("precision") {
				curve.precision = cfg.DefaultPrecision
			}

			exec, closer, err := newExecutor(cfg, logger)
			if err != nil {
				return err
			}
			defer closer.Close()

			cache, err := sqliteRepo.New(":memory:")
			if err != nil {
				return fmt.Errorf("opening cache: %w", err)
			}
			defer cache.Close()

			svc := service.NewEasingService(exec, cache, logger, cfg.ServiceOptions())

			pipe := pipeline.New(pipeline.Options{
				Tolerance: curve.tolerance,
				Precision: curve.precision,
				Name:      curve.name,
			})
			out := cmd.OutOrStdout()
			pipe.Subscribe(func(o pipeline.Output) {
				dimColor.Fprintf(out, "/* %s: %d points */\n", time.Now().Format(time.TimeOnly), len(o.Points))
				fmt.Fprintln(out, o.Code)
			})

			opts := watch.Options{
				Action: curve.action(),
				Name:   curve.name,
				OnError: func(err error) {
					printError(cmd.ErrOrStderr(), err)
				},
			}
			if cmd.Flags().Changed("duration") {
				opts.IdealDuration = &curve.idealDuration
			}
			w := watch.New(args[0], svc.Dense, pipe, opts, logger)

			dimColor.Fprintf(cmd.ErrOrStderr(), "watching %s (Ctrl+C to stop)\n", args[0])
			return w.Run(cmd.Context())
		},
	}

	curve.register(cmd)
	return cmd
}
