package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/easing-playground/internal/executor/sandbox"
	"github.com/sakif/easing-playground/internal/model"
)

// newWorkerCmd runs one request in one sandbox instance and prints the reply
// as a single JSON line. The docker backend execs it inside its containers.
//
// The exit status is 0 whenever a reply was printed, error replies included;
// the caller reads the outcome from the reply.
func newWorkerCmd() *cobra.Command {
	var (
		action  string
		script  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:    "worker",
		Short:  "Run a single request in a fresh sandbox and print the JSON reply",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout carries the reply, so logs go to stderr and stay quiet.
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

			cfg := sandbox.DefaultConfig()
			cfg.Timeout = timeout
			cfg.PoolSize = 1

			reply, err := sandbox.RunOnce(cmd.Context(), cfg, logger, model.Request{
				Action: model.Action(action),
				Script: script,
			})
			if err != nil {
				return err
			}

			if err := json.NewEncoder(cmd.OutOrStdout()).Encode(reply); err != nil {
				return fmt.Errorf("writing reply: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&action, "action", string(model.ActionProcessScript), "process-script or process-svg")
	cmd.Flags().StringVar(&script, "script", "", "script source or SVG path data")
	cmd.Flags().DurationVar(&timeout, "timeout", sandbox.DefaultConfig().Timeout, "execution budget")
	return cmd
}
