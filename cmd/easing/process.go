package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/easing-playground/internal/model"
	"github.com/sakif/easing-playground/internal/service"
)

// curveFlags are the pipeline inputs shared by process and watch.
type curveFlags struct {
	svg           bool
	tolerance     float64
	precision     int
	name          string
	idealDuration float64
}

func (c *curveFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&c.svg, "svg", false, "treat the input as SVG path data instead of a script")
	cmd.Flags().Float64VarP(&c.tolerance, "tolerance", "t", 0, "simplification tolerance (default from config)")
	cmd.Flags().IntVar(&c.precision, "precision", 0, "decimal places kept on values (default from config)")
	cmd.Flags().StringVarP(&c.name, "name", "n", "", "custom property name (default derived from the input)")
	cmd.Flags().Float64Var(&c.idealDuration, "duration", 0, "ideal duration in milliseconds (default from the script)")
}

func (c *curveFlags) action() model.Action {
	if c.svg {
		return model.ActionProcessSVG
	}
	return model.ActionProcessScript
}

func newProcessCmd(flags *globalFlags) *cobra.Command {
	curve := &curveFlags{}

	cmd := &cobra.Command{
		Use:   "process [file]",
		Short: "Convert a script or SVG path file to CSS",
		Long: `process reads an easing script (or, with --svg, SVG path data) from file,
or from stdin when file is omitted or "-", and prints the CSS.`,
		Example: `  easing process ease.js
  echo 'M0,0 C0.4,0 0.2,1 1,1' | easing process --svg --name hero`,
		Args: cobra.MaximumNArgs(1),
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

			src, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			// A one-shot run needs exactly one instance.
			cfg.Sandbox.PoolSize = 1
			cfg.Docker.PoolSize = 1
			exec, closer, err := newExecutor(cfg, logger)
			if err != nil {
				return err
			}
			defer closer.Close()

			in := service.ProcessInput{
				Action:    curve.action(),
				Script:    src,
				Tolerance: curve.tolerance,
				Precision: curve.precision,
				Name:      curve.name,
			}
			if cmd.Flags().Changed("duration") {
				in.IdealDuration = &curve.idealDuration
			}

			svc := service.NewEasingService(exec, nil, logger, cfg.ServiceOptions())
			out, err := svc.Process(cmd.Context(), in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, out.Output.Code)

			name := out.Dense.Name
			if curve.name != "" {
				name = curve.name
			}
			okColor.Fprint(cmd.ErrOrStderr(), "✓ ")
			nameColor.Fprint(cmd.ErrOrStderr(), name)
			dimColor.Fprintf(cmd.ErrOrStderr(), " %d of %d points kept\n", len(out.Output.Points), len(out.Dense.Points))
			return nil
		},
	}

	curve.register(cmd)
	return cmd
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}
