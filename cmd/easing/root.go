package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sakif/easing-playground/internal/classify"
	"github.com/sakif/easing-playground/internal/config"
	"github.com/sakif/easing-playground/internal/executor"
	"github.com/sakif/easing-playground/internal/model"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	okColor   = color.New(color.FgGreen)
	dimColor  = color.New(color.Faint)
	nameColor = color.New(color.FgCyan)
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "easing",
		Short: "Convert easing functions and SVG paths into CSS linear() easings",
		Long: `easing samples a JavaScript easing function or an SVG path, simplifies
the curve and prints it as a CSS custom property holding a linear() easing.

Scripts run in a single-use sandbox with an execution budget.`,
		// main prints errors once, in colour.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a YAML config file (default: EASING_CONFIG)")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides LOG_LEVEL)")

	root.AddCommand(
		newServeCmd(flags),
		newProcessCmd(flags),
		newWatchCmd(flags),
		newWorkerCmd(),
	)
	return root
}

// load reads the configuration and builds the logger every subcommand uses.
func (f *globalFlags) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(f.configPath, f.envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if f.logLevel != "" {
		if _, err := config.ParseLevel(f.logLevel); err != nil {
			return nil, nil, err
		}
		cfg.LogLevel = f.logLevel
	}
	return cfg, cfg.NewLogger(), nil
}

// printError writes err the way a script author wants to read it: the
// message, then the location inside their script when one is known.
func printError(w io.Writer, err error) {
	details := wireError(err)

	errColor.Fprint(w, "error: ")
	fmt.Fprintln(w, details.Message)
	if loc := location(details); loc != "" {
		dimColor.Fprintf(w, "  at %s\n", loc)
	}
	if details.Kind != "" {
		dimColor.Fprintf(w, "  (%s)\n", details.Kind)
	}
}

// wireError recovers the error a sandbox posted, or classifies a local one.
func wireError(err error) model.PostMessageError {
	var replyErr *executor.ReplyError
	if errors.As(err, &replyErr) {
		return replyErr.Details
	}
	details := classify.Classify(err)
	if details.Kind == "" {
		details.Message = err.Error()
	}
	return details
}

func location(d model.PostMessageError) string {
	switch {
	case d.FileName != "":
		loc := fmt.Sprintf("%s:%d:%d", d.FileName, d.LineNumber, d.ColumnNumber)
		if d.FunctionName != "" {
			return fmt.Sprintf("%s (%s)", d.FunctionName, loc)
		}
		return loc
	case d.FunctionName != "":
		return d.FunctionName
	}
	return ""
}
