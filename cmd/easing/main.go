// Command easing turns easing functions and SVG paths into CSS linear() easings.
//
// MAIN PACKAGE IN GO:
// Every Go program starts execution in the main() function of the "main" package.
// The main package should be kept minimal: it parses the command line and hands
// off to the imported packages (internal/server, internal/service, ...), where
// all the actual logic lives.
//
// WHY cmd/easing/?
// The cmd/ directory is a Go convention for executable entry points. One binary
// serves every role through subcommands:
//
//	easing serve            HTTP API
//	easing process [file]   one-shot conversion to CSS
//	easing watch <file>     re-convert on every save
//	easing worker ...       single sandbox run, used inside containers
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Ctrl+C cancels the context every subcommand runs under.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
