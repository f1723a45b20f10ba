package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/boundary-layer-viewer/internal/cli"
)

// Set via -ldflags at build time.
var (
	version string
	commit  string
	date    string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.SetVersion(version, commit, date)
	err := cli.Execute(ctx)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		cancel()
		os.Exit(130) // Standard shell convention for SIGINT
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	cancel()
	os.Exit(cli.ExitCode(err))
}
