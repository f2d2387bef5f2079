package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/asynkron/gopatch/internal/cli"
)

// main applies a unified diff using the gopatch CLI.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
