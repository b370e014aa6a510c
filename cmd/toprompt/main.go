package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bethropolis/toprompt/internal/cli"
)

func main() {
	// Interrupts cancel the run; nothing is emitted after cancellation
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.Execute(ctx, os.Args[1:])
	stop()

	if err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
