package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"punch/internal/client/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root, release := cli.NewRootCommand()
	defer release()
	return root.ExecuteContext(ctx)
}
