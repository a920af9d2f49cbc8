package main

import (
	"context"
	"os"
	"os/signal"

	"pulseboard/internal/cli"
	"pulseboard/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := cli.NewRootCommand(cli.RootOptions{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	})

	err := root.Execute(ctx, os.Args[1:])
	code := cli.NewErrorHandler().
		WithLogger(logging.New(os.Stderr, false)).
		Report(os.Stderr, err)
	stop()
	os.Exit(code)
}
