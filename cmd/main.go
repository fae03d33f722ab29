package main

import (
	"context"
	"os"

	"github.com/desertthunder/bandctl/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "bandctl",
		Usage:    "Authorize WHOOP bands and fetch their sleep, cycle, recovery & workout data",
		Version:  "0.3.0",
		Flags:    rootFlags(),
		Before:   runner.Before,
		Action:   runner.Authorize,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
