package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

const (
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(exitFailure)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "tfliteconv",
		Usage:     "Convert a Keras model to TensorFlow Lite",
		UsageText: "tfliteconv --input models/age_regression_source.h5 --output models/age_regression.tflite [--quantize]",
		Flags:     append(convertFlags(), append(globalFlags(), loggingFlags()...)...),
		Before:    setup,
		Action:    convertAction,
		Commands: []*cli.Command{
			inspectCmd(),
			doctorCmd(),
			versionCmd(),
		},
	}
}
