package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kaoage/tfliteconv/internal/logger"
)

// setup runs before every command: it folds the config file into unset flags
// and installs the logger on the context.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), exitUsage)
	}
	applyConfig(cmd.Root(), cfg)

	log := logger.New(os.Stderr, logger.Options{
		Level:  effectiveLevel(),
		Format: logger.ParseFormat(logFormat),
	})
	return logger.WithContext(ctx, log), nil
}

func effectiveLevel() slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return logger.ParseLevel(logLevel)
}
