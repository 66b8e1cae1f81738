package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/kaoage/tfliteconv/internal/version"
)

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			printVersion(cmd.Root().Writer, version.Resolve())
			return nil
		},
	}
}

func printVersion(w io.Writer, info version.Info) {
	_, _ = fmt.Fprintf(w, "version:    %s\n", info.Version)
	if info.Commit != "" {
		_, _ = fmt.Fprintf(w, "commit:     %s\n", info.Commit)
	}
	if info.BuildTime != "" {
		_, _ = fmt.Fprintf(w, "build time: %s\n", info.BuildTime)
	}
	if info.GoVersion != "" {
		_, _ = fmt.Fprintf(w, "go:         %s\n", info.GoVersion)
	}
}
