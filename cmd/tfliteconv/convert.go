package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kaoage/tfliteconv/internal/converter"
	"github.com/kaoage/tfliteconv/internal/logger"
	"github.com/kaoage/tfliteconv/internal/tfpython"
)

func convertAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Present() {
		return usageError(cmd, "unexpected argument %q", cmd.Args().First())
	}
	if missing := missingRequired(); len(missing) > 0 {
		return usageError(cmd, "required flags %s not set", strings.Join(missing, ", "))
	}

	log := logger.FromContext(ctx)
	session := newSession(log)
	defer func() {
		if err := session.Close(); err != nil {
			log.Debug("tensorflow worker shutdown", "error", err)
		}
	}()

	res, err := converter.New(session, log).Run(ctx, converter.Options{
		Input:      inputPath,
		Output:     outputPath,
		Quantize:   quantize,
		SkipVerify: skipVerify,
	})
	if err != nil {
		return err
	}
	log.Debug("conversion finished",
		"output", res.OutputPath,
		"bytes", res.Bytes,
		"quantized", res.Quantized,
		"verified", res.Verified,
	)
	return nil
}

// missingRequired lists the convert flags that were left empty, in flag order.
func missingRequired() []string {
	var missing []string
	if strings.TrimSpace(inputPath) == "" {
		missing = append(missing, "--input")
	}
	if strings.TrimSpace(outputPath) == "" {
		missing = append(missing, "--output")
	}
	return missing
}

func usageError(cmd *cli.Command, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if usage := cmd.Root().UsageText; usage != "" {
		msg += "\nusage: " + usage
	}
	return cli.Exit("error: "+msg, exitUsage)
}

func newSession(log logger.Logger) *tfpython.Session {
	var stderr io.Writer
	if effectiveLevel() <= slog.LevelDebug {
		stderr = os.Stderr
	}
	return tfpython.NewSession(tfpython.Config{
		Python:     pythonPath,
		TFLogLevel: tfLogLevel,
		Stderr:     stderr,
		Log:        log,
	})
}
