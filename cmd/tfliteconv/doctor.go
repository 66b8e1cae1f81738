package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kaoage/tfliteconv/internal/logger"
	"github.com/kaoage/tfliteconv/internal/tfpython"
)

func doctorCmd() *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "Check that Python and TensorFlow are usable for conversion",
		Action: func(ctx context.Context, c *cli.Command) error {
			w := c.Root().Writer
			statusOK(w, fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH))

			source := pythonSource()
			python, err := tfpython.ResolvePython(pythonPath)
			if err != nil {
				statusErr(w, "no python interpreter")
				return cli.Exit(fmt.Sprintf("error: %v", err), exitFailure)
			}

			session := newSession(logger.FromContext(ctx))
			defer func() { _ = session.Close() }()

			v, err := session.Probe(ctx)
			if err != nil {
				statusErr(w, fmt.Sprintf("python at %s (%s)", python, source))
				return cli.Exit(fmt.Sprintf("error: %v", err), exitFailure)
			}
			statusOK(w, fmt.Sprintf("Python %s at %s (%s)", v.Python, python, source))
			statusOK(w, fmt.Sprintf("TensorFlow %s", v.TensorFlow))
			return nil
		},
	}
}

// pythonSource names where the interpreter choice comes from.
func pythonSource() string {
	switch {
	case strings.TrimSpace(pythonPath) != "":
		return "--python"
	case strings.TrimSpace(os.Getenv(tfpython.EnvPython)) != "":
		return tfpython.EnvPython
	default:
		return "PATH"
	}
}

func statusOK(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "  [ok]  %s\n", msg)
}

func statusErr(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "  [x]   %s\n", msg)
}
