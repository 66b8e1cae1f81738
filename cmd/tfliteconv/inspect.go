package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/kaoage/tfliteconv/internal/converter"
	"github.com/kaoage/tfliteconv/internal/tflite"
)

type artifactReport struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	tflite.Header
}

func inspectCmd() *cli.Command {
	var (
		modelPath string
		asJSON    bool
	)

	return &cli.Command{
		Name:  "inspect",
		Usage: "Show the header of a converted .tflite file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "model",
				Aliases:     []string{"m"},
				Usage:       "path to .tflite file",
				Destination: &modelPath,
				Required:    true,
			},
			&cli.BoolFlag{Name: "json", Usage: "print the report as JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			path, err := converter.ResolveInput(modelPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), exitFailure)
			}
			rep, err := inspectArtifact(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), exitFailure)
			}

			w := c.Root().Writer
			if asJSON {
				return writeReportJSON(w, rep)
			}
			printReport(w, rep)
			return nil
		},
	}
}

func inspectArtifact(path string) (*artifactReport, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a .tflite file", path)
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	h, err := tflite.Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	sum := sha256.Sum256(buf)
	return &artifactReport{
		Path:   path,
		SHA256: hex.EncodeToString(sum[:]),
		Header: *h,
	}, nil
}

func writeReportJSON(w io.Writer, rep *artifactReport) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printReport(w io.Writer, rep *artifactReport) {
	_, _ = fmt.Fprintf(w, "TFLite Inspect: %s\n", rep.Path)
	_, _ = fmt.Fprintf(w, "File: %s (%s)\n", filepath.Base(rep.Path), formatBytes(uint64(rep.Size)))

	section(w, "Model")
	row(w, "schema_version", fmt.Sprintf("%d", rep.Version))
	row(w, "description", rep.Description)
	rowInt(w, "subgraphs", rep.Subgraphs)
	rowInt(w, "operator_codes", rep.OperatorCodes)
	rowInt(w, "buffers", rep.Buffers)
	row(w, "sha256", rep.SHA256)
}

func section(w io.Writer, title string) {
	line := "--- " + title + " ---"
	_, _ = fmt.Fprintf(w, "\n%s\n", line)
}

func row(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	_, _ = fmt.Fprintf(w, "%-24s %s\n", label+":", value)
}

func rowInt(w io.Writer, label string, v int) {
	if v == 0 {
		return
	}
	row(w, label, fmt.Sprintf("%d", v))
}

func formatBytes(b uint64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.2f GiB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.2f MiB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.2f KiB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
