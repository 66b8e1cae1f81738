package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/urfave/cli/v3"

	"github.com/kaoage/tfliteconv/internal/converter"
	"github.com/kaoage/tfliteconv/internal/tflite"
)

type appResult struct {
	stdout string
	code   int
	err    error
}

func resetFlagVars(t *testing.T) {
	t.Helper()
	reset := func() {
		inputPath, outputPath = "", ""
		quantize, skipVerify = false, false
		pythonPath, tfLogLevel, configFile = "", "", ""
		logLevel, logFormat, debug = "", "", false
	}
	reset()
	t.Cleanup(reset)
}

// runApp runs the CLI in-process with an isolated config directory.
func runApp(t *testing.T, args ...string) appResult {
	t.Helper()
	resetFlagVars(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv(envConfig, "")
	_ = os.Unsetenv(envConfig)

	var stdout, stderr bytes.Buffer
	res := appResult{}
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(_ context.Context, _ *cli.Command, err error) {
		var ec cli.ExitCoder
		if errors.As(err, &ec) {
			res.code = ec.ExitCode()
		}
	}
	res.err = app.Run(context.Background(), append([]string{"tfliteconv", "--log-format", "text"}, args...))
	res.stdout = stdout.String()
	return res
}

func writeModel(t *testing.T, dir string) string {
	t.Helper()
	b := flatbuffers.NewBuilder(0)
	desc := b.CreateString("MLIR Converted.")
	b.StartObject(0)
	sub := b.EndObject()
	b.StartVector(flatbuffers.SizeUOffsetT, 1, flatbuffers.SizeUOffsetT)
	b.PrependUOffsetT(sub)
	subs := b.EndVector(1)
	b.StartObject(5)
	b.PrependUint32Slot(0, 3, 0)
	b.PrependUOffsetTSlot(2, subs, 0)
	b.PrependUOffsetTSlot(3, desc, 0)
	root := b.EndObject()
	b.FinishWithFileIdentifier(root, []byte(tflite.FileIdentifier))

	dir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "age_regression.tflite")
	if err := os.WriteFile(path, b.FinishedBytes(), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return path
}

func TestConvertRequiresInputAndOutput(t *testing.T) {
	t.Run("both missing", func(t *testing.T) {
		res := runApp(t)
		if res.code != exitUsage {
			t.Fatalf("exit code: got %d want %d", res.code, exitUsage)
		}
		if res.err == nil || !strings.Contains(res.err.Error(), "--input, --output") {
			t.Fatalf("unexpected error: %v", res.err)
		}
	})

	t.Run("output missing", func(t *testing.T) {
		res := runApp(t, "--input", "models/age.h5")
		if res.code != exitUsage {
			t.Fatalf("exit code: got %d want %d", res.code, exitUsage)
		}
		if res.err == nil || !strings.Contains(res.err.Error(), "required flags --output not set") {
			t.Fatalf("only --output should be reported, got: %v", res.err)
		}
	})

	t.Run("stray positional argument", func(t *testing.T) {
		res := runApp(t, "models/age.h5")
		if res.code != exitUsage {
			t.Fatalf("exit code: got %d want %d", res.code, exitUsage)
		}
	})
}

func TestConvertMissingInputStopsBeforeTensorFlow(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out", "age.tflite")

	// An unusable interpreter proves no worker is started.
	res := runApp(t,
		"--python", filepath.Join(dir, "no-such-python"),
		"--input", filepath.Join(dir, "missing.h5"),
		"--output", out,
	)
	if !errors.Is(res.err, converter.ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", res.err)
	}
	if !strings.Contains(res.err.Error(), filepath.Join(dir, "missing.h5")) {
		t.Fatalf("error should name the resolved path: %v", res.err)
	}
	if _, err := os.Stat(filepath.Dir(out)); !os.IsNotExist(err) {
		t.Fatalf("output directory should not be created, stat err: %v", err)
	}
}

func TestMissingRequired(t *testing.T) {
	resetFlagVars(t)
	if got := strings.Join(missingRequired(), ","); got != "--input,--output" {
		t.Fatalf("got %q", got)
	}
	inputPath, outputPath = "a.h5", "  "
	if got := strings.Join(missingRequired(), ","); got != "--output" {
		t.Fatalf("got %q", got)
	}
	outputPath = "a.tflite"
	if got := missingRequired(); len(got) != 0 {
		t.Fatalf("expected nothing missing, got %v", got)
	}
}

func TestInspectCommand(t *testing.T) {
	path := writeModel(t, t.TempDir())

	res := runApp(t, "inspect", "--model", path)
	if res.err != nil {
		t.Fatalf("inspect failed: %v", res.err)
	}
	for _, want := range []string{"TFLite Inspect: " + path, "schema_version:", "MLIR Converted.", "subgraphs:"} {
		if !strings.Contains(res.stdout, want) {
			t.Fatalf("output missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestInspectCommandJSON(t *testing.T) {
	path := writeModel(t, t.TempDir())

	res := runApp(t, "inspect", "--model", path, "--json")
	if res.err != nil {
		t.Fatalf("inspect failed: %v", res.err)
	}
	var got struct {
		Path      string `json:"path"`
		SHA256    string `json:"sha256"`
		Version   uint32 `json:"version"`
		Subgraphs int    `json:"subgraphs"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &got); err != nil {
		t.Fatalf("decode report: %v\n%s", err, res.stdout)
	}
	if got.Path != path || got.Version != 3 || got.Subgraphs != 1 || len(got.SHA256) != 64 {
		t.Fatalf("unexpected report: %+v", got)
	}
}

func TestInspectRejectsNonTFLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "age.h5")
	if err := os.WriteFile(path, []byte("\x89HDF\r\n\x1a\n not tflite"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := runApp(t, "inspect", "--model", path)
	if res.code != exitFailure {
		t.Fatalf("exit code: got %d want %d", res.code, exitFailure)
	}
	if res.err == nil || !strings.Contains(res.err.Error(), "TFL3") {
		t.Fatalf("unexpected error: %v", res.err)
	}
}

func TestVersionCommand(t *testing.T) {
	res := runApp(t, "version")
	if res.err != nil {
		t.Fatalf("version failed: %v", res.err)
	}
	if !strings.HasPrefix(res.stdout, "version:") {
		t.Fatalf("unexpected output: %q", res.stdout)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[uint64]string{
		512:             "512 B",
		2048:            "2.00 KiB",
		5 << 20:         "5.00 MiB",
		3<<30 + 512<<20: "3.50 GiB",
	}
	for in, want := range cases {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
