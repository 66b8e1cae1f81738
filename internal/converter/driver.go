// Package converter drives a Keras to TensorFlow Lite conversion.
//
// The driver owns the straight-line sequence (resolve, load, convert,
// persist, verify); every step that touches the model graph is delegated to
// a Framework.
package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kaoage/tfliteconv/internal/logger"
	"github.com/kaoage/tfliteconv/internal/tflite"
)

// Options is the configuration of a single conversion.
type Options struct {
	Input      string
	Output     string
	Quantize   bool
	SkipVerify bool
}

// Result describes a finished conversion. A non-nil Result is returned
// whenever the artifact was written, even if verification failed.
type Result struct {
	InputPath  string
	OutputPath string
	Bytes      int
	Quantized  bool

	Header      *tflite.Header
	Interpreter *InterpreterInfo
	Verified    bool
	VerifyErr   error
}

// Driver runs conversions against a Framework.
type Driver struct {
	fw  Framework
	log logger.Logger
}

// New returns a Driver. A nil logger falls back to logger.Default.
func New(fw Framework, log logger.Logger) *Driver {
	if log == nil {
		log = logger.Default()
	}
	return &Driver{fw: fw, log: log}
}

// Run converts opts.Input into opts.Output.
//
// Input resolution happens before any framework call. Load, convert and
// write failures are returned; verification failures are logged as warnings
// and reported through Result.VerifyErr only.
func (d *Driver) Run(ctx context.Context, opts Options) (*Result, error) {
	if d.fw == nil {
		return nil, errors.New("converter: nil framework")
	}
	inPath, err := ResolveInput(opts.Input)
	if err != nil {
		return nil, err
	}
	outPath, err := ResolvePath(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("resolve output: %w", err)
	}

	d.log.Info("loading keras model", "path", inPath)
	model, err := d.fw.LoadModel(ctx, inPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	d.log.Info("building tflite converter")
	conv, err := d.fw.NewConverter(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("build converter: %w", err)
	}

	d.log.Info("converting", "quantize", opts.Quantize)
	data, err := d.fw.Convert(ctx, conv, ConvertOptions{Quantize: opts.Quantize})
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("convert: %w", ErrEmptyArtifact)
	}

	if err := writeArtifact(outPath, data); err != nil {
		return nil, err
	}
	d.log.Info("saved tflite model", "path", outPath, "bytes", len(data))

	res := &Result{
		InputPath:  inPath,
		OutputPath: outPath,
		Bytes:      len(data),
		Quantized:  opts.Quantize,
	}
	if opts.SkipVerify {
		d.log.Debug("verification skipped")
		return res, nil
	}

	if err := d.verify(ctx, res, data); err != nil {
		res.VerifyErr = err
		d.log.Warn("could not initialize tflite interpreter", "err", err)
		return res, nil
	}
	res.Verified = true
	d.log.Info("verified tflite interpreter initialization",
		"inputs", len(res.Interpreter.Inputs), "outputs", len(res.Interpreter.Outputs))
	return res, nil
}

func (d *Driver) verify(ctx context.Context, res *Result, data []byte) error {
	h, err := tflite.Parse(data)
	if err != nil {
		return err
	}
	res.Header = h
	d.log.Debug("artifact header", "version", h.Version, "subgraphs", h.Subgraphs, "buffers", h.Buffers)

	interp, err := d.fw.LoadInterpreter(ctx, res.OutputPath)
	if err != nil {
		return fmt.Errorf("load interpreter: %w", err)
	}
	info, err := d.fw.AllocateTensors(ctx, interp)
	if err != nil {
		return fmt.Errorf("allocate tensors: %w", err)
	}
	if info == nil {
		info = &InterpreterInfo{}
	}
	res.Interpreter = info
	return nil
}

func writeArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}
