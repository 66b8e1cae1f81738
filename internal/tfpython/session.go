// Package tfpython binds the converter to TensorFlow through a Python worker
// process. The worker runs an embedded helper script and answers one JSON
// request per line; model, converter and interpreter objects stay inside the
// worker and are addressed by handle.
package tfpython

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/kaoage/tfliteconv/internal/converter"
	"github.com/kaoage/tfliteconv/internal/logger"
)

const (
	// EnvPython names the interpreter used when no explicit one is configured.
	EnvPython = "TFLITECONV_PYTHON"

	defaultTFLogLevel = "2"
	stderrTailBytes   = 16 << 10
)

// Seams for tests.
var (
	workerCommand = func(ctx context.Context, python string) *exec.Cmd {
		return exec.CommandContext(ctx, python, "-u", "-c", workerScript)
	}
	lookPath = exec.LookPath
)

// Config configures a Session.
type Config struct {
	// Python is the interpreter to run, resolved with ResolvePython.
	Python string
	// TFLogLevel is passed as TF_CPP_MIN_LOG_LEVEL. Empty means "2".
	TFLogLevel string
	// Stderr receives a copy of the worker's stderr. Nil discards it.
	Stderr io.Writer
	Log    logger.Logger
}

// ResolvePython picks the Python interpreter: explicit, then $TFLITECONV_PYTHON,
// then python3 or python on PATH.
func ResolvePython(explicit string) (string, error) {
	for _, candidate := range []string{explicit, os.Getenv(EnvPython)} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		p, err := lookPath(candidate)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrPythonNotFound, candidate, err)
		}
		return p, nil
	}
	for _, name := range []string{"python3", "python"} {
		if p, err := lookPath(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w on PATH; set --python or %s", ErrPythonNotFound, EnvPython)
}

// Session is a converter.Framework backed by one Python worker process. The
// worker is started on the first call, so constructing a Session is free.
// A Session is not safe for concurrent use.
type Session struct {
	cfg Config
	log logger.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	dec    *json.Decoder
	stderr *tailBuffer

	started bool
	closed  bool
	broken  error
	waited  bool
	waitErr error
}

var _ converter.Framework = (*Session)(nil)

func NewSession(cfg Config) *Session {
	log := cfg.Log
	if log == nil {
		log = logger.Discard()
	}
	return &Session{cfg: cfg, log: log.With("component", "tfpython")}
}

func (s *Session) start(ctx context.Context) error {
	switch {
	case s.closed:
		return errSessionClosed
	case s.broken != nil:
		return s.broken
	case s.started:
		return nil
	}

	python, err := ResolvePython(s.cfg.Python)
	if err != nil {
		return s.fail(err)
	}
	level := s.cfg.TFLogLevel
	if level == "" {
		level = defaultTFLogLevel
	}

	cmd := workerCommand(ctx, python)
	env := cmd.Env
	if env == nil {
		env = os.Environ()
	}
	cmd.Env = append(env, "TF_CPP_MIN_LOG_LEVEL="+level, "PYTHONUNBUFFERED=1")
	s.stderr = newTailBuffer(stderrTailBytes, s.cfg.Stderr)
	cmd.Stderr = s.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return s.fail(err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return s.fail(err)
	}
	if err := cmd.Start(); err != nil {
		return s.fail(fmt.Errorf("start python worker %s: %w", python, err))
	}
	s.started = true
	s.cmd = cmd
	s.stdin = stdin
	s.dec = json.NewDecoder(stdout)
	s.log.Debug("started tensorflow worker", "python", python, "pid", cmd.Process.Pid)

	var h hello
	if err := s.dec.Decode(&h); err != nil {
		return s.fail(s.exitError(ctx, "handshake", err))
	}
	if !h.Ready {
		return s.fail(fmt.Errorf("%w with python %s: %v; %s",
			ErrTensorFlowMissing, h.Python, fromWire("import", h.Error), tensorFlowInstallHint))
	}
	s.log.Debug("tensorflow worker ready", "python", h.Python, "tensorflow", h.TensorFlow)
	return nil
}

func (s *Session) call(ctx context.Context, req request) (*response, error) {
	if err := s.start(ctx); err != nil {
		return nil, err
	}
	req.ID = uuid.NewString()

	line, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", req.Op, err)
	}
	if _, err := s.stdin.Write(append(line, '\n')); err != nil {
		return nil, s.fail(s.exitError(ctx, req.Op, err))
	}

	var resp response
	if err := s.dec.Decode(&resp); err != nil {
		return nil, s.fail(s.exitError(ctx, req.Op, err))
	}
	if resp.ID != req.ID {
		return nil, s.fail(fmt.Errorf("%w: %s response id %q does not match request %q",
			ErrProtocol, req.Op, resp.ID, req.ID))
	}
	if !resp.OK {
		return nil, fromWire(req.Op, resp.Error)
	}
	return &resp, nil
}

func (s *Session) fail(err error) error {
	s.broken = err
	return err
}

// wait reaps the worker once. After it returns all of the worker's stderr
// has been copied into the tail buffer.
func (s *Session) wait() error {
	if !s.waited {
		s.waited = true
		s.waitErr = s.cmd.Wait()
	}
	return s.waitErr
}

// exitError describes a broken pipe to the worker, preferring the context
// error when the worker was killed by cancellation. The worker is killed and
// reaped first so the stderr tail is complete.
func (s *Session) exitError(ctx context.Context, op string, cause error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.stdin.Close()
		_ = s.cmd.Process.Kill()
		_ = s.wait()
	}
	tail := "no stderr output"
	if s.stderr != nil {
		if t := s.stderr.String(); t != "" {
			tail = "stderr:\n" + t
		}
	}
	return fmt.Errorf("%w during %s: %v; %s", ErrWorkerExited, op, cause, tail)
}

func newHandle(kind string) string {
	return kind + "-" + uuid.NewString()
}

func (s *Session) LoadModel(ctx context.Context, path string) (converter.Handle, error) {
	h := newHandle("model")
	if _, err := s.call(ctx, request{Op: opLoadModel, Handle: h, Path: path}); err != nil {
		return "", err
	}
	return converter.Handle(h), nil
}

func (s *Session) NewConverter(ctx context.Context, model converter.Handle) (converter.Handle, error) {
	h := newHandle("converter")
	if _, err := s.call(ctx, request{Op: opNewConverter, Handle: h, Target: string(model)}); err != nil {
		return "", err
	}
	return converter.Handle(h), nil
}

func (s *Session) Convert(ctx context.Context, conv converter.Handle, opts converter.ConvertOptions) ([]byte, error) {
	resp, err := s.call(ctx, request{Op: opConvert, Target: string(conv), Quantize: opts.Quantize})
	if err != nil {
		return nil, err
	}
	return resp.Content, nil
}

func (s *Session) LoadInterpreter(ctx context.Context, artifactPath string) (converter.Handle, error) {
	h := newHandle("interpreter")
	if _, err := s.call(ctx, request{Op: opLoadInterpreter, Handle: h, Path: artifactPath}); err != nil {
		return "", err
	}
	return converter.Handle(h), nil
}

func (s *Session) AllocateTensors(ctx context.Context, interp converter.Handle) (*converter.InterpreterInfo, error) {
	resp, err := s.call(ctx, request{Op: opAllocateTensors, Target: string(interp)})
	if err != nil {
		return nil, err
	}
	return &converter.InterpreterInfo{Inputs: resp.Inputs, Outputs: resp.Outputs}, nil
}

// Probe starts the worker if needed and reports its Python and TensorFlow
// versions.
func (s *Session) Probe(ctx context.Context) (Versions, error) {
	resp, err := s.call(ctx, request{Op: opProbe})
	if err != nil {
		return Versions{}, err
	}
	return Versions{Python: resp.Python, TensorFlow: resp.TensorFlow}, nil
}

// Close shuts the worker down by closing its stdin and waits for it to exit.
// Closing a Session that never started is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.started {
		return nil
	}
	_ = s.stdin.Close()
	err := s.wait()
	if err != nil && s.broken == nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w with status %d", ErrWorkerExited, exitErr.ExitCode())
		}
		return err
	}
	return nil
}
