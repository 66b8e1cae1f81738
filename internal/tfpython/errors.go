package tfpython

import (
	"errors"
	"fmt"
)

var (
	ErrPythonNotFound    = errors.New("python interpreter not found")
	ErrTensorFlowMissing = errors.New("tensorflow is not importable")
	ErrWorkerExited      = errors.New("tensorflow worker exited")
	ErrProtocol          = errors.New("tensorflow worker protocol error")
	errSessionClosed     = errors.New("tensorflow session closed")
)

const tensorFlowInstallHint = "install it with: pip install tensorflow-cpu"

// Error is an exception raised inside the framework. Its text is the
// framework's own exception type and message.
type Error struct {
	Op      string
	Type    string
	Message string
}

func (e *Error) Error() string {
	if e.Type == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func fromWire(op string, w *wireError) *Error {
	if w == nil {
		return &Error{Op: op, Message: "unknown worker error"}
	}
	return &Error{Op: op, Type: w.Type, Message: w.Message}
}
