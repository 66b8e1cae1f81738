package tfpython

import (
	_ "embed"

	"github.com/kaoage/tfliteconv/internal/converter"
)

//go:embed worker.py
var workerScript string

// Worker operations.
const (
	opLoadModel       = "load_model"
	opNewConverter    = "new_converter"
	opConvert         = "convert"
	opLoadInterpreter = "load_interpreter"
	opAllocateTensors = "allocate_tensors"
	opProbe           = "probe"
)

// request is one line sent to the worker. Handle names the object a request
// creates; Target names the object it operates on.
type request struct {
	ID       string `json:"id"`
	Op       string `json:"op"`
	Handle   string `json:"handle,omitempty"`
	Target   string `json:"target,omitempty"`
	Path     string `json:"path,omitempty"`
	Quantize bool   `json:"quantize,omitempty"`
}

type wireError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type response struct {
	ID    string     `json:"id"`
	OK    bool       `json:"ok"`
	Error *wireError `json:"error,omitempty"`

	Content []byte                 `json:"content,omitempty"`
	Inputs  []converter.TensorInfo `json:"inputs,omitempty"`
	Outputs []converter.TensorInfo `json:"outputs,omitempty"`

	Python     string `json:"python,omitempty"`
	TensorFlow string `json:"tensorflow,omitempty"`
}

// hello is the first value the worker writes, once TensorFlow is imported
// or failed to import.
type hello struct {
	Ready      bool       `json:"ready"`
	Python     string     `json:"python"`
	TensorFlow string     `json:"tensorflow"`
	Error      *wireError `json:"error,omitempty"`
}

// Versions reports the worker's runtime.
type Versions struct {
	Python     string `json:"python"`
	TensorFlow string `json:"tensorflow"`
}
