package converter

import "context"

// Handle names an object living inside the framework (a loaded model, a
// converter or an interpreter). Handles are opaque to the driver.
type Handle string

// ConvertOptions controls a single conversion.
type ConvertOptions struct {
	// Quantize requests the converter's default size/latency optimisation.
	// Without a representative dataset only dynamic-range weight
	// quantization is available.
	Quantize bool `json:"quantize"`
}

// TensorInfo describes an interpreter input or output.
type TensorInfo struct {
	Name  string  `json:"name"`
	Shape []int64 `json:"shape"`
	DType string  `json:"dtype"`
}

// InterpreterInfo is reported once an interpreter has allocated its tensors.
type InterpreterInfo struct {
	Inputs  []TensorInfo `json:"inputs"`
	Outputs []TensorInfo `json:"outputs"`
}

// ModelLoader deserialises a trained model without its training-only state.
type ModelLoader interface {
	LoadModel(ctx context.Context, path string) (Handle, error)
}

// ModelConverter lowers a loaded model into TFLite flatbuffer bytes.
type ModelConverter interface {
	NewConverter(ctx context.Context, model Handle) (Handle, error)
	Convert(ctx context.Context, converter Handle, opts ConvertOptions) ([]byte, error)
}

// Interpreter loads a converted artifact and allocates its execution buffers.
type Interpreter interface {
	LoadInterpreter(ctx context.Context, artifactPath string) (Handle, error)
	AllocateTensors(ctx context.Context, interpreter Handle) (*InterpreterInfo, error)
}

// Framework is the external machine-learning framework the driver delegates to.
type Framework interface {
	ModelLoader
	ModelConverter
	Interpreter
}
