// Package tflite reads the top-level table of a TensorFlow Lite flatbuffer.
//
// Only the fields needed to sanity-check a converted artifact are decoded;
// tensors, operators and buffers themselves stay opaque.
package tflite

import (
	"errors"
	"fmt"
	"os"

	flatbuffers "github.com/google/flatbuffers/go"
)

// FileIdentifier is the flatbuffer file identifier of the TFLite schema.
const FileIdentifier = "TFL3"

var (
	ErrTooShort      = errors.New("tflite: buffer too short")
	ErrBadIdentifier = errors.New("tflite: missing TFL3 file identifier")
	ErrMalformed     = errors.New("tflite: malformed model table")
)

// vtable slots of the Model table, see schema.fbs.
const (
	slotVersion       flatbuffers.VOffsetT = 4
	slotOperatorCodes flatbuffers.VOffsetT = 6
	slotSubgraphs     flatbuffers.VOffsetT = 8
	slotDescription   flatbuffers.VOffsetT = 10
	slotBuffers       flatbuffers.VOffsetT = 12
)

// Header summarises the root Model table of a .tflite file.
type Header struct {
	Size          int    `json:"size"`
	Version       uint32 `json:"version"`
	Description   string `json:"description,omitempty"`
	OperatorCodes int    `json:"operator_codes"`
	Subgraphs     int    `json:"subgraphs"`
	Buffers       int    `json:"buffers"`
}

// Parse decodes the model header from buf.
func Parse(buf []byte) (h *Header, err error) {
	if len(buf) < 2*flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooShort, len(buf))
	}
	if string(buf[flatbuffers.SizeUOffsetT:2*flatbuffers.SizeUOffsetT]) != FileIdentifier {
		return nil, ErrBadIdentifier
	}

	root := flatbuffers.GetUOffsetT(buf)
	if int(root)+flatbuffers.SizeSOffsetT > len(buf) {
		return nil, fmt.Errorf("%w: root offset %d out of range", ErrMalformed, root)
	}

	// The flatbuffers accessors index without bounds checks.
	defer func() {
		if r := recover(); r != nil {
			h = nil
			err = fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()

	t := &flatbuffers.Table{Bytes: buf, Pos: root}
	h = &Header{
		Size:          len(buf),
		OperatorCodes: vectorLen(t, slotOperatorCodes),
		Subgraphs:     vectorLen(t, slotSubgraphs),
		Buffers:       vectorLen(t, slotBuffers),
	}
	if o := flatbuffers.UOffsetT(t.Offset(slotVersion)); o != 0 {
		h.Version = t.GetUint32(o + t.Pos)
	}
	if o := flatbuffers.UOffsetT(t.Offset(slotDescription)); o != 0 {
		h.Description = string(t.ByteVector(o + t.Pos))
	}
	return h, nil
}

// ReadFile parses the header of the .tflite file at path.
func ReadFile(path string) (*Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func vectorLen(t *flatbuffers.Table, slot flatbuffers.VOffsetT) int {
	o := flatbuffers.UOffsetT(t.Offset(slot))
	if o == 0 {
		return 0
	}
	return t.VectorLen(o)
}
