package checkpoint

import (
	"fmt"
	"math"
)

// DType is the element type of a checkpoint section.
type DType uint8

const (
	Int32 DType = iota + 1
	Float32
)

// Size returns the element width in bytes.
func (d DType) Size() int {
	switch d {
	case Int32, Float32:
		return 4
	default:
		return 0
	}
}

// MarshalText renders the dtype name in reports.
func (d DType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d DType) String() string {
	switch d {
	case Int32:
		return "i32"
	case Float32:
		return "f32"
	default:
		return fmt.Sprintf("dtype(%d)", uint8(d))
	}
}

// TensorSpec describes one tensor section. Count reports false when the
// element count cannot be represented.
type TensorSpec struct {
	Name  string
	DType DType
	Count func(h Header) (int64, bool)
}

// Tensors is the fixed on-disk tensor order. Reading and writing must follow
// it exactly.
var Tensors = []TensorSpec{
	{"token_embedding_table", Float32, func(h Header) (int64, bool) { return product(h.VocabSize, h.Dim) }},
	{"rms_att_weight", Float32, func(h Header) (int64, bool) { return product(h.NumLayers, h.Dim) }},
	{"wq", Float32, layerSquare},
	{"wk", Float32, layerSquare},
	{"wv", Float32, layerSquare},
	{"wo", Float32, layerSquare},
	{"rms_ffn_weight", Float32, func(h Header) (int64, bool) { return product(h.NumLayers, h.Dim) }},
	{"w1", Float32, layerFFN},
	{"w2", Float32, layerFFN},
	{"w3", Float32, layerFFN},
	{"rms_final_weight", Float32, func(h Header) (int64, bool) { return product(h.Dim) }},
	{"freq_cis_real", Float32, freqCIS},
	{"freq_cis_imag", Float32, freqCIS},
}

func layerSquare(h Header) (int64, bool) { return product(h.NumLayers, h.Dim, h.Dim) }

func layerFFN(h Header) (int64, bool) { return product(h.NumLayers, h.Dim, h.HiddenDim) }

// freqCIS is seq_len * head_size / 2, evaluated left to right.
func freqCIS(h Header) (int64, bool) {
	if h.NumHeads == 0 {
		return 0, h.SeqLen == 0
	}
	if h.NumHeads < 0 || h.Dim < 0 || h.SeqLen < 0 {
		return 0, false
	}
	n, ok := mul(int64(h.SeqLen), h.HeadSize())
	if !ok {
		return 0, false
	}
	return n / 2, true
}

// product multiplies non-negative factors, reporting false on a negative
// factor or int64 overflow.
func product(factors ...int32) (int64, bool) {
	n := int64(1)
	for _, f := range factors {
		if f < 0 {
			return 0, false
		}
		var ok bool
		if n, ok = mul(n, int64(f)); !ok {
			return 0, false
		}
	}
	return n, true
}

func mul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt64/b {
		return 0, false
	}
	return a * b, true
}

// Section is a tensor placed in a concrete file.
type Section struct {
	Name     string `json:"name"`
	DType    DType  `json:"dtype"`
	Elements int64  `json:"elements"`
	Offset   int64  `json:"offset"`
	Bytes    int64  `json:"bytes"`
}

// Plan evaluates the tensor table against h. Offsets are absolute and start
// right after the header.
func Plan(h Header) ([]Section, error) {
	sections := make([]Section, 0, len(Tensors))
	off := int64(HeaderSize)
	for _, t := range Tensors {
		n, ok := t.Count(h)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidShape, t.Name)
		}
		size := int64(t.DType.Size())
		if n > math.MaxInt/size || off > math.MaxInt64-n*size {
			return nil, fmt.Errorf("%w: %s has %d elements", ErrInvalidShape, t.Name, n)
		}
		sections = append(sections, Section{
			Name:     t.Name,
			DType:    t.DType,
			Elements: n,
			Offset:   off,
			Bytes:    n * size,
		})
		off += n * size
	}
	return sections, nil
}

// FileSize is the size of a checkpoint holding exactly these sections.
func FileSize(sections []Section) int64 {
	if len(sections) == 0 {
		return HeaderSize
	}
	last := sections[len(sections)-1]
	return last.Offset + last.Bytes
}
