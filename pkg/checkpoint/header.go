package checkpoint

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

const (
	// NumHeaderFields is the number of int32 fields in a checkpoint header.
	NumHeaderFields = 7
	// HeaderSize is the encoded header size in bytes. There is no padding.
	HeaderSize = NumHeaderFields * 4
)

// Header is the checkpoint's model configuration record.
type Header struct {
	Dim        int32 `json:"dim"`        // transformer dimension
	HiddenDim  int32 `json:"hidden_dim"` // ffn hidden dimension
	NumLayers  int32 `json:"n_layers"`
	NumHeads   int32 `json:"n_heads"`    // query heads
	NumKVHeads int32 `json:"n_kv_heads"` // key/value heads
	VocabSize  int32 `json:"vocab_size"`
	SeqLen     int32 `json:"seq_len"` // max sequence length
}

var headerFieldNames = [NumHeaderFields]string{
	"dim", "hidden_dim", "n_layers", "n_heads", "n_kv_heads", "vocab_size", "seq_len",
}

// Fields returns the header values in on-disk order.
func (h Header) Fields() [NumHeaderFields]int32 {
	return [NumHeaderFields]int32{
		h.Dim, h.HiddenDim, h.NumLayers, h.NumHeads, h.NumKVHeads, h.VocabSize, h.SeqLen,
	}
}

// HeaderFromFields builds a Header from values in on-disk order.
func HeaderFromFields(f [NumHeaderFields]int32) Header {
	return Header{
		Dim:        f[0],
		HiddenDim:  f[1],
		NumLayers:  f[2],
		NumHeads:   f[3],
		NumKVHeads: f[4],
		VocabSize:  f[5],
		SeqLen:     f[6],
	}
}

// Swapped returns h with every field byte-reversed.
func (h Header) Swapped() Header {
	f := h.Fields()
	for i := range f {
		f[i] = SwapInt32(f[i])
	}
	return HeaderFromFields(f)
}

// HeadSize is dim / n_heads, or 0 when n_heads is 0.
func (h Header) HeadSize() int64 {
	if h.NumHeads == 0 {
		return 0
	}
	return int64(h.Dim) / int64(h.NumHeads)
}

// DecodeHeader decodes the first HeaderSize bytes of b field by field.
func DecodeHeader(b []byte, order binary.ByteOrder) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrShortHeader
	}
	var f [NumHeaderFields]int32
	for i := range f {
		f[i] = int32(order.Uint32(b[i*4:]))
	}
	return HeaderFromFields(f), nil
}

// Encode writes h into the first HeaderSize bytes of b.
func (h Header) Encode(b []byte, order binary.ByteOrder) error {
	if len(b) < HeaderSize {
		return ErrShortHeader
	}
	for i, v := range h.Fields() {
		order.PutUint32(b[i*4:], uint32(v))
	}
	return nil
}

// ReadHeader reads and decodes exactly one header from r.
func ReadHeader(r io.Reader, order binary.ByteOrder) (Header, error) {
	var raw [HeaderSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return Header{}, fmt.Errorf("read header: %w: %w", ErrShortRead, err)
	}
	return DecodeHeader(raw[:], order)
}

// WriteHeader encodes h in the given order and writes it to w.
func WriteHeader(w io.Writer, h Header, order binary.ByteOrder) error {
	var raw [HeaderSize]byte
	if err := h.Encode(raw[:], order); err != nil {
		return err
	}
	return writeFull(w, raw[:], "header")
}

// String renders the header one field per line.
func (h Header) String() string {
	var sb strings.Builder
	for i, v := range h.Fields() {
		fmt.Fprintf(&sb, "%s: %d\n", headerFieldNames[i], v)
	}
	return sb.String()
}
