// Package checkpoint converts llama2-style model checkpoints between byte orders.
//
// A checkpoint is a fixed 28-byte header of seven int32 fields followed by
// thirteen flat float32 tensors whose element counts are derived from the
// header. Nothing in the stream is length-prefixed: the tensor table in
// layout.go is the file's schema.
package checkpoint

import "encoding/binary"

// Byte orders a checkpoint may be stored in.
var (
	LittleEndian binary.ByteOrder = binary.LittleEndian
	BigEndian    binary.ByteOrder = binary.BigEndian
)

// Opposite returns the byte order a checkpoint stored in o is converted to.
func Opposite(o binary.ByteOrder) binary.ByteOrder {
	if o == BigEndian {
		return LittleEndian
	}
	return BigEndian
}

// OrderName returns "big" or "little".
func OrderName(o binary.ByteOrder) string {
	if o == BigEndian {
		return "big"
	}
	return "little"
}
