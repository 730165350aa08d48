package checkpoint

import "math"

// Swap32 reverses the four bytes of v.
func Swap32(v uint32) uint32 {
	return (v&0x000000ff)<<24 | (v&0x0000ff00)<<8 | (v&0x00ff0000)>>8 | (v&0xff000000)>>24
}

// SwapInt32 reverses the byte order of a signed 32-bit value.
func SwapInt32(v int32) int32 {
	return int32(Swap32(uint32(v)))
}

// SwapFloat32 reverses the byte order of a float's bit pattern. The result is
// generally not a meaningful number on the current host; it is the float as
// the other byte order would store it.
func SwapFloat32(f float32) float32 {
	return math.Float32frombits(Swap32(math.Float32bits(f)))
}

// SwapBytes32 reverses every 4-byte group of p in place.
// len(p) must be a multiple of 4; a trailing partial group is left untouched.
func SwapBytes32(p []byte) {
	for i := 0; i+4 <= len(p); i += 4 {
		p[i], p[i+1], p[i+2], p[i+3] = p[i+3], p[i+2], p[i+1], p[i]
	}
}
