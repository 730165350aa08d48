package checkpoint

import (
	"fmt"
	"io"
	"slices"
)

// readChunk bounds each allocation step when the source size is unknown.
const readChunk = 4 << 20

// remaining reports how many bytes r holds past its current position, or -1
// when r cannot seek (pipes, wrapped readers).
func remaining(r io.Reader) int64 {
	s, ok := r.(io.Seeker)
	if !ok {
		return -1
	}
	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return -1
	}
	if _, err := s.Seek(cur, io.SeekStart); err != nil {
		return -1
	}
	return max(end-cur, 0)
}

// readSection reads exactly s.Bytes from r. avail is the known number of
// bytes left in r, or -1. A section larger than avail fails before any
// allocation; with unknown avail the buffer grows only as data arrives.
func readSection(r io.Reader, s Section, avail int64) ([]byte, error) {
	if avail >= 0 && s.Bytes > avail {
		cause := io.ErrUnexpectedEOF
		if avail == 0 {
			cause = io.EOF
		}
		return nil, fmt.Errorf("read %s: need %d bytes, %d available: %w: %w", s.Name, s.Bytes, avail, ErrShortRead, cause)
	}
	if avail >= 0 || s.Bytes <= readChunk {
		buf := make([]byte, s.Bytes)
		if n, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read %s: got %d of %d bytes: %w: %w", s.Name, n, s.Bytes, ErrShortRead, err)
		}
		return buf, nil
	}

	var buf []byte
	for int64(len(buf)) < s.Bytes {
		step := int(min(s.Bytes-int64(len(buf)), readChunk))
		buf = slices.Grow(buf, step)
		n, err := io.ReadFull(r, buf[len(buf):len(buf)+step])
		buf = buf[:len(buf)+n]
		if err != nil {
			return nil, fmt.Errorf("read %s: got %d of %d bytes: %w: %w", s.Name, len(buf), s.Bytes, ErrShortRead, err)
		}
	}
	return buf, nil
}
