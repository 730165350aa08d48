package checkpoint

import (
	"bytes"
	"fmt"
	"io"
	"time"
)

// Verify checks that conv is exactly src converted to the opposite byte
// order: header and every tensor byte-reversed, nothing after the last tensor.
func Verify(src, conv io.Reader, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	start := time.Now()
	rep := &Report{
		ID:          opts.RunID,
		SourceOrder: OrderName(opts.SourceOrder),
		TargetOrder: OrderName(Opposite(opts.SourceOrder)),
	}
	defer func() { rep.Duration = time.Since(start) }()

	var a, b [HeaderSize]byte
	if _, err := io.ReadFull(src, a[:]); err != nil {
		return rep, fmt.Errorf("read source header: %w: %w", ErrShortRead, err)
	}
	if _, err := io.ReadFull(conv, b[:]); err != nil {
		return rep, fmt.Errorf("read converted header: %w: %w", ErrShortRead, err)
	}
	rep.BytesRead += 2 * HeaderSize

	h, err := DecodeHeader(a[:], opts.SourceOrder)
	if err != nil {
		return rep, err
	}
	rep.Header = h
	SwapBytes32(a[:])
	if i := firstMismatch(a[:], b[:]); i >= 0 {
		return rep, fmt.Errorf("%w: header field %s", ErrMismatch, headerFieldNames[i])
	}

	sections, err := Plan(h)
	if err != nil {
		return rep, err
	}

	log := opts.Logger.With("run", opts.RunID)
	srcAvail, convAvail := remaining(src), remaining(conv)
	for _, s := range sections {
		if err := verifySection(src, conv, s, srcAvail, convAvail); err != nil {
			return rep, err
		}
		if srcAvail >= 0 {
			srcAvail -= s.Bytes
		}
		if convAvail >= 0 {
			convAvail -= s.Bytes
		}
		rep.BytesRead += 2 * s.Bytes
		rep.PeakBuffer = max(rep.PeakBuffer, 2*s.Bytes)
		rep.Sections = append(rep.Sections, s)
		log.Debug("section verified", "name", s.Name, "elements", s.Elements)
		if opts.OnSection != nil {
			opts.OnSection(s)
		}
	}

	var probe [1]byte
	if n, _ := conv.Read(probe[:]); n > 0 {
		return rep, ErrTrailingData
	}
	return rep, nil
}

func verifySection(src, conv io.Reader, s Section, srcAvail, convAvail int64) error {
	a, err := readSection(src, s, srcAvail)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	b, err := readSection(conv, s, convAvail)
	if err != nil {
		return fmt.Errorf("converted: %w", err)
	}
	SwapBytes32(a)
	if i := firstMismatch(a, b); i >= 0 {
		return fmt.Errorf("%w: %s element %d", ErrMismatch, s.Name, i)
	}
	return nil
}

// firstMismatch returns the index of the first differing 4-byte element, or -1.
func firstMismatch(a, b []byte) int {
	if bytes.Equal(a, b) {
		return -1
	}
	for i := 0; i+4 <= len(a); i += 4 {
		if !bytes.Equal(a[i:i+4], b[i:i+4]) {
			return i / 4
		}
	}
	return len(a) / 4
}
