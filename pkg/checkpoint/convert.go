package checkpoint

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/beswap/internal/logger"
)

// Options controls a conversion.
type Options struct {
	// SourceOrder is the byte order of the input. Defaults to little-endian.
	SourceOrder binary.ByteOrder
	// RunID tags the report and log lines. A random UUID is used when empty.
	RunID string
	// Logger receives per-section debug lines. Defaults to a discarding logger.
	Logger logger.Logger
	// OnSection is called after each section has been written.
	OnSection func(Section)
}

func (o Options) withDefaults() Options {
	if o.SourceOrder == nil {
		o.SourceOrder = LittleEndian
	}
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	if o.Logger == nil {
		o.Logger = logger.Discard()
	}
	return o
}

// Report summarises a finished (or aborted) conversion.
type Report struct {
	ID             string        `json:"id"`
	Header         Header        `json:"header"`
	SourceOrder    string        `json:"source_order"`
	TargetOrder    string        `json:"target_order"`
	Sections       []Section     `json:"sections"`
	BytesRead      int64         `json:"bytes_read"`
	BytesWritten   int64         `json:"bytes_written"`
	PeakBuffer     int64         `json:"peak_buffer_bytes"`
	TrailingSource bool          `json:"trailing_source_data"`
	Duration       time.Duration `json:"duration_ns"`
}

// Convert reads a checkpoint from r and writes it to w with every 4-byte
// element byte-reversed. Tensor sizes are derived from the header as decoded
// in opts.SourceOrder.
//
// The returned report is never nil and reflects the work done up to any
// failure. Bytes already written to w are left as they are.
func Convert(r io.Reader, w io.Writer, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	start := time.Now()
	rep := &Report{
		ID:          opts.RunID,
		SourceOrder: OrderName(opts.SourceOrder),
		TargetOrder: OrderName(Opposite(opts.SourceOrder)),
	}
	defer func() { rep.Duration = time.Since(start) }()

	var raw [HeaderSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return rep, fmt.Errorf("read header: %w: %w", ErrShortRead, err)
	}
	rep.BytesRead += HeaderSize

	h, err := DecodeHeader(raw[:], opts.SourceOrder)
	if err != nil {
		return rep, err
	}
	rep.Header = h

	sections, err := Plan(h)
	if err != nil {
		return rep, err
	}

	if err := WriteHeader(w, h, Opposite(opts.SourceOrder)); err != nil {
		return rep, err
	}
	rep.BytesWritten += HeaderSize

	log := opts.Logger.With("run", opts.RunID)
	if err := convertSections(r, w, sections, opts, log, rep, remaining(r)); err != nil {
		return rep, err
	}

	var probe [1]byte
	if n, _ := r.Read(probe[:]); n > 0 {
		rep.TrailingSource = true
		log.Warn("source has data after the last tensor; it was not copied")
	}
	return rep, nil
}

// ConvertTensors converts the given sections from r to w in order. r and w
// must already be positioned past the header.
func ConvertTensors(r io.Reader, w io.Writer, sections []Section, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	start := time.Now()
	rep := &Report{
		ID:          opts.RunID,
		SourceOrder: OrderName(opts.SourceOrder),
		TargetOrder: OrderName(Opposite(opts.SourceOrder)),
	}
	err := convertSections(r, w, sections, opts, opts.Logger.With("run", opts.RunID), rep, remaining(r))
	rep.Duration = time.Since(start)
	return rep, err
}

// avail is the number of source bytes left, or -1 when unknown.
func convertSections(r io.Reader, w io.Writer, sections []Section, opts Options, log logger.Logger, rep *Report, avail int64) error {
	for _, s := range sections {
		if err := convertSection(r, w, s, avail); err != nil {
			return err
		}
		if avail >= 0 {
			avail -= s.Bytes
		}
		rep.BytesRead += s.Bytes
		rep.BytesWritten += s.Bytes
		rep.PeakBuffer = max(rep.PeakBuffer, s.Bytes)
		rep.Sections = append(rep.Sections, s)

		log.Debug("section converted", "name", s.Name, "elements", s.Elements, "bytes", s.Bytes)
		if opts.OnSection != nil {
			opts.OnSection(s)
		}
	}
	return nil
}

// convertSection owns the only scratch buffer alive during its call.
func convertSection(r io.Reader, w io.Writer, s Section, avail int64) error {
	buf, err := readSection(r, s, avail)
	if err != nil {
		return err
	}
	SwapBytes32(buf)
	return writeFull(w, buf, s.Name)
}

func writeFull(w io.Writer, p []byte, what string) error {
	n, err := w.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return fmt.Errorf("write %s: wrote %d of %d bytes: %w: %w", what, n, len(p), ErrShortWrite, err)
	}
	return nil
}
