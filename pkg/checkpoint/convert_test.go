package checkpoint

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildCheckpoint encodes h and deterministic float payloads in order.
func buildCheckpoint(t *testing.T, h Header, order binary.ByteOrder) []byte {
	t.Helper()

	sections, err := Plan(h)
	require.NoError(t, err)

	out := make([]byte, FileSize(sections))
	require.NoError(t, h.Encode(out, order))
	for _, s := range sections {
		for i := int64(0); i < s.Elements; i++ {
			v := float32(s.Offset) + float32(i)*0.25 - 3
			order.PutUint32(out[s.Offset+4*i:], math.Float32bits(v))
		}
	}
	return out
}

type limitedWriter struct {
	limit int
	buf   bytes.Buffer
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	room := w.limit - w.buf.Len()
	if room <= 0 {
		return 0, errors.New("disk full")
	}
	if len(p) > room {
		w.buf.Write(p[:room])
		return room, errors.New("disk full")
	}
	return w.buf.Write(p)
}

func TestConvertScenarioA(t *testing.T) {
	t.Parallel()

	src := buildCheckpoint(t, scenarioA, LittleEndian)
	var dst bytes.Buffer
	rep, err := Convert(bytes.NewReader(src), &dst, Options{SourceOrder: LittleEndian})
	require.NoError(t, err)

	assert.Equal(t, len(src), dst.Len())
	assert.Equal(t, int64(len(src)), rep.BytesRead)
	assert.Equal(t, rep.BytesRead, rep.BytesWritten)
	assert.Equal(t, scenarioA, rep.Header)
	assert.Equal(t, "little", rep.SourceOrder)
	assert.Equal(t, "big", rep.TargetOrder)
	assert.NotEmpty(t, rep.ID)
	assert.False(t, rep.TrailingSource)

	got, err := DecodeHeader(dst.Bytes(), BigEndian)
	require.NoError(t, err)
	assert.Equal(t, scenarioA, got)

	swappedBack, err := DecodeHeader(dst.Bytes(), LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, scenarioA, swappedBack.Swapped())

	// Every float reads back identically in the target order.
	sections, err := Plan(scenarioA)
	require.NoError(t, err)
	for _, s := range sections {
		for i := int64(0); i < s.Elements; i++ {
			off := s.Offset + 4*i
			assert.Equal(t, LittleEndian.Uint32(src[off:]), BigEndian.Uint32(dst.Bytes()[off:]), "%s[%d]", s.Name, i)
		}
	}
}

func TestConvertRoundTrip(t *testing.T) {
	t.Parallel()

	headers := []Header{
		scenarioA,
		{Dim: 8, HiddenDim: 16, NumLayers: 2, NumHeads: 4, NumKVHeads: 2, VocabSize: 5, SeqLen: 3},
		{Dim: 6, HiddenDim: 12, NumLayers: 3, NumHeads: 3, NumKVHeads: 1, VocabSize: 7, SeqLen: 0},
	}
	for _, h := range headers {
		src := buildCheckpoint(t, h, LittleEndian)

		var be, back bytes.Buffer
		_, err := Convert(bytes.NewReader(src), &be, Options{SourceOrder: LittleEndian})
		require.NoError(t, err)
		_, err = Convert(bytes.NewReader(be.Bytes()), &back, Options{SourceOrder: BigEndian})
		require.NoError(t, err)

		assert.Equal(t, src, back.Bytes(), "%+v", h)
	}
}

func TestConvertBigEndianSource(t *testing.T) {
	t.Parallel()

	be := buildCheckpoint(t, scenarioA, BigEndian)
	le := buildCheckpoint(t, scenarioA, LittleEndian)

	var dst bytes.Buffer
	rep, err := Convert(bytes.NewReader(be), &dst, Options{SourceOrder: BigEndian})
	require.NoError(t, err)
	assert.Equal(t, "little", rep.TargetOrder)
	assert.Equal(t, le, dst.Bytes())
}

func TestConvertPreservesSectionOrder(t *testing.T) {
	t.Parallel()

	var seen []string
	src := buildCheckpoint(t, scenarioA, LittleEndian)
	rep, err := Convert(bytes.NewReader(src), io.Discard, Options{
		OnSection: func(s Section) { seen = append(seen, s.Name) },
	})
	require.NoError(t, err)

	want := make([]string, 0, len(Tensors))
	for _, ts := range Tensors {
		want = append(want, ts.Name)
	}
	assert.Equal(t, want, seen)
	require.Len(t, rep.Sections, len(Tensors))

	// Only one section buffer is live at a time.
	assert.Equal(t, int64(32*4), rep.PeakBuffer)
}

func TestConvertTruncatedAfterHeader(t *testing.T) {
	t.Parallel()

	src := buildCheckpoint(t, scenarioA, LittleEndian)[:HeaderSize]
	var dst bytes.Buffer
	rep, err := Convert(bytes.NewReader(src), &dst, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShortRead)
	assert.ErrorIs(t, err, io.EOF)
	assert.Contains(t, err.Error(), "token_embedding_table")

	// Header only; no tensor bytes reached the destination.
	assert.Equal(t, HeaderSize, dst.Len())
	assert.Empty(t, rep.Sections)
}

func TestConvertTruncatedMidTensor(t *testing.T) {
	t.Parallel()

	full := buildCheckpoint(t, scenarioA, LittleEndian)
	sections, err := Plan(scenarioA)
	require.NoError(t, err)
	cut := sections[3].Offset + 6 // inside wk

	var dst bytes.Buffer
	rep, err := Convert(bytes.NewReader(full[:cut]), &dst, Options{})
	assert.ErrorIs(t, err, ErrShortRead)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "wk")
	assert.Equal(t, int(sections[3].Offset), dst.Len())
	assert.Len(t, rep.Sections, 3)
}

func TestConvertEmptySource(t *testing.T) {
	t.Parallel()

	var dst bytes.Buffer
	_, err := Convert(bytes.NewReader(nil), &dst, Options{})
	assert.ErrorIs(t, err, ErrShortRead)
	assert.Zero(t, dst.Len())
}

func TestConvertShortWrite(t *testing.T) {
	t.Parallel()

	src := buildCheckpoint(t, scenarioA, LittleEndian)
	w := &limitedWriter{limit: HeaderSize + 10}
	_, err := Convert(bytes.NewReader(src), w, Options{})
	assert.ErrorIs(t, err, ErrShortWrite)
	assert.Contains(t, err.Error(), "token_embedding_table")

	w = &limitedWriter{limit: 5}
	_, err = Convert(bytes.NewReader(src), w, Options{})
	assert.ErrorIs(t, err, ErrShortWrite)
	assert.Contains(t, err.Error(), "header")
}

func TestConvertZeroLengthSections(t *testing.T) {
	t.Parallel()

	h := scenarioA
	h.SeqLen = 0
	src := buildCheckpoint(t, h, LittleEndian)

	var dst bytes.Buffer
	rep, err := Convert(bytes.NewReader(src), &dst, Options{})
	require.NoError(t, err)
	assert.Equal(t, len(src), dst.Len())
	require.Len(t, rep.Sections, len(Tensors))
	assert.Zero(t, rep.Sections[12].Bytes)
}

func TestConvertInvalidShapeWritesNothing(t *testing.T) {
	t.Parallel()

	var raw [HeaderSize]byte
	require.NoError(t, Header{Dim: -1, NumHeads: 1}.Encode(raw[:], LittleEndian))

	var dst bytes.Buffer
	_, err := Convert(bytes.NewReader(raw[:]), &dst, Options{})
	assert.ErrorIs(t, err, ErrInvalidShape)
	assert.Zero(t, dst.Len())
}

func TestConvertReportsTrailingSource(t *testing.T) {
	t.Parallel()

	src := append(buildCheckpoint(t, scenarioA, LittleEndian), 0xaa, 0xbb)
	var dst bytes.Buffer
	rep, err := Convert(bytes.NewReader(src), &dst, Options{})
	require.NoError(t, err)
	assert.True(t, rep.TrailingSource)
	assert.Equal(t, len(src)-2, dst.Len())
}

func TestConvertTensorsOnly(t *testing.T) {
	t.Parallel()

	src := buildCheckpoint(t, scenarioA, LittleEndian)
	sections, err := Plan(scenarioA)
	require.NoError(t, err)

	var dst bytes.Buffer
	rep, err := ConvertTensors(bytes.NewReader(src[HeaderSize:]), &dst, sections, Options{RunID: "fixed"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", rep.ID)
	assert.Equal(t, len(src)-HeaderSize, dst.Len())

	want := append([]byte(nil), src[HeaderSize:]...)
	SwapBytes32(want)
	assert.Equal(t, want, dst.Bytes())
}

// hugeHeader satisfies the header invariants but describes ~512 TiB of tensors.
var hugeHeader = Header{Dim: 65536, HiddenDim: 1, NumLayers: 1, NumHeads: 1, NumKVHeads: 1, VocabSize: math.MaxInt32, SeqLen: 1}

func TestConvertOversizedSectionSeekable(t *testing.T) {
	t.Parallel()

	var raw [HeaderSize]byte
	require.NoError(t, hugeHeader.Encode(raw[:], LittleEndian))

	var dst bytes.Buffer
	var rep *Report
	var err error
	require.NotPanics(t, func() {
		rep, err = Convert(bytes.NewReader(raw[:]), &dst, Options{})
	})
	assert.ErrorIs(t, err, ErrShortRead)
	assert.ErrorIs(t, err, io.EOF)
	assert.Contains(t, err.Error(), "token_embedding_table")
	assert.Equal(t, HeaderSize, dst.Len())
	assert.Empty(t, rep.Sections)
}

func TestConvertOversizedSectionStream(t *testing.T) {
	t.Parallel()

	var raw [HeaderSize]byte
	require.NoError(t, hugeHeader.Encode(raw[:], LittleEndian))
	// Hide the Seeker so the size is unknown up front.
	src := struct{ io.Reader }{bytes.NewReader(append(raw[:], make([]byte, 100)...))}

	var dst bytes.Buffer
	var err error
	require.NotPanics(t, func() {
		_, err = Convert(src, &dst, Options{})
	})
	assert.ErrorIs(t, err, ErrShortRead)
	assert.Contains(t, err.Error(), "got 100 of")
	assert.Equal(t, HeaderSize, dst.Len())
}

func TestReadSectionChunkedStream(t *testing.T) {
	t.Parallel()

	data := make([]byte, readChunk+8)
	for i := range data {
		data[i] = byte(i)
	}
	s := Section{Name: "wq", Elements: int64(len(data) / 4), Bytes: int64(len(data))}

	got, err := readSection(struct{ io.Reader }{bytes.NewReader(data)}, s, -1)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = readSection(struct{ io.Reader }{bytes.NewReader(data[:readChunk+3])}, s, -1)
	assert.ErrorIs(t, err, ErrShortRead)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestRemaining(t *testing.T) {
	t.Parallel()

	r := bytes.NewReader(make([]byte, 40))
	_, err := r.Seek(12, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(28), remaining(r))

	// Position is restored.
	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(12), pos)

	assert.Equal(t, int64(-1), remaining(struct{ io.Reader }{r}))
}
