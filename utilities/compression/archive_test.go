package compression_test

import (
	"bytes"
	"testing"

	"github.com/dargueta/gbdi"
	dt "github.com/dargueta/gbdi/testing"
	c "github.com/dargueta/gbdi/utilities/compression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type archiveTestData struct {
	Name     string
	Segments []gbdi.Segment
}

func TestArchiveRoundTrip(t *testing.T) {
	testData := []archiveTestData{
		{"empty", nil},
		{"zeros", []gbdi.Segment{{Address: 0x1000, Data: make([]byte, 100)}}},
		{"random", dt.CreateRandomSegments(t, 1, 0, 333, 4096)},
		{"counting", []gbdi.Segment{dt.CreateCountingSegment(0x2000, 77, 3, 500)}},
	}

	for _, data := range testData {
		t.Run(
			data.Name,
			func(t *testing.T) {
				runArchiveRoundTripTestCase(t, data.Segments)
			},
		)
	}
}

func runArchiveRoundTripTestCase(t *testing.T, segments []gbdi.Segment) {
	result, err := c.Compress(segments, c.DefaultOptions())
	require.NoError(t, err, "unexpected error while compressing")

	archiveBuffer := bytes.Buffer{}
	n, err := c.WriteArchive(&archiveBuffer, c.NewArchive(result))
	require.NoError(t, err, "unexpected error while writing archive")
	assert.EqualValues(t, archiveBuffer.Len(), n, "returned archive size is wrong")
	t.Logf("archive size: %d bytes for %d stream bytes", n, len(result.Stream))

	archive, err := c.ReadArchive(bytes.NewReader(archiveBuffer.Bytes()))
	require.NoError(t, err, "unexpected error while reading archive")
	assert.Equal(t, result.Bases, archive.Bases)
	assert.Equal(t, result.Stream, archive.Stream)

	expanded, err := archive.Expand()
	require.NoError(t, err, "unexpected error while expanding archive")
	require.Len(t, expanded, len(segments))
	for i := range segments {
		assert.Equalf(t, segments[i].Address, expanded[i].Address, "segment %d address", i)
		assert.Equalf(t, segments[i].Data, expanded[i].Data, "segment %d data", i)
	}
}

func TestReadArchive__BadMagic(t *testing.T) {
	_, err := c.ReadArchive(bytes.NewReader([]byte("ELF\x7f\x01\x00\x00\x00")))
	assert.ErrorIs(t, err, gbdi.ErrInvalidFormat)
}

func TestReadArchive__BadVersion(t *testing.T) {
	_, err := c.ReadArchive(bytes.NewReader([]byte("GBDI\x09\x00\x00\x00")))
	assert.ErrorIs(t, err, gbdi.ErrInvalidFormat)
}

func TestReadArchive__TruncatedHeader(t *testing.T) {
	_, err := c.ReadArchive(bytes.NewReader([]byte("GB")))
	assert.ErrorIs(t, err, gbdi.ErrInvalidFormat)

	// One base promised, none present.
	_, err = c.ReadArchive(bytes.NewReader([]byte("GBDI\x01\x01")))
	assert.ErrorIs(t, err, gbdi.ErrMalformedVarint)
}

func TestReadArchive__TruncatedStream(t *testing.T) {
	result, err := c.Compress(
		[]gbdi.Segment{{Data: make([]byte, 64)}}, c.DefaultOptions())
	require.NoError(t, err)

	archiveBuffer := bytes.Buffer{}
	_, err = c.WriteArchive(&archiveBuffer, c.NewArchive(result))
	require.NoError(t, err)

	truncated := archiveBuffer.Bytes()[:archiveBuffer.Len()-3]
	_, err = c.ReadArchive(bytes.NewReader(truncated))
	assert.ErrorIs(t, err, gbdi.ErrCorruptedStream)
}

func TestArchiveExpand__WordCountMismatch(t *testing.T) {
	archive := &c.Archive{
		Bases:    c.BaseSet{},
		Segments: []c.SegmentInfo{{Address: 0, Size: 64}},
		// Only four words, the segment needs eight.
		Stream: []byte{0, 0, 0, 0, 0, 0, 0, 0},
	}
	_, err := archive.Expand()
	assert.ErrorIs(t, err, gbdi.ErrCorruptedStream)
}
