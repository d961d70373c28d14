package compression

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/dargueta/gbdi"
	"github.com/dargueta/gbdi/utilities/varint"
)

// ArchiveMagic identifies a persisted GBDI stream.
const ArchiveMagic = "GBDI"

// ArchiveVersion is the only archive format version currently understood.
const ArchiveVersion = 1

// Counts read from an archive header aren't trusted for preallocation beyond
// this many entries.
const maxPreallocatedEntries = 1024

const maxSegmentSize = math.MaxInt32 * gbdi.ChunkSize

// SegmentInfo records where a segment was loaded and how big it was, so that
// the padding can be stripped when expanding an archive.
type SegmentInfo struct {
	Address uint64
	Size    uint64
}

// Archive is a compressed stream together with everything needed to expand it.
//
// On disk the archive is the four magic bytes, a version byte, and then the
// following as ULEB128 integers: the base count, each base, the segment count,
// the address and size of each segment, and the stream length. The stream
// itself comes last.
type Archive struct {
	Bases    BaseSet
	Segments []SegmentInfo
	Stream   []byte
}

// NewArchive creates an archive from the result of a compression run.
func NewArchive(result *Result) *Archive {
	segments := make([]SegmentInfo, len(result.Segments))
	for i, segment := range result.Segments {
		segments[i] = SegmentInfo{Address: segment.Address, Size: uint64(segment.Size)}
	}
	return &Archive{
		Bases:    result.Bases,
		Segments: segments,
		Stream:   result.Stream,
	}
}

// WriteArchive serializes `archive` to `output`.
//
// The returned int64 gives the number of bytes written to the output stream. If
// an error occurred, the value is undefined and should not be used.
func WriteArchive(output io.Writer, archive *Archive) (int64, error) {
	header := []byte(ArchiveMagic)
	header = append(header, ArchiveVersion)

	header = varint.Append(header, uint64(len(archive.Bases)))
	for _, base := range archive.Bases {
		header = varint.Append(header, base)
	}

	header = varint.Append(header, uint64(len(archive.Segments)))
	for _, segment := range archive.Segments {
		header = varint.Append(header, segment.Address)
		header = varint.Append(header, segment.Size)
	}
	header = varint.Append(header, uint64(len(archive.Stream)))

	totalBytesWritten := int64(0)
	for _, chunk := range [][]byte{header, archive.Stream} {
		n, err := output.Write(chunk)
		totalBytesWritten += int64(n)
		if err != nil {
			return totalBytesWritten, gbdi.ErrIOFailed.Wrap(err)
		}
	}
	return totalBytesWritten, nil
}

// ReadArchive reads an archive written by [WriteArchive].
func ReadArchive(input io.Reader) (*Archive, error) {
	source := bufio.NewReader(input)

	magic := make([]byte, len(ArchiveMagic)+1)
	if _, err := io.ReadFull(source, magic); err != nil {
		return nil, gbdi.ErrInvalidFormat.Wrap(err).WithMessage("archive header is truncated")
	}
	if string(magic[:len(ArchiveMagic)]) != ArchiveMagic {
		return nil, gbdi.ErrInvalidFormat.WithMessage("not a GBDI archive")
	}
	if magic[len(ArchiveMagic)] != ArchiveVersion {
		return nil, gbdi.ErrInvalidFormat.WithMessage(
			fmt.Sprintf("unsupported archive version %d", magic[len(ArchiveMagic)]))
	}

	readInt := func(what string) (uint64, error) {
		value, err := varint.Read(source)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = gbdi.ErrMalformedVarint.Wrap(io.ErrUnexpectedEOF)
			}
			return 0, fmt.Errorf("failed to read %s: %w", what, err)
		}
		return value, nil
	}

	archive := &Archive{}

	baseCount, err := readInt("base count")
	if err != nil {
		return nil, err
	}
	archive.Bases = make(BaseSet, 0, min(baseCount, maxPreallocatedEntries))
	for i := uint64(0); i < baseCount; i++ {
		base, err := readInt(fmt.Sprintf("base %d", i))
		if err != nil {
			return nil, err
		}
		archive.Bases = append(archive.Bases, base)
	}

	segmentCount, err := readInt("segment count")
	if err != nil {
		return nil, err
	}
	archive.Segments = make([]SegmentInfo, 0, min(segmentCount, maxPreallocatedEntries))
	for i := uint64(0); i < segmentCount; i++ {
		address, err := readInt(fmt.Sprintf("address of segment %d", i))
		if err != nil {
			return nil, err
		}
		size, err := readInt(fmt.Sprintf("size of segment %d", i))
		if err != nil {
			return nil, err
		}
		if size > maxSegmentSize {
			return nil, gbdi.ErrCorruptedStream.WithMessage(
				fmt.Sprintf("segment %d claims to be %d bytes", i, size))
		}
		archive.Segments = append(archive.Segments, SegmentInfo{Address: address, Size: size})
	}

	streamLength, err := readInt("stream length")
	if err != nil {
		return nil, err
	}

	// Read through a LimitReader instead of allocating `streamLength` bytes up
	// front, since the length hasn't been validated yet.
	archive.Stream, err = io.ReadAll(io.LimitReader(source, int64(min(streamLength, 1<<62))))
	if err != nil {
		return nil, gbdi.ErrIOFailed.Wrap(err)
	}
	if uint64(len(archive.Stream)) != streamLength {
		return nil, gbdi.ErrCorruptedStream.WithMessage(
			fmt.Sprintf("stream is %d bytes, header says %d", len(archive.Stream), streamLength))
	}
	return archive, nil
}

// Expand decodes the archive's stream and restores the original segments,
// with the chunk padding removed.
func (archive *Archive) Expand() ([]gbdi.Segment, error) {
	words, err := Decode(archive.Stream, archive.Bases)
	if err != nil {
		return nil, err
	}

	expectedWords := 0
	for _, segment := range archive.Segments {
		expectedWords += WordCount(int(segment.Size))
	}
	if len(words) != expectedWords {
		return nil, gbdi.ErrCorruptedStream.WithMessage(
			fmt.Sprintf("stream has %d words, segments need %d", len(words), expectedWords))
	}

	segments := make([]gbdi.Segment, len(archive.Segments))
	firstWord := 0
	for i, info := range archive.Segments {
		count := WordCount(int(info.Size))
		segments[i] = gbdi.Segment{
			Address: info.Address,
			Data:    WordsToBytes(words[firstWord : firstWord+count])[:info.Size],
		}
		firstWord += count
	}
	return segments, nil
}
