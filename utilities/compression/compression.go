package compression

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dargueta/gbdi"
	"github.com/hashicorp/go-multierror"
	"github.com/noxer/bytewriter"
)

// maxVerifyErrors caps how many mismatched words Verify reports individually.
const maxVerifyErrors = 16

// Options controls a compression run.
type Options struct {
	// MaxBases is the maximum number of global bases to select.
	MaxBases uint
	// Verify makes [Compress] decode the stream it produced and compare it to
	// the original words before returning.
	Verify bool
	// Logger receives debug messages about each stage. Nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions returns the options matching the reference analyzer: two
// bases, no verification, no logging.
func DefaultOptions() Options {
	return Options{MaxBases: gbdi.DefaultMaxBases}
}

// SegmentResult describes how a single segment fared.
type SegmentResult struct {
	Address uint64
	Size    int
	// FirstWord is the index of the segment's first word in the word sequence.
	FirstWord      int
	Words          int
	CompressedSize int64
	BaseHits       int
}

// Result is everything produced by a compression run.
type Result struct {
	Bases    BaseSet
	Words    []uint64
	Stream   []byte
	Segments []SegmentResult
	// RefCounts gives the number of records for each base reference. Index 0
	// counts words stored raw.
	RefCounts []int
}

// OriginalSize returns the size of the padded word sequence, in bytes.
func (r *Result) OriginalSize() int64 {
	return int64(len(r.Words)) * gbdi.WordSize
}

// CompressedSize returns the size of the compressed stream, in bytes.
func (r *Result) CompressedSize() int64 {
	return int64(len(r.Stream))
}

// Ratio returns OriginalSize / CompressedSize.
func (r *Result) Ratio() float64 {
	return Ratio(r.OriginalSize(), r.CompressedSize())
}

// Ratio computes a compression ratio. An empty compressed stream gives a ratio
// of 0 rather than dividing by zero.
func Ratio(originalSize, compressedSize int64) float64 {
	if compressedSize == 0 {
		return 0
	}
	return float64(originalSize) / float64(compressedSize)
}

// Compress runs the whole pipeline over `segments`: extract the words, select
// the global bases, and encode every word.
//
// The output buffer is allocated for the worst case up front and never grows,
// so running out of room is reported as [gbdi.ErrBufferOverflow] rather than
// silently overwriting anything.
func Compress(segments []gbdi.Segment, options Options) (*Result, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	words, err := ExtractWords(segments)
	if err != nil {
		return nil, err
	}
	logger.Debug("extracted words", "segments", len(segments), "words", len(words))

	bases := SelectBases(words, options.MaxBases)
	logger.Debug("selected global bases", "max", options.MaxBases, "bases", fmt.Sprintf("%#x", []uint64(bases)))

	capacity := MaxEncodedSize(len(words), bases)
	buffer := make([]byte, capacity)
	encoder := NewEncoder(bases, bytewriter.New(buffer))

	segmentResults := make([]SegmentResult, 0, len(segments))
	firstWord := 0
	for i, segment := range segments {
		count := WordCount(segment.Size())
		n, err := encoder.Encode(words[firstWord : firstWord+count])
		if err != nil {
			return nil, gbdi.ErrBufferOverflow.Wrap(err).WithMessage(
				fmt.Sprintf("segment %d, buffer capacity %d", i, capacity))
		}

		segmentResults = append(
			segmentResults,
			SegmentResult{
				Address:        segment.Address,
				Size:           segment.Size(),
				FirstWord:      firstWord,
				Words:          count,
				CompressedSize: n,
				BaseHits:       encoder.BaseHits(firstWord, count),
			},
		)
		logger.Debug(
			"encoded segment",
			"index", i,
			"address", fmt.Sprintf("%#x", segment.Address),
			"words", count,
			"compressed", n,
		)
		firstWord += count
	}

	result := &Result{
		Bases:     bases,
		Words:     words,
		Stream:    buffer[:encoder.BytesWritten()],
		Segments:  segmentResults,
		RefCounts: encoder.RefCounts(),
	}

	if options.Verify {
		if err := Verify(result.Stream, bases, words); err != nil {
			return nil, err
		}
		logger.Debug("verified compressed stream", "words", len(words))
	}
	return result, nil
}

// Verify decodes `stream` and checks that it reproduces `words` exactly. Every
// discrepancy found (up to a limit) is reported in the returned error.
func Verify(stream []byte, bases BaseSet, words []uint64) error {
	decoded, err := Decode(stream, bases)
	if err != nil {
		return err
	}

	var result *multierror.Error
	if len(decoded) != len(words) {
		result = multierror.Append(
			result,
			gbdi.ErrCorruptedStream.WithMessage(
				fmt.Sprintf("decoded %d words, expected %d", len(decoded), len(words))),
		)
	}

	mismatches := 0
	for i := 0; i < len(decoded) && i < len(words); i++ {
		if decoded[i] == words[i] {
			continue
		}
		mismatches++
		if mismatches <= maxVerifyErrors {
			result = multierror.Append(
				result,
				gbdi.ErrCorruptedStream.WithMessage(
					fmt.Sprintf("word %d: expected %#x, got %#x", i, words[i], decoded[i])),
			)
		}
	}
	if mismatches > maxVerifyErrors {
		result = multierror.Append(
			result,
			gbdi.ErrCorruptedStream.WithMessage(
				fmt.Sprintf("%d more mismatched words", mismatches-maxVerifyErrors)),
		)
	}
	return result.ErrorOrNil()
}
