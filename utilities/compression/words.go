package compression

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dargueta/gbdi"
)

// WordCount returns the number of words a segment of `size` bytes expands to
// once it's padded out to a whole number of chunks.
func WordCount(size int) int {
	return ((size + gbdi.ChunkSize - 1) / gbdi.ChunkSize) * gbdi.WordsPerChunk
}

// ExtractWords concatenates the data of all segments, in order, into a single
// sequence of words. Each segment is padded with null bytes to a multiple of
// [gbdi.ChunkSize], so the number of words is always a multiple of
// [gbdi.WordsPerChunk] and an empty segment contributes nothing.
//
// The segments aren't modified, and the returned slice doesn't alias them.
func ExtractWords(segments []gbdi.Segment) ([]uint64, error) {
	totalWords := uint64(0)
	for _, segment := range segments {
		totalWords += uint64(WordCount(segment.Size()))
	}

	if totalWords > math.MaxInt/gbdi.WordSize {
		return nil, gbdi.ErrOutOfMemory.WithMessage(
			fmt.Sprintf("can't allocate %d words for %d segments", totalWords, len(segments)))
	}

	words := make([]uint64, 0, int(totalWords))
	var chunk [gbdi.ChunkSize]byte

	for _, segment := range segments {
		data := segment.Data
		for len(data) > 0 {
			copySize := copy(chunk[:], data)
			// Zero out the rest of the chunk if the segment ended partway
			// through it.
			clear(chunk[copySize:])

			for offset := 0; offset < gbdi.ChunkSize; offset += gbdi.WordSize {
				words = append(words, binary.LittleEndian.Uint64(chunk[offset:]))
			}
			data = data[copySize:]
		}
	}
	return words, nil
}

// WordsToBytes is the inverse of the word extraction for a single segment: it
// lays the words out as little-endian bytes. Padding isn't removed.
func WordsToBytes(words []uint64) []byte {
	output := make([]byte, len(words)*gbdi.WordSize)
	for i, word := range words {
		binary.LittleEndian.PutUint64(output[i*gbdi.WordSize:], word)
	}
	return output
}
