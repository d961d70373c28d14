package testing

import (
	"crypto/rand"
	"testing"

	"github.com/dargueta/gbdi"
	"github.com/stretchr/testify/require"
)

// DefaultBaseAddress is where the first segment created by
// [CreateRandomSegments] is loaded.
const DefaultBaseAddress = 0x400000

// CreateRandomSegments creates one segment per entry in `sizes`, filled with
// random bytes. Segments are placed back to back starting at
// [DefaultBaseAddress], each aligned to a 4 KiB page.
func CreateRandomSegments(t *testing.T, sizes ...int) []gbdi.Segment {
	segments := make([]gbdi.Segment, len(sizes))
	address := uint64(DefaultBaseAddress)

	for i, size := range sizes {
		data := make([]byte, size)
		_, err := rand.Read(data)
		require.NoErrorf(t, err, "failed to fill segment %d with %d random bytes", i, size)

		segments[i] = gbdi.Segment{Address: address, Data: data}
		address += (uint64(size) + 0xfff) &^ 0xfff
		if size == 0 {
			address += 0x1000
		}
	}
	return segments
}

// CreateCountingSegment creates a segment whose words are `first`,
// `first + step`, `first + 2*step`, ... for `numWords` words. This gives the
// base selector a single, very popular delta to find.
func CreateCountingSegment(address uint64, first, step uint64, numWords int) gbdi.Segment {
	words := make([]uint64, numWords)
	for i := range words {
		words[i] = first + uint64(i)*step
	}
	return gbdi.Segment{Address: address, Data: wordsToBytes(words)}
}

func wordsToBytes(words []uint64) []byte {
	data := make([]byte, 0, len(words)*gbdi.WordSize)
	for _, word := range words {
		for shift := 0; shift < 64; shift += 8 {
			data = append(data, byte(word>>shift))
		}
	}
	return data
}
