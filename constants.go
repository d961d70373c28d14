package gbdi

// ChunkSize is the size of a cache line, in bytes. Segment data is extracted
// and zero-padded at this granularity.
const ChunkSize = 32

// WordSize is the size of a single word of the word sequence, in bytes.
const WordSize = 8

// WordsPerChunk is the number of words produced by one full chunk.
const WordsPerChunk = ChunkSize / WordSize

// DefaultMaxBases is the number of global bases selected when the caller
// doesn't ask for something else.
const DefaultMaxBases = 2

// MaxVarintLen64 is the longest a ULEB128-encoded 64-bit value can be:
// ceil(64 / 7) bytes.
const MaxVarintLen64 = 10

// MaxRecordSize is the worst-case size of one encoded record when the base set
// has fewer than 128 entries: one byte for the base reference and up to
// MaxVarintLen64 bytes for the residual.
const MaxRecordSize = 1 + MaxVarintLen64

