package compression

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/gbdi"
	"github.com/dargueta/gbdi/utilities/varint"
)

// Record is the encoded form of a single word.
type Record struct {
	// Ref is 0 if the word is stored raw, otherwise it's one more than the index
	// of the base that was subtracted.
	Ref uint64
	// Residual is what's left of the word after subtracting the base. It's
	// never larger than the word itself.
	Residual uint64
}

// Size returns the number of bytes the record takes up in the stream.
func (r Record) Size() int {
	return varint.Size(r.Ref) + varint.Size(r.Residual)
}

// AppendTo encodes the record and appends it to `dst`.
func (r Record) AppendTo(dst []byte) []byte {
	return varint.Append(varint.Append(dst, r.Ref), r.Residual)
}

// Word reconstructs the original word from the record.
func (r Record) Word(bases BaseSet) (uint64, error) {
	if r.Ref == 0 {
		return r.Residual, nil
	}
	if r.Ref > uint64(len(bases)) {
		return 0, gbdi.ErrCorruptedStream.WithMessage(
			fmt.Sprintf("base reference %d out of range [0, %d]", r.Ref, len(bases)))
	}
	return r.Residual + bases[r.Ref-1], nil
}

// ChooseBase finds the base that leaves the smallest residual for `word`.
//
// Only bases no larger than the word are considered, and a base only wins if
// it's strictly better than everything before it. The raw word counts as the
// first candidate, so a word equal to a base of 0 is still stored raw, and of
// two bases giving the same residual the earlier one is used.
func ChooseBase(word uint64, bases BaseSet) Record {
	best := Record{Ref: 0, Residual: word}
	for i, base := range bases {
		if word >= base && word-base < best.Residual {
			best = Record{Ref: uint64(i + 1), Residual: word - base}
		}
	}
	return best
}

// MaxEncodedSize returns the largest number of bytes that encoding `numWords`
// words with `bases` can produce. Output buffers must be at least this big.
//
// Every record can take up to ten bytes for the residual, so this is always
// more than the size of the uncompressed words.
func MaxEncodedSize(numWords int, bases BaseSet) int {
	recordSize := varint.Size(uint64(len(bases))) + gbdi.MaxVarintLen64
	if numWords > math.MaxInt/recordSize {
		return math.MaxInt
	}
	return numWords * recordSize
}

// -----------------------------------------------------------------------------

// Encoder writes the GBDI records for a sequence of words to an output stream.
// Successive calls to Encode continue the same stream.
type Encoder struct {
	bases        BaseSet
	output       io.Writer
	wordsEncoded int
	bytesWritten int64
	baseUsage    bitmap.Bitmap
	refCounts    []int
}

// NewEncoder creates an Encoder that writes to `output` using `bases`. The
// base set must not be modified while the encoder is in use.
func NewEncoder(bases BaseSet, output io.Writer) *Encoder {
	return &Encoder{
		bases:     bases,
		output:    output,
		baseUsage: bitmap.New(0),
		refCounts: make([]int, len(bases)+1),
	}
}

// Encode writes one record per word, in order. The return value is the number
// of bytes written by this call, only valid if no error occurred.
func (enc *Encoder) Encode(words []uint64) (int64, error) {
	var buffer [2 * gbdi.MaxVarintLen64]byte
	written := int64(0)

	for _, word := range words {
		record := ChooseBase(word, enc.bases)
		encoded := record.AppendTo(buffer[:0])

		n, err := enc.output.Write(encoded)
		written += int64(n)
		enc.bytesWritten += int64(n)
		if err != nil {
			return written, fmt.Errorf(
				"failed to write record for word %d: %w", enc.wordsEncoded, err)
		}

		enc.markRecord(record)
	}
	return written, nil
}

func (enc *Encoder) markRecord(record Record) {
	index := enc.wordsEncoded
	for len(enc.baseUsage)*8 <= index {
		enc.baseUsage = append(enc.baseUsage, 0)
	}
	enc.baseUsage.Set(index, record.Ref != 0)
	enc.refCounts[record.Ref]++
	enc.wordsEncoded++
}

// WordsEncoded returns the total number of words encoded so far.
func (enc *Encoder) WordsEncoded() int {
	return enc.wordsEncoded
}

// BytesWritten returns the total size of the stream written so far.
func (enc *Encoder) BytesWritten() int64 {
	return enc.bytesWritten
}

// UsedBase returns true if the word at `wordIndex` (counting from the first
// word ever passed to Encode) was encoded relative to a base.
func (enc *Encoder) UsedBase(wordIndex int) bool {
	if wordIndex < 0 || wordIndex >= enc.wordsEncoded {
		return false
	}
	return enc.baseUsage.Get(wordIndex)
}

// BaseHits returns how many words in the range [start, start + count) were
// encoded relative to a base.
func (enc *Encoder) BaseHits(start, count int) int {
	hits := 0
	for i := start; i < start+count; i++ {
		if enc.UsedBase(i) {
			hits++
		}
	}
	return hits
}

// RefCounts returns the number of records written for each base reference.
// Index 0 counts words stored raw.
func (enc *Encoder) RefCounts() []int {
	counts := make([]int, len(enc.refCounts))
	copy(counts, enc.refCounts)
	return counts
}

// -----------------------------------------------------------------------------

// Decoder reads GBDI records back into words.
type Decoder struct {
	bases BaseSet
	input io.ByteReader
}

// NewDecoder creates a Decoder reading from `input`. If `input` doesn't
// implement [io.ByteReader] it's buffered, so the decoder may read past the
// end of the stream.
func NewDecoder(bases BaseSet, input io.Reader) *Decoder {
	byteReader, ok := input.(io.ByteReader)
	if !ok {
		byteReader = bufio.NewReader(input)
	}
	return &Decoder{bases: bases, input: byteReader}
}

// DecodeRecord reads the next record. It returns io.EOF, unwrapped, only if the
// stream ends exactly on a record boundary.
func (dec *Decoder) DecodeRecord() (Record, error) {
	ref, err := varint.Read(dec.input)
	if err != nil {
		return Record{}, err
	}

	residual, err := varint.Read(dec.input)
	if err != nil {
		if errors.Is(err, io.EOF) {
			// The reference was there but the residual wasn't.
			return Record{}, gbdi.ErrMalformedVarint.Wrap(io.ErrUnexpectedEOF).WithMessage(
				"record is missing its residual")
		}
		return Record{}, err
	}
	return Record{Ref: ref, Residual: residual}, nil
}

// DecodeWord reads the next record and returns the word it represents.
func (dec *Decoder) DecodeWord() (uint64, error) {
	record, err := dec.DecodeRecord()
	if err != nil {
		return 0, err
	}
	return record.Word(dec.bases)
}

// Decode expands an entire compressed stream back into words.
func Decode(stream []byte, bases BaseSet) ([]uint64, error) {
	// A record is at least two bytes long.
	words := make([]uint64, 0, len(stream)/2)
	decoder := NewDecoder(bases, bytes.NewReader(stream))

	for {
		word, err := decoder.DecodeWord()
		if err != nil {
			if err == io.EOF {
				return words, nil
			}
			return words, fmt.Errorf("failed to decode word %d: %w", len(words), err)
		}
		words = append(words, word)
	}
}
