package compression

import (
	"errors"
	"io"
	"slices"
)

// BaseSet is the ordered set of global bases used to encode a word sequence.
// Base reference k in the compressed stream refers to entry k-1.
//
// The order is the order the bases were selected in. Sorting or otherwise
// rearranging a BaseSet changes how words are encoded.
type BaseSet []uint64

// Contains returns true if `value` is one of the bases.
func (bases BaseSet) Contains(value uint64) bool {
	return slices.Contains(bases, value)
}

// SelectBases picks up to `maxBases` global bases for `words`.
//
// The differences between consecutive words (wrapping around on underflow) are
// sorted and scanned for runs of equal values, smallest value first. A run
// becomes a base if it's strictly longer than every run before it, with the
// bar starting at 1, so a delta must occur at least twice to be considered.
// Scanning stops as soon as `maxBases` bases have been found.
//
// Fewer than two words, or `maxBases` of 0, always give an empty set.
func SelectBases(words []uint64, maxBases uint) BaseSet {
	if len(words) < 2 || maxBases == 0 {
		return BaseSet{}
	}

	deltas := make([]uint64, len(words)-1)
	for i := range deltas {
		deltas[i] = words[i+1] - words[i]
	}
	slices.Sort(deltas)

	bases := make(BaseSet, 0, min(maxBases, uint(len(deltas))))
	recordLength := 1
	grouper := NewRunGrouper(deltas)

	for uint(len(bases)) < maxBases {
		run, err := grouper.GetNextRun()
		if errors.Is(err, io.EOF) {
			break
		}

		if run.RunLength > recordLength {
			recordLength = run.RunLength
			bases = append(bases, run.Value)
		}
	}
	return bases
}
