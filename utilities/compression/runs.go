package compression

import (
	"io"
)

// WordRun represents a single run of a particular value in a sequence of words.
type WordRun struct {
	// Value is the word value for this run.
	Value uint64
	// RunLength gives the number of times the value occurs in the run (not the
	// number of times it's repeated).
	//
	// A valid run will always have this be 1 or greater. A value less than 1
	// indicates the end of the sequence was reached.
	RunLength int
}

// InvalidRun is returned by [RunGrouper.GetNextRun] once the sequence has been
// exhausted.
var InvalidRun = WordRun{Value: 0, RunLength: 0}

// RunGrouper splits a sequence of words into runs of equal consecutive values.
type RunGrouper struct {
	words    []uint64
	position int
}

// NewRunGrouper creates a RunGrouper over `words`. The slice isn't copied and
// must not be modified while the grouper is in use.
func NewRunGrouper(words []uint64) *RunGrouper {
	return &RunGrouper{words: words}
}

// GetNextRun returns a [WordRun] for the next value or run of values in the
// sequence. Once the sequence is exhausted it returns [InvalidRun] and io.EOF.
func (grouper *RunGrouper) GetNextRun() (WordRun, error) {
	if grouper.position >= len(grouper.words) {
		return InvalidRun, io.EOF
	}

	first := grouper.words[grouper.position]
	runLength := 1
	for grouper.position+runLength < len(grouper.words) &&
		grouper.words[grouper.position+runLength] == first {
		runLength++
	}

	grouper.position += runLength
	return WordRun{Value: first, RunLength: runLength}, nil
}
