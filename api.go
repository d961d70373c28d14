package gbdi

// Segment is a single loadable region of an executable image.
//
// The analyzer never modifies Data. Callers must not modify it either while a
// compression run is using it.
type Segment struct {
	// Address is the virtual address the segment is loaded at. It's carried
	// along for reporting and is never used by the compressor itself.
	Address uint64
	// Data holds the bytes of the segment as stored in the file.
	Data []byte
}

// Size returns the size of the segment's data, in bytes.
func (s Segment) Size() int {
	return len(s.Data)
}

// SegmentSource is the interface for anything that can supply the loadable
// segments of an executable, in the order they appear in its program header
// table.
type SegmentSource interface {
	LoadableSegments() []Segment
}
