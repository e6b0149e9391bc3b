package processor

// Segment is a maximal run of frames sharing one silent/audible designation
// after smoothing. Concatenating every segment's frames in order reproduces
// the input stream exactly.
type Segment struct {
	Audible bool
	Frames  []byte
	Chunks  int
}

// Router consumes the segment sequence in stream order. Audible segments go
// to the primary output; a bypass output, when present, receives every
// segment and so carries a lossless copy of the input.
type Router interface {
	Route(seg *Segment) error
}

// RouterFunc adapts a function to the Router interface.
type RouterFunc func(seg *Segment) error

// Route calls f(seg).
func (f RouterFunc) Route(seg *Segment) error { return f(seg) }
