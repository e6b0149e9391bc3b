package processor

import "io"

// LabeledSource yields classified chunks in stream order. It returns io.EOF
// at end of stream; an empty chunk never appears as a value.
type LabeledSource func() (chunk *Chunk, audible bool, err error)

// Emission is one labeled block of frames produced by the segmenter.
// Consecutive same-label emissions form one segment.
type Emission struct {
	Audible bool
	Frames  []byte
}

// ringBuffer is a bounded FIFO of silent chunks awaiting a segmenter
// decision. Overflow evicts the oldest entry, which is returned to the
// caller for disposition.
type ringBuffer struct {
	items []*Chunk
	limit int
}

func newRingBuffer(limit int) *ringBuffer {
	return &ringBuffer{items: make([]*Chunk, 0, limit), limit: limit}
}

// push appends c, returning the evicted oldest chunk when full. With a zero
// capacity the pushed chunk itself bounces straight back.
func (rb *ringBuffer) push(c *Chunk) *Chunk {
	if rb.limit == 0 {
		return c
	}
	var evicted *Chunk
	if len(rb.items) == rb.limit {
		evicted = rb.items[0]
		rb.items = rb.items[1:]
	}
	rb.items = append(rb.items, c)
	return evicted
}

// drain empties the buffer and returns its contents oldest-first.
func (rb *ringBuffer) drain() []*Chunk {
	items := rb.items
	rb.items = make([]*Chunk, 0, rb.limit)
	return items
}

// Segmenter is the hysteresis state machine that turns a labeled chunk
// stream into labeled frame emissions. Entering an audible segment is
// immediate on the first audible chunk (fast attack); leaving one requires a
// full hysteresis run of silent chunks (slow release). Silent chunks around
// the transition points are redistributed as pre-roll and post-roll.
//
// All state is scoped to one stream run; concurrent streams need independent
// instances.
type Segmenter struct {
	src LabeledSource

	hysteresis int
	preRoll    int
	postRoll   int

	buf       *ringBuffer
	inAudible bool
	silentRun int // consecutive silent chunks seen while in an audible segment

	pending []Emission
	done    bool
}

// NewSegmenter builds a segmenter over src. All counts are whole chunks.
// The buffer must hold the pre-roll, the post-roll source material, and up
// to hysteresis-1 silent chunks of a pending release, so its capacity is the
// maximum of the three; overflow can therefore only happen while the active
// segment is silent.
func NewSegmenter(src LabeledSource, hysteresisChunks, preRollChunks, postRollChunks int) *Segmenter {
	capacity := preRollChunks
	if postRollChunks > capacity {
		capacity = postRollChunks
	}
	if hysteresisChunks-1 > capacity {
		capacity = hysteresisChunks - 1
	}
	return &Segmenter{
		src:        src,
		hysteresis: hysteresisChunks,
		preRoll:    preRollChunks,
		postRoll:   postRollChunks,
		buf:        newRingBuffer(capacity),
	}
}

// Next returns the next labeled emission, or io.EOF once the stream and all
// buffered chunks are exhausted.
func (s *Segmenter) Next() (Emission, error) {
	for len(s.pending) == 0 {
		if s.done {
			return Emission{}, io.EOF
		}

		chunk, audible, err := s.src()
		if err == io.EOF {
			s.flush()
			s.done = true
			continue
		}
		if err != nil {
			return Emission{}, err
		}

		s.consume(chunk, audible)
	}

	e := s.pending[0]
	s.pending = s.pending[1:]
	return e, nil
}

// consume advances the state machine by one classified chunk.
func (s *Segmenter) consume(c *Chunk, audible bool) {
	if !s.inAudible {
		if !audible {
			if evicted := s.buf.push(c); evicted != nil {
				s.emit(false, evicted)
			}
			return
		}
		s.attack(c)
		return
	}

	if audible {
		// The pause was too short to close the segment: any chunks buffered
		// during the failed release rejoin the audible segment.
		for _, b := range s.buf.drain() {
			s.emit(true, b)
		}
		s.silentRun = 0
		s.emit(true, c)
		return
	}

	s.silentRun++
	if s.silentRun >= s.hysteresis {
		s.release(c)
		return
	}
	if evicted := s.buf.push(c); evicted != nil {
		// Unreachable with the capacity chosen in NewSegmenter; routed to
		// the active segment all the same.
		s.emit(true, evicted)
	}
}

// attack transitions silent -> audible on the triggering chunk c.
// Buffered silence beyond the most recent preRoll chunks closes out the
// silent segment; the rest leads the new audible segment.
func (s *Segmenter) attack(c *Chunk) {
	buffered := s.buf.drain()
	excess := len(buffered) - s.preRoll
	for i, b := range buffered {
		s.emit(i >= excess, b) // the oldest excess chunks stay silent
	}
	s.emit(true, c)
	s.inAudible = true
	s.silentRun = 0
}

// release transitions audible -> silent once the hysteresis run completes,
// with c as the triggering chunk. The oldest postRoll buffered chunks trail
// the closing audible segment; everything after them opens the silent one.
func (s *Segmenter) release(c *Chunk) {
	buffered := s.buf.drain()
	for i, b := range buffered {
		s.emit(i < s.postRoll, b)
	}
	s.emit(false, c)
	s.inAudible = false
	s.silentRun = 0
}

// flush attributes anything still buffered at end of stream to the active
// segment. No smoothing is attempted past this point.
func (s *Segmenter) flush() {
	for _, b := range s.buf.drain() {
		s.emit(s.inAudible, b)
	}
}

func (s *Segmenter) emit(audible bool, c *Chunk) {
	s.pending = append(s.pending, Emission{Audible: audible, Frames: c.Frames})
}
