package audio

import (
	"fmt"
	"io"
)

// BufferWriteSeeker is an in-memory io.WriteSeeker. The WAV encoder needs to
// seek back and patch header sizes, which a pipe cannot do, so piped output
// is assembled here and flushed in one pass once the container is closed.
type BufferWriteSeeker struct {
	buf []byte
	pos int64
}

// NewBufferWriteSeeker returns an empty buffer ready for writing.
func NewBufferWriteSeeker() *BufferWriteSeeker {
	return &BufferWriteSeeker{}
}

func (b *BufferWriteSeeker) Write(p []byte) (int, error) {
	if end := b.pos + int64(len(p)); end > int64(len(b.buf)) {
		grown := make([]byte, end)
		copy(grown, b.buf)
		b.buf = grown
	}
	copy(b.buf[b.pos:], p)
	b.pos += int64(len(p))
	return len(p), nil
}

func (b *BufferWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = b.pos + offset
	case io.SeekEnd:
		pos = int64(len(b.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid seek whence %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("negative seek position %d", pos)
	}
	b.pos = pos
	return pos, nil
}

// Bytes returns the assembled container contents.
func (b *BufferWriteSeeker) Bytes() []byte {
	return b.buf
}

// Len reports the assembled length in bytes.
func (b *BufferWriteSeeker) Len() int {
	return len(b.buf)
}

// WriteTo flushes the assembled contents to w.
func (b *BufferWriteSeeker) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.buf)
	return int64(n), err
}
