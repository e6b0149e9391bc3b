// Package audio provides WAV container I/O using go-audio.
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/wav"

	"github.com/anthrax3/snarp/internal/pcm"
)

// ErrMalformedContainer indicates the container metadata is invalid or
// unreadable. Always fatal, surfaced before any processing begins.
var ErrMalformedContainer = errors.New("malformed wav container")

// Metadata contains the resolved PCM stream parameters.
type Metadata struct {
	FrameRate   int
	Channels    int
	WidthBytes  int // sample storage width, 1..4
	TotalFrames int64
	Duration    time.Duration
}

// Reader streams raw PCM frames out of a WAV container. Frame bytes pass
// through undecoded so non-inspected channels survive untouched.
type Reader struct {
	dec        *wav.Decoder
	pcm        io.Reader
	closer     io.Closer
	frameWidth int
	remaining  int64
}

// OpenAudioFile opens a WAV file for frame reading.
func OpenAudioFile(filename string) (*Reader, *Metadata, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}

	reader, meta, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	reader.closer = f

	return reader, meta, nil
}

// NewReader validates the WAV headers in rs and positions the reader at the
// start of the PCM data.
func NewReader(rs io.ReadSeeker) (*Reader, *Metadata, error) {
	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, nil, fmt.Errorf("%w: not a valid RIFF/WAVE stream", ErrMalformedContainer)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, nil, fmt.Errorf("%w: no PCM data chunk: %v", ErrMalformedContainer, err)
	}
	if dec.WavAudioFormat != 1 {
		return nil, nil, fmt.Errorf("%w: audio format %d is not uncompressed PCM", ErrMalformedContainer, dec.WavAudioFormat)
	}
	if dec.BitDepth%8 != 0 {
		return nil, nil, fmt.Errorf("%w: bit depth %d is not byte aligned", ErrMalformedContainer, dec.BitDepth)
	}

	width := int(dec.BitDepth) / 8
	if width < 1 || width > 4 {
		return nil, nil, fmt.Errorf("%w: %d bytes", pcm.ErrUnsupportedWidth, width)
	}
	channels := int(dec.NumChans)
	if channels < 1 {
		return nil, nil, fmt.Errorf("%w: no channels declared", ErrMalformedContainer)
	}
	frameRate := int(dec.SampleRate)
	if frameRate < 1 {
		return nil, nil, fmt.Errorf("%w: no frame rate declared", ErrMalformedContainer)
	}

	frameWidth := width * channels
	totalFrames := int64(dec.PCMSize) / int64(frameWidth)

	meta := &Metadata{
		FrameRate:   frameRate,
		Channels:    channels,
		WidthBytes:  width,
		TotalFrames: totalFrames,
		Duration:    time.Duration(totalFrames) * time.Second / time.Duration(frameRate),
	}

	return &Reader{
		dec:        dec,
		pcm:        dec.PCMChunk,
		frameWidth: frameWidth,
		remaining:  totalFrames * int64(frameWidth),
	}, meta, nil
}

// ReadFrames returns up to n whole frames of raw bytes. A short return is
// the normal end-of-stream signal; the following call returns io.EOF.
func (r *Reader) ReadFrames(n int) ([]byte, error) {
	if r.remaining <= 0 {
		return nil, io.EOF
	}

	want := int64(n) * int64(r.frameWidth)
	if want > r.remaining {
		want = r.remaining
	}

	buf := make([]byte, want)
	read, err := io.ReadFull(r.pcm, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		// Data chunk ended early; keep the whole frames we got.
		read -= read % r.frameWidth
		r.remaining = 0
		if read == 0 {
			return nil, io.EOF
		}
		return buf[:read], nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	r.remaining -= int64(read)
	return buf[:read], nil
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
