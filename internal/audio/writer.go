package audio

import (
	"fmt"
	"io"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/anthrax3/snarp/internal/pcm"
)

// Writer encodes raw PCM frames into a WAV container. Samples are decoded
// with the configured codec and re-encoded by the container writer, which
// preserves the stored bytes exactly for little-endian input.
type Writer struct {
	enc        *wav.Encoder
	codec      *pcm.Codec
	frameRate  int
	channels   int
	frameWidth int
	frames     int64
}

// NewWriter prepares a WAV encoder over ws with the stream parameters from
// meta. The destination must be seekable so the header sizes can be patched
// on Close.
func NewWriter(ws io.WriteSeeker, meta *Metadata, codec *pcm.Codec) *Writer {
	return &Writer{
		enc:        wav.NewEncoder(ws, meta.FrameRate, codec.Width()*8, meta.Channels, 1),
		codec:      codec,
		frameRate:  meta.FrameRate,
		channels:   meta.Channels,
		frameWidth: codec.Width() * meta.Channels,
	}
}

// WriteFrames appends whole frames of raw bytes to the output stream.
func (w *Writer) WriteFrames(frames []byte) error {
	if len(frames) == 0 {
		return nil
	}
	if len(frames)%w.frameWidth != 0 {
		return fmt.Errorf("frame data length %d is not a multiple of frame width %d", len(frames), w.frameWidth)
	}

	n := len(frames) / w.frameWidth
	data := make([]int, n*w.channels)
	width := w.codec.Width()
	for f := 0; f < n; f++ {
		base := f * w.frameWidth
		for c := 0; c < w.channels; c++ {
			data[f*w.channels+c] = w.codec.Decode(frames[base+c*width:])
		}
	}

	buf := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: w.channels,
			SampleRate:  w.frameRate,
		},
		Data:           data,
		SourceBitDepth: width * 8,
	}
	if err := w.enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write PCM frames: %w", err)
	}

	w.frames += int64(n)
	return nil
}

// Frames reports the number of frames written so far.
func (w *Writer) Frames() int64 {
	return w.frames
}

// Close finalises the container headers. Must be called exactly once.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("failed to finalise wav container: %w", err)
	}
	return nil
}
