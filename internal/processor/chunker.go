package processor

import (
	"fmt"
	"io"

	"github.com/anthrax3/snarp/internal/pcm"
)

// FrameSource produces bounded runs of raw frames on request, ultimately
// backed by the container reader. ReadFrames returns up to n whole frames as
// a byte block; a short return is a normal end-of-stream signal, and a
// subsequent call returns io.EOF.
type FrameSource interface {
	ReadFrames(n int) ([]byte, error)
}

// Chunk is one fixed-duration group of frames plus the decoded sample
// sequence of the inspected (first) channel. The final chunk of a stream may
// be shorter.
type Chunk struct {
	Samples []int  // first-channel samples, one per frame
	Frames  []byte // raw frame bytes, all channels, carried through unmodified
}

// Chunker slices a frame stream into fixed-duration chunks and decodes the
// first channel of each frame. The sequence is single-pass and not
// restartable.
type Chunker struct {
	src            FrameSource
	codec          *pcm.Codec
	frameWidth     int // bytes per frame across all channels
	framesPerChunk int
	done           bool
}

// NewChunker builds a chunker that requests frameRate*chunkMs/1000 frames per
// chunk and decodes samples with codec.
func NewChunker(src FrameSource, codec *pcm.Codec, frameRate, channels, chunkMs int) (*Chunker, error) {
	framesPerChunk := frameRate * chunkMs / 1000
	if framesPerChunk <= 0 {
		return nil, fmt.Errorf("%w: chunk of %dms holds no frames at %d frames/s",
			ErrInvalidConfig, chunkMs, frameRate)
	}
	return &Chunker{
		src:            src,
		codec:          codec,
		frameWidth:     codec.Width() * channels,
		framesPerChunk: framesPerChunk,
	}, nil
}

// FramesPerChunk returns the full-chunk frame count.
func (ch *Chunker) FramesPerChunk() int { return ch.framesPerChunk }

// Next returns the next chunk, a partial chunk at end of stream, then io.EOF.
func (ch *Chunker) Next() (*Chunk, error) {
	if ch.done {
		return nil, io.EOF
	}

	frames, err := ch.src.ReadFrames(ch.framesPerChunk)
	if err == io.EOF || len(frames) == 0 {
		ch.done = true
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read frames: %w", err)
	}

	n := len(frames) / ch.frameWidth
	if n < ch.framesPerChunk {
		// Partial final chunk; the stream is exhausted after this one.
		ch.done = true
	}

	samples := make([]int, n)
	for i := 0; i < n; i++ {
		samples[i] = ch.codec.Decode(frames[i*ch.frameWidth:])
	}

	return &Chunk{Samples: samples, Frames: frames}, nil
}
