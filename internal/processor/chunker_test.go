package processor

import (
	"errors"
	"io"
	"testing"

	"github.com/anthrax3/snarp/internal/pcm"
)

func mustCodec(t *testing.T, width int) *pcm.Codec {
	t.Helper()
	c, err := pcm.NewCodec(width, false, pcm.SignednessAuto)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestNewChunkerRejectsEmptyWindow(t *testing.T) {
	src := &byteSource{frameWidth: 2}
	_, err := NewChunker(src, mustCodec(t, 2), 8, 1, 100) // 0.8 frames per chunk
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestChunkerFramesPerChunk(t *testing.T) {
	tests := []struct {
		frameRate int
		chunkMs   int
		want      int
	}{
		{frameRate: 8000, chunkMs: 100, want: 800},
		{frameRate: 44100, chunkMs: 100, want: 4410},
		{frameRate: 44100, chunkMs: 25, want: 1102}, // truncated, not rounded
		{frameRate: 16000, chunkMs: 1000, want: 16000},
	}
	for _, tt := range tests {
		ch, err := NewChunker(&byteSource{frameWidth: 2}, mustCodec(t, 2), tt.frameRate, 1, tt.chunkMs)
		if err != nil {
			t.Fatalf("NewChunker: %v", err)
		}
		if got := ch.FramesPerChunk(); got != tt.want {
			t.Errorf("FramesPerChunk() at %dHz/%dms = %d, want %d", tt.frameRate, tt.chunkMs, got, tt.want)
		}
	}
}

func TestChunkerSplitsAndDecodes(t *testing.T) {
	// 10 mono 16-bit frames at 1000 frames/s with 4ms chunks: two full
	// chunks of 4 and a partial of 2.
	samples := []int{0, 1, 2, 3, 4, 5, -6, -7, -8, -9}
	src := &byteSource{data: encodeMono16(t, samples), frameWidth: 2}

	ch, err := NewChunker(src, mustCodec(t, 2), 1000, 1, 4)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}

	var got [][]int
	var frameBytes int
	for {
		chunk, err := ch.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, chunk.Samples)
		frameBytes += len(chunk.Frames)
	}

	if len(got) != 3 {
		t.Fatalf("chunk count = %d, want 3", len(got))
	}
	wantChunks := [][]int{{0, 1, 2, 3}, {4, 5, -6, -7}, {-8, -9}}
	for i, want := range wantChunks {
		if len(got[i]) != len(want) {
			t.Fatalf("chunk %d has %d samples, want %d", i, len(got[i]), len(want))
		}
		for j := range want {
			if got[i][j] != want[j] {
				t.Errorf("chunk %d sample %d = %d, want %d", i, j, got[i][j], want[j])
			}
		}
	}
	if frameBytes != len(samples)*2 {
		t.Errorf("raw bytes carried = %d, want %d", frameBytes, len(samples)*2)
	}

	// Exhausted stream keeps returning io.EOF.
	if _, err := ch.Next(); err != io.EOF {
		t.Fatalf("Next after end = %v, want io.EOF", err)
	}
}

func TestChunkerDecodesFirstChannelOnly(t *testing.T) {
	// Two stereo frames: left samples 100 and -200, right samples junk the
	// chunker must skip over but still carry in the raw bytes.
	frames := append(encodeStereo16(t, 100, 9999), encodeStereo16(t, -200, -9999)...)
	src := &byteSource{data: frames, frameWidth: 4}

	ch, err := NewChunker(src, mustCodec(t, 2), 1000, 2, 2)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}

	chunk, err := ch.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(chunk.Samples) != 2 || chunk.Samples[0] != 100 || chunk.Samples[1] != -200 {
		t.Errorf("Samples = %v, want [100 -200]", chunk.Samples)
	}
	if len(chunk.Frames) != 8 {
		t.Errorf("Frames length = %d, want 8", len(chunk.Frames))
	}
}

func TestChunkerEmptyStream(t *testing.T) {
	ch, err := NewChunker(&byteSource{frameWidth: 2}, mustCodec(t, 2), 1000, 1, 4)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}
	if _, err := ch.Next(); err != io.EOF {
		t.Fatalf("Next on empty stream = %v, want io.EOF", err)
	}
}

// encodeStereo16 packs one little-endian 16-bit stereo frame.
func encodeStereo16(t *testing.T, left, right int) []byte {
	t.Helper()
	return encodeMono16(t, []int{left, right})
}
