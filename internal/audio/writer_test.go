package audio

import (
	"bytes"
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

// readAllFrames drains a reader's whole PCM payload.
func readAllFrames(t *testing.T, r *Reader) []byte {
	t.Helper()
	var out []byte
	for {
		frames, err := r.ReadFrames(1024)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadFrames: %v", err)
		}
		out = append(out, frames...)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		width    int
		samples  []int // interleaved, one int per channel sample
	}{
		{
			name:     "mono 16-bit",
			channels: 1,
			width:    2,
			samples:  []int{0, 100, -100, 32767, -32768, 7},
		},
		{
			name:     "stereo 16-bit",
			channels: 2,
			width:    2,
			samples:  []int{10, -10, 20, -20, 30, -30, 40, -40},
		},
		{
			name:     "mono 8-bit unsigned",
			channels: 1,
			width:    1,
			samples:  []int{0, 127, 128, 255},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := mustCodec(t, tt.width)

			frameData := make([]byte, len(tt.samples)*tt.width)
			for i, v := range tt.samples {
				codec.Encode(v, frameData[i*tt.width:])
			}

			meta := &Metadata{
				FrameRate:  8000,
				Channels:   tt.channels,
				WidthBytes: tt.width,
			}

			dst := NewBufferWriteSeeker()
			w := NewWriter(dst, meta, codec)
			if err := w.WriteFrames(frameData); err != nil {
				t.Fatalf("WriteFrames: %v", err)
			}

			wantFrames := int64(len(tt.samples) / tt.channels)
			if got := w.Frames(); got != wantFrames {
				t.Errorf("Frames() = %d, want %d", got, wantFrames)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			// The container must open again with the same stream parameters
			// and byte-identical PCM payload.
			reader, gotMeta, err := NewReader(bytes.NewReader(dst.Bytes()))
			if err != nil {
				t.Fatalf("NewReader over written container: %v", err)
			}
			if gotMeta.FrameRate != meta.FrameRate || gotMeta.Channels != tt.channels ||
				gotMeta.WidthBytes != tt.width || gotMeta.TotalFrames != wantFrames {
				t.Errorf("meta = %+v", gotMeta)
			}
			if got := readAllFrames(t, reader); !bytes.Equal(got, frameData) {
				t.Errorf("PCM payload = % X, want % X", got, frameData)
			}
		})
	}
}

func TestWriterMultipleWrites(t *testing.T) {
	codec := mustCodec(t, 2)
	meta := &Metadata{FrameRate: 8000, Channels: 1, WidthBytes: 2}

	dst := NewBufferWriteSeeker()
	w := NewWriter(dst, meta, codec)

	first := pcm16(t, 1, 2, 3)
	second := pcm16(t, 4, 5)
	if err := w.WriteFrames(first); err != nil {
		t.Fatalf("WriteFrames: %v", err)
	}
	if err := w.WriteFrames(nil); err != nil {
		t.Fatalf("WriteFrames(nil): %v", err)
	}
	if err := w.WriteFrames(second); err != nil {
		t.Fatalf("WriteFrames: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reader, meta2, err := NewReader(bytes.NewReader(dst.Bytes()))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if meta2.TotalFrames != 5 {
		t.Errorf("TotalFrames = %d, want 5", meta2.TotalFrames)
	}
	want := append(append([]byte{}, first...), second...)
	if got := readAllFrames(t, reader); !bytes.Equal(got, want) {
		t.Errorf("PCM payload = % X, want % X", got, want)
	}
}

func TestWriterRejectsPartialFrames(t *testing.T) {
	codec := mustCodec(t, 2)
	meta := &Metadata{FrameRate: 8000, Channels: 2, WidthBytes: 2}

	w := NewWriter(NewBufferWriteSeeker(), meta, codec)
	if err := w.WriteFrames([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Fatal("expected an error for a partial frame")
	}
}
