package processor

import (
	"encoding/binary"
	"io"
	"math"
	"testing"
)

// byteSource serves raw frames out of an in-memory byte slice, mimicking the
// container reader's whole-frame contract.
type byteSource struct {
	data       []byte
	frameWidth int
	pos        int
}

func (s *byteSource) ReadFrames(n int) ([]byte, error) {
	if s.pos >= len(s.data) {
		return nil, io.EOF
	}
	want := n * s.frameWidth
	if remaining := len(s.data) - s.pos; want > remaining {
		want = remaining - remaining%s.frameWidth
		if want == 0 {
			s.pos = len(s.data)
			return nil, io.EOF
		}
	}
	frames := s.data[s.pos : s.pos+want]
	s.pos += want
	return frames, nil
}

// encodeMono16 packs samples as little-endian signed 16-bit mono frames.
func encodeMono16(t *testing.T, samples []int) []byte {
	t.Helper()
	data := make([]byte, len(samples)*2)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(v)))
	}
	return data
}

// newNoiseGen returns a deterministic -1..1 noise source. A fixed LCG keeps
// tests reproducible without seeding math/rand.
func newNoiseGen() func() float64 {
	state := uint32(12345)
	return func() float64 {
		// LCG parameters from Numerical Recipes
		state = state*1664525 + 1013904223
		return (float64(state)/float64(0xFFFFFFFF))*2.0 - 1.0
	}
}

// generateSamples synthesises one 16-bit mono sample run: a sine
// tone at toneLevel dBFS plus noise at noiseLevel dBFS. Levels of zero
// disable that component.
func generateSamples(t *testing.T, count, frameRate int, toneFreq, toneLevel, noiseLevel float64) []int {
	t.Helper()

	toneAmp := 0.0
	if toneFreq > 0 && toneLevel < 0 {
		toneAmp = math.Pow(10, toneLevel/20)
	}
	noiseAmp := 0.0
	if noiseLevel < 0 {
		noiseAmp = math.Pow(10, noiseLevel/20)
	}

	noise := newNoiseGen()
	samples := make([]int, count)
	for i := range samples {
		v := toneAmp * math.Sin(2*math.Pi*toneFreq*float64(i)/float64(frameRate))
		v += noiseAmp * noise()
		samples[i] = int(v * math.MaxInt16)
	}
	return samples
}

// labelsToSource adapts a label sequence into a LabeledSource whose chunk i
// carries the single frame byte i, so emission order is checkable.
func labelsToSource(labels []bool) LabeledSource {
	i := 0
	return func() (*Chunk, bool, error) {
		if i >= len(labels) {
			return nil, false, io.EOF
		}
		c := &Chunk{
			Samples: []int{i},
			Frames:  []byte{byte(i)},
		}
		audible := labels[i]
		i++
		return c, audible, nil
	}
}

// collectEmissions drains a segmenter and groups consecutive same-label
// emissions into (label, chunk indexes) runs.
type segmentRun struct {
	audible bool
	chunks  []int
}

func collectEmissions(t *testing.T, s *Segmenter) []segmentRun {
	t.Helper()

	var runs []segmentRun
	for {
		e, err := s.Next()
		if err == io.EOF {
			return runs
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if len(e.Frames) != 1 {
			t.Fatalf("emission carries %d frame bytes, want 1", len(e.Frames))
		}
		idx := int(e.Frames[0])
		if len(runs) > 0 && runs[len(runs)-1].audible == e.Audible {
			last := &runs[len(runs)-1]
			last.chunks = append(last.chunks, idx)
			continue
		}
		runs = append(runs, segmentRun{audible: e.Audible, chunks: []int{idx}})
	}
}

// labelsFromPattern parses a label sequence from a pattern string where 'a'
// is audible, 's' is silent and spaces are ignored.
func labelsFromPattern(t *testing.T, pattern string) []bool {
	t.Helper()

	var labels []bool
	for _, r := range pattern {
		switch r {
		case 'a':
			labels = append(labels, true)
		case 's':
			labels = append(labels, false)
		case ' ':
		default:
			t.Fatalf("bad pattern rune %q", r)
		}
	}
	return labels
}

// spanInts returns [start, end) as a slice for run comparisons.
func spanInts(start, end int) []int {
	s := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		s = append(s, i)
	}
	return s
}
