package processor

import (
	"math"
	"testing"
)

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name    string
		samples []int
		want    ChunkStats
	}{
		{
			name:    "single sample collapses quartiles",
			samples: []int{42},
			want:    ChunkStats{Min: 42, Max: 42, PeakDelta: 0, Q1: 42, Q3: 42, IQR: 0},
		},
		{
			name:    "two samples",
			samples: []int{10, 20},
			want:    ChunkStats{Min: 10, Max: 20, PeakDelta: 10, Q1: 10, Q3: 20, IQR: 10},
		},
		{
			name:    "even count splits cleanly",
			samples: []int{1, 2, 3, 4, 5, 6, 7, 8},
			want:    ChunkStats{Min: 1, Max: 8, PeakDelta: 7, Q1: 3, Q3: 7, IQR: 4},
		},
		{
			name:    "odd count shares the median sample",
			samples: []int{1, 2, 3, 4, 5, 6, 7},
			want:    ChunkStats{Min: 1, Max: 7, PeakDelta: 6, Q1: 2, Q3: 6, IQR: 4},
		},
		{
			name:    "unsorted input",
			samples: []int{8, 3, 6, 1, 7, 4, 2, 5},
			want:    ChunkStats{Min: 1, Max: 8, PeakDelta: 7, Q1: 3, Q3: 7, IQR: 4},
		},
		{
			name:    "negative samples",
			samples: []int{-100, -50, 0, 50, 100, 150},
			want:    ChunkStats{Min: -100, Max: 150, PeakDelta: 250, Q1: -50, Q3: 100, IQR: 150},
		},
		{
			name:    "constant dc offset is flat",
			samples: []int{500, 500, 500, 500},
			want:    ChunkStats{Min: 500, Max: 500, PeakDelta: 0, Q1: 500, Q3: 500, IQR: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStats(tt.samples)
			if got != tt.want {
				t.Errorf("ComputeStats(%v) = %+v, want %+v", tt.samples, got, tt.want)
			}
		})
	}
}

func TestComputeStatsDoesNotModifyInput(t *testing.T) {
	samples := []int{5, 1, 4, 2, 3}
	ComputeStats(samples)
	want := []int{5, 1, 4, 2, 3}
	for i := range samples {
		if samples[i] != want[i] {
			t.Fatalf("input modified: %v", samples)
		}
	}
}

func TestClassify(t *testing.T) {
	thresholds := ThresholdPair{PeakDelta: 100, IQRDelta: 40}

	tests := []struct {
		name        string
		samples     []int
		wantAudible bool
	}{
		{name: "flat silence", samples: []int{0, 0, 0, 0}, wantAudible: false},
		{name: "below both limits", samples: []int{0, 10, 20, 30}, wantAudible: false},
		// Both stats land exactly on their limits; exceeding is strict.
		{name: "exactly at limits stays silent", samples: []int{0, 60, 70, 100}, wantAudible: false},
		{name: "peak alone trips it", samples: []int{0, 80, 90, 101}, wantAudible: true},
		{name: "iqr alone trips it", samples: []int{0, 0, 50, 50}, wantAudible: true},
		{name: "loud chunk", samples: []int{-500, 480, -470, 510}, wantAudible: true},
		{name: "dc offset without spread", samples: []int{1000, 1000, 1000}, wantAudible: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl := NewClassifier(thresholds, 2, nil)
			audible, _ := cl.Classify(tt.samples)
			if audible != tt.wantAudible {
				t.Errorf("Classify(%v) audible = %v, want %v", tt.samples, audible, tt.wantAudible)
			}
			// Same samples, same verdict.
			again, _ := cl.Classify(tt.samples)
			if again != audible {
				t.Errorf("Classify is not deterministic for %v", tt.samples)
			}
		})
	}
}

func TestClassifyObserver(t *testing.T) {
	thresholds := ThresholdPair{PeakDelta: 100, IQRDelta: 40}

	var gotPeak, gotIQR float64
	calls := 0
	cl := NewClassifier(thresholds, 2, func(peakDBFS, iqrDBFS float64) {
		gotPeak, gotIQR = peakDBFS, iqrDBFS
		calls++
	})

	samples := []int{0, 100, 550, 655}
	_, stats := cl.Classify(samples)

	if calls != 1 {
		t.Fatalf("observer called %d times, want 1", calls)
	}
	wantPeak := DeltaToDbfs(float64(stats.PeakDelta), 2)
	wantIQR := DeltaToDbfs(float64(stats.IQR), 2)
	if math.Abs(gotPeak-wantPeak) > 1e-9 || math.Abs(gotIQR-wantIQR) > 1e-9 {
		t.Errorf("observer got (%v, %v), want (%v, %v)", gotPeak, gotIQR, wantPeak, wantIQR)
	}
}
