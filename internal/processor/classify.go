package processor

import "sort"

// ChunkStats are the per-chunk amplitude statistics used for classification.
// Quartiles use index-based splitting of the sorted samples (no
// interpolation): the lower half's midpoint is Q1 and the upper half's
// midpoint is Q3.
type ChunkStats struct {
	Min       int
	Max       int
	PeakDelta int // Max - Min
	Q1        int
	Q3        int
	IQR       int // Q3 - Q1
}

// ComputeStats derives ChunkStats from one chunk's decoded samples.
// The input slice is not modified. Samples must be non-empty; an empty
// sample sequence is the stream-end sentinel and never reaches here.
func ComputeStats(samples []int) ChunkStats {
	sorted := make([]int, len(samples))
	copy(sorted, samples)
	sort.Ints(sorted)

	n := len(sorted)
	stats := ChunkStats{Min: sorted[0], Max: sorted[n-1]}
	stats.PeakDelta = stats.Max - stats.Min

	half := n / 2
	if half == 0 {
		// Single sample: both quartiles collapse onto it.
		stats.Q1, stats.Q3 = sorted[0], sorted[0]
	} else {
		lower := sorted[:half]
		upper := sorted[n-half:]
		stats.Q1 = lower[half/2]
		stats.Q3 = upper[half/2]
	}
	stats.IQR = stats.Q3 - stats.Q1

	return stats
}

// Observer receives each classified chunk's statistics converted back to
// dBFS. It is purely diagnostic and must never influence classification.
type Observer func(peakDBFS, iqrDBFS float64)

// Classifier labels chunks silent or audible against a fixed ThresholdPair.
type Classifier struct {
	thresholds ThresholdPair
	widthBytes int
	observer   Observer
}

// NewClassifier builds a classifier for one stream. observer may be nil.
func NewClassifier(thresholds ThresholdPair, widthBytes int, observer Observer) *Classifier {
	return &Classifier{
		thresholds: thresholds,
		widthBytes: widthBytes,
		observer:   observer,
	}
}

// Classify computes the chunk's statistics and reports whether it is audible:
// true iff the peak-to-peak delta or the interquartile range exceeds its
// limit. A pure function of the samples for a fixed threshold pair.
func (cl *Classifier) Classify(samples []int) (audible bool, stats ChunkStats) {
	stats = ComputeStats(samples)

	audible = float64(stats.PeakDelta) > cl.thresholds.PeakDelta ||
		float64(stats.IQR) > cl.thresholds.IQRDelta

	if cl.observer != nil {
		cl.observer(
			DeltaToDbfs(float64(stats.PeakDelta), cl.widthBytes),
			DeltaToDbfs(float64(stats.IQR), cl.widthBytes),
		)
	}

	return audible, stats
}
