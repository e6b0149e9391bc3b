package processor

import (
	"fmt"
	"math"
)

// Silence presets, expressed as (peak dBFS, IQR dBFS) threshold pairs.
// Quieter presets keep more low-level material by demanding less energy
// before a chunk counts as audible.
const (
	PresetConversational = "conversational"
	PresetQuiet          = "quiet"
	PresetWhisper        = "whisper"
)

// presetThresholds maps preset names to their dBFS threshold pairs.
var presetThresholds = map[string]struct{ peak, iqr float64 }{
	PresetConversational: {peak: -15.0, iqr: -24.0},
	PresetQuiet:          {peak: -21.0, iqr: -30.0},
	PresetWhisper:        {peak: -27.0, iqr: -36.0},
}

// ThresholdPair holds the raw-sample delta limits a chunk must exceed to be
// classified audible. Derived once per stream from a dBFS preset and the
// stream's sample width, then fixed for the classifier's lifetime.
type ThresholdPair struct {
	PeakDelta float64 // peak-to-peak amplitude limit, raw sample units
	IQRDelta  float64 // interquartile range limit, raw sample units
}

// DbfsToDelta converts a dBFS level to a raw-sample amplitude delta for the
// given sample storage width: 10^(dbfs/10) * 2^(width*8).
func DbfsToDelta(dbfs float64, widthBytes int) float64 {
	return math.Pow(10, dbfs/10) * math.Pow(2, float64(widthBytes*8))
}

// DeltaToDbfs is the inverse of DbfsToDelta. Deltas below 1 are clamped to 1
// so silence maps to a finite floor rather than -Inf.
func DeltaToDbfs(delta float64, widthBytes int) float64 {
	if delta < 1 {
		delta = 1
	}
	return 10 * math.Log10(delta/math.Pow(2, float64(widthBytes*8)))
}

// NewThresholdPair derives raw-sample limits from a preset name, optional
// per-limit dBFS overrides, and the stream's sample width.
func NewThresholdPair(preset string, peakDBFS, iqrDBFS *float64, widthBytes int) (ThresholdPair, error) {
	p, ok := presetThresholds[preset]
	if !ok {
		return ThresholdPair{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, preset)
	}

	peak := p.peak
	if peakDBFS != nil {
		peak = *peakDBFS
	}
	iqr := p.iqr
	if iqrDBFS != nil {
		iqr = *iqrDBFS
	}

	return ThresholdPair{
		PeakDelta: DbfsToDelta(peak, widthBytes),
		IQRDelta:  DbfsToDelta(iqr, widthBytes),
	}, nil
}
