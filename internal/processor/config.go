package processor

import (
	"errors"
	"fmt"

	"github.com/anthrax3/snarp/internal/pcm"
)

// ErrInvalidConfig marks configuration errors. These are always fatal at
// startup and never discovered mid-stream.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the silence-trimming parameters for one stream run.
// Durations are milliseconds; hysteresis, pre-roll and post-roll must divide
// evenly by the chunk duration because the segmenter operates on whole chunks.
type Config struct {
	// Preset selects the dBFS threshold pair (conversational, quiet, whisper).
	Preset string

	// PeakDBFS and IQRDBFS independently override the preset limits when set.
	PeakDBFS *float64
	IQRDBFS  *float64

	// ChunkMs is the classification window duration.
	ChunkMs int

	// HysteresisMs is how long a silent run must last before an audible
	// segment is allowed to close (slow release).
	HysteresisMs int

	// PreRollMs and PostRollMs are the silence retained immediately before
	// and after each audible segment.
	PreRollMs  int
	PostRollMs int

	// BigEndian and Signedness override the raw sample interpretation for
	// nonstandard containers. Signedness defaults per width convention.
	BigEndian  bool
	Signedness pcm.Signedness
}

// DefaultConfig returns the default trimming configuration: the quiet preset
// with 100ms chunks, a one second release and 200ms pre/post roll.
func DefaultConfig() *Config {
	return &Config{
		Preset:       PresetQuiet,
		ChunkMs:      100,
		HysteresisMs: 1000,
		PreRollMs:    200,
		PostRollMs:   200,
	}
}

// Validate checks the configuration before any processing begins.
func (c *Config) Validate() error {
	if _, ok := presetThresholds[c.Preset]; !ok {
		return fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, c.Preset)
	}
	if c.ChunkMs <= 0 {
		return fmt.Errorf("%w: chunk duration must be positive, got %dms", ErrInvalidConfig, c.ChunkMs)
	}
	for _, d := range []struct {
		name string
		ms   int
	}{
		{"hysteresis", c.HysteresisMs},
		{"pre-roll", c.PreRollMs},
		{"post-roll", c.PostRollMs},
	} {
		if d.ms < 0 {
			return fmt.Errorf("%w: %s duration must not be negative, got %dms", ErrInvalidConfig, d.name, d.ms)
		}
		if d.ms%c.ChunkMs != 0 {
			return fmt.Errorf("%w: %s duration %dms is not a multiple of chunk duration %dms",
				ErrInvalidConfig, d.name, d.ms, c.ChunkMs)
		}
	}
	if c.HysteresisMs < c.ChunkMs {
		return fmt.Errorf("%w: hysteresis %dms is shorter than one chunk (%dms)",
			ErrInvalidConfig, c.HysteresisMs, c.ChunkMs)
	}
	return nil
}

// HysteresisChunks returns the release delay as a whole chunk count.
func (c *Config) HysteresisChunks() int { return c.HysteresisMs / c.ChunkMs }

// PreRollChunks returns the pre-roll as a whole chunk count.
func (c *Config) PreRollChunks() int { return c.PreRollMs / c.ChunkMs }

// PostRollChunks returns the post-roll as a whole chunk count.
func (c *Config) PostRollChunks() int { return c.PostRollMs / c.ChunkMs }

// Thresholds derives the fixed raw-sample threshold pair for a stream of the
// given sample width.
func (c *Config) Thresholds(widthBytes int) (ThresholdPair, error) {
	return NewThresholdPair(c.Preset, c.PeakDBFS, c.IQRDBFS, widthBytes)
}
