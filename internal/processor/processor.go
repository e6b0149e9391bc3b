// Package processor implements the adaptive silence-segmentation engine:
// chunking, statistical classification against dBFS-derived thresholds, and
// the hysteresis segmenter that splits a PCM stream into silent and audible
// segments.
package processor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/anthrax3/snarp/internal/pcm"
)

// StreamInfo describes the PCM stream handed to the engine. The container
// reader resolves it before processing begins.
type StreamInfo struct {
	FrameRate   int
	Channels    int
	WidthBytes  int
	TotalFrames int64 // 0 when unknown; used only for progress reporting
}

// ProgressFunc receives periodic progress updates: completed fraction of the
// stream (0..1, best effort) and the last chunk's peak level in dBFS.
type ProgressFunc func(progress float64, levelDBFS float64)

// SegmentInfo summarises one routed segment.
type SegmentInfo struct {
	Audible bool
	Chunks  int
	Frames  int64
}

// Result reports what one stream run produced.
type Result struct {
	TotalFrames   int64 // every input frame, silent or audible
	AudibleFrames int64 // frames routed to the primary output
	TotalChunks   int
	AudibleChunks int
	Segments      []SegmentInfo
	Elapsed       time.Duration
	Interrupted   bool
}

// AudibleSegments counts the segments routed to the primary output.
func (r *Result) AudibleSegments() int {
	n := 0
	for _, s := range r.Segments {
		if s.Audible {
			n++
		}
	}
	return n
}

// RemovedPercent is the share of the input discarded from the primary output.
func (r *Result) RemovedPercent() float64 {
	if r.TotalFrames == 0 {
		return 0
	}
	return 100 * float64(r.TotalFrames-r.AudibleFrames) / float64(r.TotalFrames)
}

// Process runs the full pipeline over src: chunk, classify, segment, and
// route. It is synchronous and pull-based; the only suspension point is
// reading more frames from src. Cancelling ctx stops pulling input and
// flushes what has already been grouped, marking the result interrupted.
// observer and progress may be nil.
func Process(ctx context.Context, src FrameSource, info StreamInfo, cfg *Config, router Router, observer Observer, progress ProgressFunc) (*Result, error) {
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	codec, err := pcm.NewCodec(info.WidthBytes, cfg.BigEndian, cfg.Signedness)
	if err != nil {
		return nil, err
	}

	thresholds, err := cfg.Thresholds(info.WidthBytes)
	if err != nil {
		return nil, err
	}

	chunker, err := NewChunker(src, codec, info.FrameRate, info.Channels, cfg.ChunkMs)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	lastLevel := -96.0
	classifier := NewClassifier(thresholds, info.WidthBytes, func(peakDBFS, iqrDBFS float64) {
		lastLevel = peakDBFS
		if observer != nil {
			observer(peakDBFS, iqrDBFS)
		}
	})

	var framesRead int64
	labeled := func() (*Chunk, bool, error) {
		if ctx.Err() != nil {
			result.Interrupted = true
			return nil, false, io.EOF
		}
		chunk, err := chunker.Next()
		if err != nil {
			return nil, false, err
		}
		audible, _ := classifier.Classify(chunk.Samples)
		result.TotalChunks++
		if audible {
			result.AudibleChunks++
		}
		framesRead += int64(len(chunk.Samples))
		if progress != nil && info.TotalFrames > 0 {
			p := float64(framesRead) / float64(info.TotalFrames)
			if p > 1 {
				p = 1
			}
			progress(p, lastLevel)
		}
		return chunk, audible, nil
	}

	segmenter := NewSegmenter(labeled, cfg.HysteresisChunks(), cfg.PreRollChunks(), cfg.PostRollChunks())
	frameWidth := int64(codec.Width() * info.Channels)

	// Group consecutive same-label emissions into segments; boundaries fall
	// exactly where the emitted label changes.
	var current *Segment
	route := func(seg *Segment) error {
		if seg == nil || seg.Chunks == 0 {
			return nil
		}
		frames := int64(len(seg.Frames)) / frameWidth
		result.Segments = append(result.Segments, SegmentInfo{
			Audible: seg.Audible,
			Chunks:  seg.Chunks,
			Frames:  frames,
		})
		result.TotalFrames += frames
		if seg.Audible {
			result.AudibleFrames += frames
		}
		return router.Route(seg)
	}

	for {
		emission, err := segmenter.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("segmentation failed: %w", err)
		}

		if current != nil && current.Audible != emission.Audible {
			if err := route(current); err != nil {
				return nil, fmt.Errorf("failed to route segment: %w", err)
			}
			current = nil
		}
		if current == nil {
			current = &Segment{Audible: emission.Audible}
		}
		current.Frames = append(current.Frames, emission.Frames...)
		current.Chunks++
	}

	if err := route(current); err != nil {
		return nil, fmt.Errorf("failed to route segment: %w", err)
	}

	if progress != nil {
		progress(1.0, lastLevel)
	}
	result.Elapsed = time.Since(start)

	return result, nil
}
