package processor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthrax3/snarp/internal/audio"
	"github.com/anthrax3/snarp/internal/pcm"
)

// StdioPath selects standard input or output instead of a named file.
const StdioPath = "-"

// RunOptions controls a single trimming run over one input stream.
type RunOptions struct {
	// InputPath is the WAV file to read, or StdioPath for standard input.
	InputPath string
	// OutputPath receives the trimmed stream. Empty derives
	// <base>-trimmed<ext> next to the input; StdioPath writes to standard
	// output.
	OutputPath string
	// BypassPath, when set, receives an untrimmed copy of the full stream
	// as a second WAV file, silence included.
	BypassPath string
	// Observer, when set, receives per-chunk levels after classification.
	Observer Observer
	// Progress, when set, receives coarse progress updates.
	Progress ProgressFunc
}

// RunResult bundles the processing outcome with the resolved stream details.
type RunResult struct {
	*Result
	Meta       *audio.Metadata
	OutputPath string
	BypassPath string
}

// DefaultOutputPath derives the output filename from the input filename.
// Example: /path/to/audio.wav → /path/to/audio-trimmed.wav
func DefaultOutputPath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	filename := filepath.Base(inputPath)
	ext := filepath.Ext(filename)
	nameWithoutExt := strings.TrimSuffix(filename, ext)

	return filepath.Join(dir, nameWithoutExt+"-trimmed"+ext)
}

// Run trims one WAV stream end to end: open the container, segment the PCM
// data, and write audible segments to the output (and silent ones to the
// bypass stream, if requested).
func Run(ctx context.Context, cfg *Config, opts RunOptions) (*RunResult, error) {
	reader, meta, err := openInput(opts.InputPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	codec, err := pcm.NewCodec(meta.WidthBytes, cfg.BigEndian, cfg.Signedness)
	if err != nil {
		return nil, err
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		if opts.InputPath == StdioPath {
			outputPath = StdioPath
		} else {
			outputPath = DefaultOutputPath(opts.InputPath)
		}
	}

	primary, err := openOutput(outputPath, meta, codec)
	if err != nil {
		return nil, err
	}
	defer primary.abort()

	var bypass *outputStream
	if opts.BypassPath != "" {
		bypass, err = openOutput(opts.BypassPath, meta, codec)
		if err != nil {
			return nil, err
		}
		defer bypass.abort()
	}

	// The bypass gets every segment, so it ends up a lossless copy of the
	// input with the trim boundaries decided but not applied.
	router := RouterFunc(func(seg *Segment) error {
		if seg.Audible {
			if err := primary.writer.WriteFrames(seg.Frames); err != nil {
				return err
			}
		}
		if bypass != nil {
			return bypass.writer.WriteFrames(seg.Frames)
		}
		return nil
	})

	info := StreamInfo{
		FrameRate:   meta.FrameRate,
		Channels:    meta.Channels,
		WidthBytes:  meta.WidthBytes,
		TotalFrames: meta.TotalFrames,
	}

	result, err := Process(ctx, reader, info, cfg, router, opts.Observer, opts.Progress)
	if err != nil {
		return nil, err
	}

	if err := primary.commit(); err != nil {
		return nil, err
	}
	if bypass != nil {
		if err := bypass.commit(); err != nil {
			return nil, err
		}
	}

	runResult := &RunResult{
		Result:     result,
		Meta:       meta,
		OutputPath: outputPath,
	}
	if bypass != nil {
		runResult.BypassPath = opts.BypassPath
	}
	return runResult, nil
}

func openInput(path string) (*audio.Reader, *audio.Metadata, error) {
	if path != StdioPath {
		return audio.OpenAudioFile(path)
	}

	// The container reader needs to seek, so a piped stream is buffered
	// whole before parsing.
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read standard input: %w", err)
	}
	return audio.NewReader(bytes.NewReader(data))
}

// outputStream pairs a container writer with its commit action. File output
// commits by closing the file; piped output assembles the container in
// memory and flushes it to standard output on commit.
type outputStream struct {
	writer    *audio.Writer
	file      *os.File
	pipe      *audio.BufferWriteSeeker
	committed bool
}

func openOutput(path string, meta *audio.Metadata, codec *pcm.Codec) (*outputStream, error) {
	if path == StdioPath {
		pipe := audio.NewBufferWriteSeeker()
		return &outputStream{
			writer: audio.NewWriter(pipe, meta, codec),
			pipe:   pipe,
		}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return &outputStream{
		writer: audio.NewWriter(f, meta, codec),
		file:   f,
	}, nil
}

func (o *outputStream) commit() error {
	o.committed = true
	if err := o.writer.Close(); err != nil {
		return err
	}
	if o.file != nil {
		if err := o.file.Close(); err != nil {
			return fmt.Errorf("failed to close output file: %w", err)
		}
		return nil
	}
	if _, err := o.pipe.WriteTo(os.Stdout); err != nil {
		return fmt.Errorf("failed to write standard output: %w", err)
	}
	return nil
}

// abort discards a stream that never committed, removing a half-written
// output file.
func (o *outputStream) abort() {
	if o.committed {
		return
	}
	if o.file != nil {
		o.file.Close()
		os.Remove(o.file.Name())
	}
}
