// Package logging handles the per-chunk statistics stream and the trimming
// report written alongside processed files.
package logging

import (
	"bufio"
	"fmt"
	"os"
)

// StatsWriter records one line per analysed chunk: the peak level and the
// interquartile level, both in dBFS. No header row, so the output loads
// straight into plotting tools.
type StatsWriter struct {
	f *os.File
	w *bufio.Writer
}

// NewStatsWriter creates (or truncates) the statistics file at path.
func NewStatsWriter(path string) (*StatsWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create stats file: %w", err)
	}
	return &StatsWriter{f: f, w: bufio.NewWriter(f)}, nil
}

// Record appends one chunk's levels.
func (s *StatsWriter) Record(peakDBFS, iqrDBFS float64) {
	fmt.Fprintf(s.w, "%.2f,%.2f\n", peakDBFS, iqrDBFS)
}

// Close flushes buffered lines and closes the file.
func (s *StatsWriter) Close() error {
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return fmt.Errorf("failed to flush stats file: %w", err)
	}
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("failed to close stats file: %w", err)
	}
	return nil
}
