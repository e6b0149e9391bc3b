package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStatsWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levels.csv")

	w, err := NewStatsWriter(path)
	if err != nil {
		t.Fatalf("NewStatsWriter: %v", err)
	}
	w.Record(-42.5, -55.126)
	w.Record(-12, -18.7)
	w.Record(-48.164799, -48.164799)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "-42.50,-55.13\n-12.00,-18.70\n-48.16,-48.16\n"
	if string(data) != want {
		t.Errorf("stats file = %q, want %q", string(data), want)
	}
}

func TestStatsWriterBadPath(t *testing.T) {
	if _, err := NewStatsWriter(filepath.Join(t.TempDir(), "no", "such", "dir", "x.csv")); err == nil {
		t.Fatal("expected an error for an uncreatable path")
	}
}
