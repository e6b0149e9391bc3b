package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anthrax3/snarp/internal/audio"
	"github.com/anthrax3/snarp/internal/processor"
)

// ReportData contains everything needed to generate a trimming report.
type ReportData struct {
	InputPath  string
	OutputPath string
	BypassPath string
	StatsPath  string
	StartTime  time.Time
	EndTime    time.Time
	Config     *processor.Config
	Meta       *audio.Metadata
	Result     *processor.Result
}

// GenerateReport creates a detailed trimming report and saves it alongside
// the output file. The report filename will be <output>.log.
//
// Report structure:
//  1. Header - file info and timestamp
//  2. Stream - container parameters
//  3. Detection Settings - thresholds and timing windows
//  4. Segments - per-segment table
//  5. Summary - totals and timing
func GenerateReport(data ReportData) error {
	logPath := strings.TrimSuffix(data.OutputPath, filepath.Ext(data.OutputPath)) + ".log"

	f, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	writeReportHeader(f, data)
	writeStreamSection(f, data)
	writeDetectionSection(f, data)
	writeSegmentTable(f, data)
	writeSummarySection(f, data)

	return nil
}

// writeSection writes a section header with title and dashed underline.
func writeSection(f *os.File, title string) {
	fmt.Fprintln(f, title)
	fmt.Fprintln(f, strings.Repeat("-", len(title)))
}

func writeReportHeader(f *os.File, data ReportData) {
	fmt.Fprintln(f, "Snarp Trimming Report")
	fmt.Fprintln(f, "=====================")
	fmt.Fprintf(f, "Input:  %s\n", filepath.Base(data.InputPath))
	fmt.Fprintf(f, "Output: %s\n", filepath.Base(data.OutputPath))
	if data.BypassPath != "" {
		fmt.Fprintf(f, "Bypass: %s\n", filepath.Base(data.BypassPath))
	}
	if data.StatsPath != "" {
		fmt.Fprintf(f, "Stats:  %s\n", filepath.Base(data.StatsPath))
	}
	fmt.Fprintf(f, "Processed: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintln(f, "")
}

func writeStreamSection(f *os.File, data ReportData) {
	writeSection(f, "Stream")

	m := data.Meta
	fmt.Fprintf(f, "Frame rate:   %d Hz\n", m.FrameRate)
	fmt.Fprintf(f, "Channels:     %d\n", m.Channels)
	fmt.Fprintf(f, "Sample width: %d bytes\n", m.WidthBytes)
	fmt.Fprintf(f, "Frames:       %d\n", m.TotalFrames)
	fmt.Fprintf(f, "Duration:     %s\n", formatDuration(m.Duration))
	fmt.Fprintln(f, "")
}

func writeDetectionSection(f *os.File, data ReportData) {
	writeSection(f, "Detection Settings")

	cfg := data.Config
	thresholds, err := cfg.Thresholds(data.Meta.WidthBytes)
	if err == nil {
		fmt.Fprintf(f, "Preset:          %s\n", cfg.Preset)
		fmt.Fprintf(f, "Peak threshold:  %.1f dBFS (delta %.0f)\n",
			processor.DeltaToDbfs(thresholds.PeakDelta, data.Meta.WidthBytes), thresholds.PeakDelta)
		fmt.Fprintf(f, "IQR threshold:   %.1f dBFS (delta %.0f)\n",
			processor.DeltaToDbfs(thresholds.IQRDelta, data.Meta.WidthBytes), thresholds.IQRDelta)
	}
	fmt.Fprintf(f, "Chunk size:      %d ms\n", cfg.ChunkMs)
	fmt.Fprintf(f, "Hysteresis:      %d ms\n", cfg.HysteresisMs)
	fmt.Fprintf(f, "Pre-roll:        %d ms\n", cfg.PreRollMs)
	fmt.Fprintf(f, "Post-roll:       %d ms\n", cfg.PostRollMs)
	fmt.Fprintln(f, "")
}

func writeSegmentTable(f *os.File, data ReportData) {
	writeSection(f, "Segments")

	chunkDuration := time.Duration(data.Config.ChunkMs) * time.Millisecond
	var offset time.Duration
	for i, seg := range data.Result.Segments {
		label := "silent "
		if seg.Audible {
			label = "audible"
		}
		length := time.Duration(seg.Chunks) * chunkDuration
		fmt.Fprintf(f, "%3d  %s  %8s  at %s\n", i+1, label, formatDuration(length), formatDuration(offset))
		offset += length
	}
	if len(data.Result.Segments) == 0 {
		fmt.Fprintln(f, "(empty stream)")
	}
	fmt.Fprintln(f, "")
}

func writeSummarySection(f *os.File, data ReportData) {
	writeSection(f, "Summary")

	res := data.Result
	fmt.Fprintf(f, "Chunks:   %d total, %d audible, %d silent\n",
		res.TotalChunks, res.AudibleChunks, res.TotalChunks-res.AudibleChunks)
	fmt.Fprintf(f, "Segments: %d total, %d audible\n", len(res.Segments), res.AudibleSegments())
	fmt.Fprintf(f, "Frames:   %d kept of %d (%.1f%% removed)\n",
		res.AudibleFrames, res.TotalFrames, res.RemovedPercent())

	totalTime := data.EndTime.Sub(data.StartTime)
	fmt.Fprintf(f, "Elapsed:  %s", formatDuration(totalTime))
	if data.Meta.Duration > 0 && totalTime > 0 {
		rtf := float64(data.Meta.Duration) / float64(totalTime)
		fmt.Fprintf(f, " (%.0fx real-time)", rtf)
	}
	fmt.Fprintln(f, "")

	if res.Interrupted {
		fmt.Fprintln(f, "")
		fmt.Fprintln(f, "Note: processing was interrupted; output covers the stream up to the interrupt.")
	}
}

// formatDuration renders a duration as m:ss.t for anything under an hour.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d >= time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		s := d.Seconds() - float64(h*3600+m*60)
		return fmt.Sprintf("%d:%02d:%04.1f", h, m, s)
	}
	m := int(d.Minutes())
	s := d.Seconds() - float64(m*60)
	return fmt.Sprintf("%d:%04.1f", m, s)
}
