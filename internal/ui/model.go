// Package ui provides the Bubbletea terminal user interface for snarp
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FileStatus represents the processing state of a single file
type FileStatus int

const (
	StatusQueued FileStatus = iota
	StatusTrimming
	StatusComplete
	StatusError
)

// FileProgress tracks progress for a single audio file
type FileProgress struct {
	InputPath  string
	OutputPath string
	Status     FileStatus

	// Progress tracking (percentage-based)
	Progress    float64 // 0.0 to 1.0
	StartTime   time.Time
	ElapsedTime time.Duration

	// Level metering
	CurrentLevel float64 // Current chunk peak in dBFS
	PeakLevel    float64 // Loudest chunk seen so far

	// Completion results
	RemovedPercent float64
	Segments       int
	AudibleChunks  int
	TotalChunks    int

	// Error tracking
	Error error
}

// Model is the Bubbletea model for the processing UI
type Model struct {
	// File queue
	Files          []FileProgress
	CurrentIndex   int
	TotalFiles     int
	CompletedFiles int
	FailedFiles    int

	// Global state
	StartTime  time.Time
	Done       bool
	Cancelling bool

	// Cancel stops the background processing run. Quit keys call it and
	// wait for AllCompleteMsg so half-written outputs get flushed.
	Cancel func()

	// Channel for receiving progress updates from processor
	ProgressChan chan tea.Msg

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates a new UI model with the given input files
func NewModel(inputFiles []string) Model {
	files := make([]FileProgress, len(inputFiles))
	for i, path := range inputFiles {
		files[i] = FileProgress{
			InputPath: path,
			Status:    StatusQueued,
			PeakLevel: -96.0, // Digital silence until a chunk reports in
		}
	}

	return Model{
		Files:        files,
		CurrentIndex: -1, // No file processing yet
		TotalFiles:   len(inputFiles),
		StartTime:    time.Now(),
		ProgressChan: make(chan tea.Msg, 100), // Buffered channel
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return waitForProgress(m.ProgressChan)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.Cancel == nil {
				return m, tea.Quit
			}
			m.Cancel()
			m.Cancelling = true
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case ProgressMsg:
		// Update the current file's progress
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
			m.Files[m.CurrentIndex] = updateFileProgress(m.Files[m.CurrentIndex], msg)
		}

		// Listen for the next progress message
		return m, waitForProgress(m.ProgressChan)

	case FileStartMsg:
		// Start processing next file
		m.CurrentIndex = msg.FileIndex
		m.Files[m.CurrentIndex].Status = StatusTrimming
		m.Files[m.CurrentIndex].StartTime = time.Now()
		m.Files[m.CurrentIndex].OutputPath = msg.OutputPath
		return m, waitForProgress(m.ProgressChan)

	case FileCompleteMsg:
		// Mark file as complete
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
			m.Files[m.CurrentIndex].Status = StatusComplete
			m.Files[m.CurrentIndex].OutputPath = msg.OutputPath
			m.Files[m.CurrentIndex].RemovedPercent = msg.RemovedPercent
			m.Files[m.CurrentIndex].Segments = msg.Segments
			m.Files[m.CurrentIndex].AudibleChunks = msg.AudibleChunks
			m.Files[m.CurrentIndex].TotalChunks = msg.TotalChunks
			m.Files[m.CurrentIndex].Error = msg.Error

			if msg.Error != nil {
				m.Files[m.CurrentIndex].Status = StatusError
				m.FailedFiles++
			} else {
				m.CompletedFiles++
			}
		}
		return m, waitForProgress(m.ProgressChan)

	case AllCompleteMsg:
		// All files processed
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nFiles: %d\nCurrent: %d\n", len(m.Files), m.CurrentIndex)
	}

	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderProcessingView(m)
}

// updateFileProgress updates a FileProgress based on a ProgressMsg
func updateFileProgress(fp FileProgress, msg ProgressMsg) FileProgress {
	fp.Progress = msg.Progress
	fp.ElapsedTime = time.Since(fp.StartTime)

	if msg.Level != 0 {
		fp.CurrentLevel = msg.Level
		if msg.Level > fp.PeakLevel {
			fp.PeakLevel = msg.Level
		}
	}

	return fp
}

// waitForProgress creates a command that waits for progress messages
func waitForProgress(progressChan chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-progressChan
	}
}
