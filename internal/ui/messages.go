package ui

// ProgressMsg represents a progress update from the processor
type ProgressMsg struct {
	Progress float64 // 0.0 to 1.0
	Level    float64 // Current chunk peak level in dBFS
}

// FileStartMsg indicates a new file has started processing
type FileStartMsg struct {
	FileIndex  int
	FileName   string
	OutputPath string
}

// FileCompleteMsg indicates a file has finished processing
type FileCompleteMsg struct {
	FileIndex      int
	OutputPath     string
	RemovedPercent float64
	Segments       int
	AudibleChunks  int
	TotalChunks    int
	Error          error
}

// AllCompleteMsg indicates all files have been processed
type AllCompleteMsg struct{}
