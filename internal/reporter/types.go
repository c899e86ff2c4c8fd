// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// RunStartInfo describes the preparation run before work begins.
type RunStartInfo struct {
	VideoName      string
	InputFile      string
	Rates          []int
	SegmentSeconds int
	FrameRate      int
	GOP            int
	VMAFEnabled    bool
}

// SourceSummary describes the probed source media.
type SourceSummary struct {
	Duration    string
	Resolution  string
	TotalFrames uint64
}

// ProgressSnapshot contains encode progress for one representation.
type ProgressSnapshot struct {
	Rate         int
	CurrentFrame uint64
	TotalFrames  uint64
	Percent      float32
	Speed        float32
	FPS          float32
	ETA          time.Duration
}

// EncodeOutcome contains the result of one representation encode.
type EncodeOutcome struct {
	Rate       int
	OutputFile string
	Skipped    bool
	Size       uint64
	TotalTime  time.Duration
}

// SegmentSummary contains one representation's segmentation result.
type SegmentSummary struct {
	Rate      int
	Count     int
	LastStart float64
}

// AlignmentSummary contains cross-representation alignment results.
type AlignmentSummary struct {
	Passed bool
	Steps  []ValidationStep
}

// ValidationStep represents a single validation check.
type ValidationStep struct {
	Name    string
	Passed  bool
	Details string
}

// ManifestSummary describes the merged manifest.
type ManifestSummary struct {
	Path            string
	Representations int
}

// ScoreUpdate contains one segment's quality score.
type ScoreUpdate struct {
	Rate          int
	Segment       int
	TotalSegments int
	Score         float64
}

// RunOutcome contains final run results.
type RunOutcome struct {
	VideoName       string
	ManifestPath    string
	VMAFPath        string
	Representations int
	Segments        int
	TotalTime       time.Duration
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// StageProgress represents a generic stage update.
type StageProgress struct {
	Stage   string
	Message string
}
