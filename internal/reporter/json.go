package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs NDJSON events for machine consumers.
type JSONReporter struct {
	writer             io.Writer
	mu                 sync.Mutex
	lastProgressBucket int
	lastProgressTime   time.Time
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{
		writer:             os.Stdout,
		lastProgressBucket: -1,
	}
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		lastProgressBucket: -1,
	}
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) RunStarted(info RunStartInfo) {
	r.write(map[string]interface{}{
		"type":            "run_started",
		"video_name":      info.VideoName,
		"input_file":      info.InputFile,
		"rates":           info.Rates,
		"segment_seconds": info.SegmentSeconds,
		"frame_rate":      info.FrameRate,
		"gop":             info.GOP,
		"vmaf_enabled":    info.VMAFEnabled,
		"timestamp":       r.timestamp(),
	})
}

func (r *JSONReporter) SourceProbed(summary SourceSummary) {
	r.write(map[string]interface{}{
		"type":         "source_probed",
		"duration":     summary.Duration,
		"resolution":   summary.Resolution,
		"total_frames": summary.TotalFrames,
		"timestamp":    r.timestamp(),
	})
}

func (r *JSONReporter) StageProgress(update StageProgress) {
	r.write(map[string]interface{}{
		"type":      "stage_progress",
		"stage":     update.Stage,
		"message":   update.Message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) EncodeStarted(rate int, totalFrames uint64) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":         "encode_started",
		"rate":         rate,
		"total_frames": totalFrames,
		"timestamp":    r.timestamp(),
	})
}

func (r *JSONReporter) EncodeProgress(progress ProgressSnapshot) {
	const progressBucketSize = 1
	const minInterval = 5 * time.Second

	bucket := int(progress.Percent) / progressBucketSize
	now := time.Now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed || progress.Percent >= 99.0

	if !shouldEmit {
		r.mu.Unlock()
		return
	}

	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":          "encode_progress",
		"rate":          progress.Rate,
		"current_frame": progress.CurrentFrame,
		"total_frames":  progress.TotalFrames,
		"percent":       progress.Percent,
		"speed":         progress.Speed,
		"fps":           progress.FPS,
		"eta_seconds":   int64(progress.ETA.Seconds()),
		"timestamp":     r.timestamp(),
	})
}

func (r *JSONReporter) EncodeComplete(outcome EncodeOutcome) {
	r.write(map[string]interface{}{
		"type":             "encode_complete",
		"rate":             outcome.Rate,
		"output_file":      outcome.OutputFile,
		"skipped":          outcome.Skipped,
		"size":             outcome.Size,
		"duration_seconds": int64(outcome.TotalTime.Seconds()),
		"timestamp":        r.timestamp(),
	})
}

func (r *JSONReporter) SegmentsExtracted(summary SegmentSummary) {
	r.write(map[string]interface{}{
		"type":       "segments_extracted",
		"rate":       summary.Rate,
		"count":      summary.Count,
		"last_start": summary.LastStart,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) AlignmentChecked(summary AlignmentSummary) {
	steps := make([]map[string]interface{}, len(summary.Steps))
	for i, step := range summary.Steps {
		steps[i] = map[string]interface{}{
			"step":    step.Name,
			"passed":  step.Passed,
			"details": step.Details,
		}
	}

	r.write(map[string]interface{}{
		"type":             "alignment_checked",
		"alignment_passed": summary.Passed,
		"alignment_steps":  steps,
		"timestamp":        r.timestamp(),
	})
}

func (r *JSONReporter) ManifestMerged(summary ManifestSummary) {
	r.write(map[string]interface{}{
		"type":            "manifest_merged",
		"path":            summary.Path,
		"representations": summary.Representations,
		"timestamp":       r.timestamp(),
	})
}

func (r *JSONReporter) ScoringStarted(rate int, totalSegments int) {
	r.write(map[string]interface{}{
		"type":           "scoring_started",
		"rate":           rate,
		"total_segments": totalSegments,
		"timestamp":      r.timestamp(),
	})
}

func (r *JSONReporter) SegmentScored(update ScoreUpdate) {
	r.write(map[string]interface{}{
		"type":           "segment_scored",
		"rate":           update.Rate,
		"segment":        update.Segment,
		"total_segments": update.TotalSegments,
		"score":          update.Score,
		"timestamp":      r.timestamp(),
	})
}

func (r *JSONReporter) RunComplete(summary RunOutcome) {
	r.write(map[string]interface{}{
		"type":             "run_complete",
		"video_name":       summary.VideoName,
		"manifest_path":    summary.ManifestPath,
		"vmaf_path":        summary.VMAFPath,
		"representations":  summary.Representations,
		"segments":         summary.Segments,
		"duration_seconds": int64(summary.TotalTime.Seconds()),
		"timestamp":        r.timestamp(),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{
		"type":      "warning",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]interface{}{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) Verbose(message string) {
	r.write(map[string]interface{}{
		"type":      "verbose",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}
