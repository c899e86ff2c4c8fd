package reporter

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"dashprep/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	progress   *progressbar.ProgressBar
	maxPercent float32
	lastStage  string
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	magenta    *color.Color
	bold       *color.Color
}

// NewTerminalReporter creates a new terminal reporter.
func NewTerminalReporter() *TerminalReporter {
	return &TerminalReporter{
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	fmt.Printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) RunStarted(info RunStartInfo) {
	fmt.Println()
	_, _ = r.cyan.Println("VIDEO")
	const w = 10
	r.printLabel(w, "Name:", info.VideoName)
	r.printLabel(w, "Input:", info.InputFile)
	r.printLabel(w, "Rates:", util.FormatRateList(info.Rates))
	r.printLabel(w, "Segment:", fmt.Sprintf("%ds (GOP %d at %d fps)", info.SegmentSeconds, info.GOP, info.FrameRate))
	if info.VMAFEnabled {
		r.printLabel(w, "Scoring:", "enabled")
	} else {
		r.printLabel(w, "Scoring:", color.New(color.Faint).Sprint("disabled"))
	}
}

func (r *TerminalReporter) SourceProbed(summary SourceSummary) {
	const w = 10
	r.printLabel(w, "Duration:", summary.Duration)
	r.printLabel(w, "Source:", fmt.Sprintf("%s, %d frames", summary.Resolution, summary.TotalFrames))
}

func (r *TerminalReporter) StageProgress(update StageProgress) {
	r.mu.Lock()
	if r.lastStage != update.Stage {
		r.mu.Unlock()
		fmt.Println()
		_, _ = r.cyan.Println(strings.ToUpper(update.Stage))
		r.mu.Lock()
		r.lastStage = update.Stage
	}
	r.mu.Unlock()
	fmt.Printf("  %s %s\n", r.magenta.Sprint("›"), update.Message)
}

func (r *TerminalReporter) EncodeStarted(rate int, totalFrames uint64) {
	r.finishProgress()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      fmt.Sprintf("%s [", util.FormatBitrate(rate)),
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) EncodeProgress(progress ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	clamped := progress.Percent
	if clamped > 100 {
		clamped = 100
	}
	if clamped < 0 {
		clamped = 0
	}

	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	desc := fmt.Sprintf("speed %.1fx, fps %.1f, eta %s",
		progress.Speed, progress.FPS, util.FormatDuration(progress.ETA.Seconds()))
	r.progress.Describe(desc)
}

func (r *TerminalReporter) EncodeComplete(outcome EncodeOutcome) {
	r.finishProgress()

	if outcome.Skipped {
		fmt.Printf("  %s %s (existing encode reused)\n",
			color.New(color.Faint).Sprint("-"), util.FormatBitrate(outcome.Rate))
		return
	}
	fmt.Printf("  %s %s -> %s (%s in %s)\n",
		r.green.Sprint("✓"),
		util.FormatBitrate(outcome.Rate),
		outcome.OutputFile,
		util.FormatBytes(outcome.Size),
		util.FormatDuration(outcome.TotalTime.Seconds()))
}

func (r *TerminalReporter) SegmentsExtracted(summary SegmentSummary) {
	fmt.Printf("  %s %s: %d segments, last starts at %.2fs\n",
		r.green.Sprint("✓"), util.FormatBitrate(summary.Rate), summary.Count, summary.LastStart)
}

func (r *TerminalReporter) AlignmentChecked(summary AlignmentSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("ALIGNMENT")

	if summary.Passed {
		fmt.Printf("  %s\n", r.green.Add(color.Bold).Sprint("All checks passed"))
	} else {
		fmt.Printf("  %s\n", r.red.Sprint("Alignment check failed"))
	}

	// Find the longest step name for alignment
	maxLen := 0
	for _, step := range summary.Steps {
		if len(step.Name) > maxLen {
			maxLen = len(step.Name)
		}
	}

	for _, step := range summary.Steps {
		var status string
		if step.Passed {
			status = r.green.Sprint("✓")
		} else {
			status = r.red.Sprint("✗")
		}
		paddedName := fmt.Sprintf("%-*s", maxLen, step.Name)
		fmt.Printf("  - %s: %s (%s)\n", paddedName, status, step.Details)
	}
}

func (r *TerminalReporter) ManifestMerged(summary ManifestSummary) {
	fmt.Printf("  %s %d representations -> %s\n",
		r.green.Sprint("✓"), summary.Representations, r.bold.Sprint(summary.Path))
}

func (r *TerminalReporter) ScoringStarted(rate int, totalSegments int) {
	fmt.Printf("  %s scoring %s (%d segments)\n",
		r.magenta.Sprint("›"), util.FormatBitrate(rate), totalSegments)
}

func (r *TerminalReporter) SegmentScored(update ScoreUpdate) {
	fmt.Printf("    segment %d/%d: %.2f\n", update.Segment, update.TotalSegments, update.Score)
}

func (r *TerminalReporter) RunComplete(summary RunOutcome) {
	r.finishProgress()

	fmt.Println()
	_, _ = r.cyan.Println("RESULTS")
	const w = 10
	r.printLabel(w, "Manifest:", summary.ManifestPath)
	if summary.VMAFPath != "" {
		r.printLabel(w, "Scores:", summary.VMAFPath)
	}
	r.printLabel(w, "Tracks:", fmt.Sprintf("%d representations, %d segments each", summary.Representations, summary.Segments))
	fmt.Printf("  %s %s\n", r.bold.Sprint("Time:"), util.FormatDuration(summary.TotalTime.Seconds()))
	fmt.Println()
	fmt.Printf("%s %s\n", r.green.Add(color.Bold).Sprint("✓"), r.bold.Sprintf("%s prepared", summary.VideoName))
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Println()
	_, _ = r.yellow.Printf("WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = r.red.Fprintf(os.Stderr, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) Verbose(message string) {
	fmt.Printf("  %s\n", color.New(color.Faint).Sprint(message))
}
