// Package dashprep prepares a source video for adaptive-bitrate streaming.
//
// It encodes a bitrate ladder with keyframes pinned to segment boundaries,
// segments every representation into aligned fixed-duration chunks, merges
// the per-representation manifests into one, and optionally scores each
// segment's perceptual quality against the highest-bitrate representation.
//
// Basic usage:
//
//	prep, err := dashprep.New("bbb", "input/bbb.mp4",
//	    dashprep.WithLadder(dashprep.LadderWeb),
//	    dashprep.WithVMAF(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := prep.Prepare(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("manifest: %s (%d representations)\n",
//	    result.ManifestPath, result.Representations)
package dashprep

import (
	"context"
	"time"

	"dashprep/internal/config"
	"dashprep/internal/pipeline"
	"dashprep/internal/reporter"
)

// Re-export ladder types
type Ladder = config.Ladder

const (
	LadderMobile = config.LadderMobile
	LadderWeb    = config.LadderWeb
	LadderFull   = config.LadderFull
)

// ParseLadder converts a ladder string to a Ladder value.
// Valid values are "mobile", "web", and "full" (case-insensitive).
func ParseLadder(s string) (Ladder, error) {
	return config.ParseLadder(s)
}

// Reporter receives progress events during preparation.
type Reporter = reporter.Reporter

// NewTerminalReporter returns a reporter that prints colored,
// human-friendly output with progress bars.
func NewTerminalReporter() Reporter {
	return reporter.NewTerminalReporter()
}

// NewJSONReporter returns a reporter that emits NDJSON events to stdout.
func NewJSONReporter() Reporter {
	return reporter.NewJSONReporter()
}

// Preparer is the main entry point for video preparation.
type Preparer struct {
	config *config.Config
}

// Result contains the outcome of a preparation run.
type Result struct {
	ManifestPath    string
	VMAFPath        string
	Representations int
	Segments        int
	Elapsed         time.Duration
}

// Option configures the preparer.
type Option func(*config.Config)

// New creates a new Preparer for one video with the given options.
func New(videoName, inputPath string, opts ...Option) (*Preparer, error) {
	cfg := config.NewConfig(videoName, inputPath)

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Preparer{config: cfg}, nil
}

// WithRates sets the target bitrates in kbps.
func WithRates(rates []int) Option {
	return func(c *config.Config) {
		c.Rates = append([]int(nil), rates...)
	}
}

// WithLadder applies a named bitrate ladder.
func WithLadder(l Ladder) Option {
	return func(c *config.Config) {
		c.ApplyLadder(l)
	}
}

// WithSegmentSeconds sets the segment duration.
func WithSegmentSeconds(seconds int) Option {
	return func(c *config.Config) {
		c.SegmentSeconds = seconds
	}
}

// WithFrameRate sets the output frame rate for every representation.
func WithFrameRate(fps int) Option {
	return func(c *config.Config) {
		c.FrameRate = fps
	}
}

// WithEncoderPreset sets the libx264 preset.
func WithEncoderPreset(preset string) Option {
	return func(c *config.Config) {
		c.EncoderPreset = preset
	}
}

// WithVMAF enables per-segment quality scoring.
func WithVMAF() Option {
	return func(c *config.Config) {
		c.EnableVMAF = true
	}
}

// WithVMAFTools overrides the quality tool binary and model locations.
func WithVMAFTools(bin, model string) Option {
	return func(c *config.Config) {
		c.VMAFBin = bin
		c.VMAFModel = model
	}
}

// WithWorkers sets how many representations are processed in parallel.
func WithWorkers(n int) Option {
	return func(c *config.Config) {
		c.Workers = n
	}
}

// WithVideosDir overrides the root directory for per-video working trees.
func WithVideosDir(dir string) Option {
	return func(c *config.Config) {
		c.VideosDir = dir
	}
}

// Prepare runs the full pipeline. A nil reporter discards all progress
// events.
func (p *Preparer) Prepare(ctx context.Context, rep Reporter) (*Result, error) {
	cfg := *p.config

	res, err := pipeline.Run(ctx, &cfg, rep)
	if err != nil {
		return nil, err
	}

	return &Result{
		ManifestPath:    res.ManifestPath,
		VMAFPath:        res.VMAFPath,
		Representations: res.Representations,
		Segments:        res.SegmentCount,
		Elapsed:         res.Elapsed,
	}, nil
}
