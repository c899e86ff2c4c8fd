// Package encode builds the per-bitrate representation set.
package encode

import (
	"context"
	"fmt"
	"os"

	"dashprep/internal/config"
	"dashprep/internal/ffmpeg"
	"dashprep/internal/logging"
	"dashprep/internal/util"
)

// Result describes one built representation.
type Result struct {
	Rate    int
	Path    string
	Skipped bool // True when an existing encode was reused
}

// BuildRep encodes one representation, or reuses the existing output file.
// When force is true an existing file is re-encoded instead of reused.
//
// The keyframe interval is pinned to exactly one segment's worth of frames
// with scene-cut insertion disabled; without that, independently encoded
// representations would not segment at identical time boundaries.
func BuildRep(ctx context.Context, cfg *config.Config, rate int, duration float64, totalFrames uint64, force bool, cb ffmpeg.ProgressCallback) (Result, error) {
	outPath := cfg.RepPath(rate)

	if !force && util.FileExists(outPath) {
		logging.Debug("representation exists, skipping encode", "rate", rate, "path", outPath)
		return Result{Rate: rate, Path: outPath, Skipped: true}, nil
	}

	if err := util.EnsureDirectory(cfg.TmpDir()); err != nil {
		return Result{}, fmt.Errorf("failed to create tmp directory: %w", err)
	}

	args := ffmpeg.BuildRepArgs(&ffmpeg.RepParams{
		InputPath:  cfg.InputPath,
		OutputPath: outPath,
		RateKbps:   rate,
		FrameRate:  cfg.FrameRate,
		GOP:        cfg.GOP(),
		Preset:     cfg.EncoderPreset,
		Duration:   duration,
	})

	logging.Info("encoding representation", "rate", rate, "gop", cfg.GOP())
	if err := ffmpeg.Run(ctx, args, duration, totalFrames, cb); err != nil {
		// Do not leave a truncated encode behind to be "reused" next run.
		_ = os.Remove(outPath)
		return Result{}, fmt.Errorf("encoding %d kbps representation: %w", rate, err)
	}

	return Result{Rate: rate, Path: outPath}, nil
}
