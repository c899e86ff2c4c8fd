// Package pipeline orchestrates the preparation stages for one video.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"dashprep/internal/config"
	"dashprep/internal/encode"
	"dashprep/internal/errors"
	"dashprep/internal/ffmpeg"
	"dashprep/internal/ffprobe"
	"dashprep/internal/manifest"
	"dashprep/internal/reporter"
	"dashprep/internal/segment"
	"dashprep/internal/util"
	"dashprep/internal/validation"
	"dashprep/internal/vmaf"
)

// Result contains the outcome of one preparation run.
type Result struct {
	ManifestPath    string
	VMAFPath        string
	Representations int
	SegmentCount    int
	Resolutions     map[int]manifest.Resolution
	Elapsed         time.Duration
}

// repOutput is one representation's encode and segmentation result.
type repOutput struct {
	encode     encode.Result
	boundaries []segment.Boundary
}

// Run executes the full preparation pipeline: encode every representation,
// segment each one, verify alignment, merge the manifests and, when
// enabled, score every segment.
func Run(ctx context.Context, cfg *config.Config, rep reporter.Reporter) (*Result, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	startTime := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !util.FileExists(cfg.InputPath) {
		return nil, errors.NewPathError("input file not found: " + cfg.InputPath)
	}

	rep.RunStarted(reporter.RunStartInfo{
		VideoName:      cfg.VideoName,
		InputFile:      cfg.InputPath,
		Rates:          cfg.SortedRates(),
		SegmentSeconds: cfg.SegmentSeconds,
		FrameRate:      cfg.FrameRate,
		GOP:            cfg.GOP(),
		VMAFEnabled:    cfg.EnableVMAF,
	})

	media, err := ffprobe.GetMediaInfo(ctx, cfg.InputPath)
	if err != nil {
		return nil, err
	}
	rep.SourceProbed(reporter.SourceSummary{
		Duration:    util.FormatDuration(media.Duration),
		Resolution:  fmt.Sprintf("%dx%d", media.Width, media.Height),
		TotalFrames: media.TotalFrames,
	})

	stale, err := encode.StaleParams(cfg)
	if err != nil {
		return nil, err
	}
	if stale {
		rep.Warning("encode parameters changed since last run; re-encoding every representation")
	}

	outputs, err := buildRepresentations(ctx, cfg, media, stale, rep)
	if err != nil {
		return nil, err
	}
	// Recorded only after every representation was rebuilt under the
	// current parameters.
	if err := encode.WriteDigest(cfg); err != nil {
		return nil, err
	}

	boundaries := make(map[int][]segment.Boundary, len(outputs))
	repPaths := make(map[int]string, len(outputs))
	for rate, out := range outputs {
		boundaries[rate] = out.boundaries
		repPaths[rate] = out.encode.Path
	}

	alignment := validation.CheckAlignment(boundaries)
	rep.AlignmentChecked(alignmentSummary(alignment))
	if !alignment.IsValid() {
		return nil, fmt.Errorf("representations are not segment-aligned: %s",
			strings.Join(alignment.GetFailures(), "; "))
	}

	rep.StageProgress(reporter.StageProgress{Stage: "merge", Message: "reconciling manifest fragments"})
	resolutions, err := manifest.Merge(cfg)
	if err != nil {
		return nil, err
	}
	rep.ManifestMerged(reporter.ManifestSummary{
		Path:            cfg.ManifestPath(),
		Representations: len(resolutions),
	})

	result := &Result{
		ManifestPath:    cfg.ManifestPath(),
		Representations: len(resolutions),
		SegmentCount:    len(boundaries[cfg.ReferenceRate()]),
		Resolutions:     resolutions,
	}

	if cfg.EnableVMAF {
		rep.StageProgress(reporter.StageProgress{Stage: "quality", Message: "scoring segments against reference"})
		err := vmaf.Evaluate(ctx, cfg, vmaf.Inputs{
			RepPaths:      repPaths,
			Boundaries:    boundaries,
			Resolutions:   resolutions,
			TotalDuration: media.Duration,
			OnRepStart:    rep.ScoringStarted,
			OnSegment: func(rate, seg, total int, score float64) {
				rep.SegmentScored(reporter.ScoreUpdate{
					Rate: rate, Segment: seg, TotalSegments: total, Score: score,
				})
			},
		})
		if err != nil {
			return nil, err
		}
		result.VMAFPath = cfg.VMAFPath()
	}

	result.Elapsed = time.Since(startTime)
	rep.RunComplete(reporter.RunOutcome{
		VideoName:       cfg.VideoName,
		ManifestPath:    result.ManifestPath,
		VMAFPath:        result.VMAFPath,
		Representations: result.Representations,
		Segments:        result.SegmentCount,
		TotalTime:       result.Elapsed,
	})

	return result, nil
}

// buildRepresentations encodes and segments every bitrate. Representations
// are independent until reconciliation, so with Workers > 1 they run in
// parallel; per-frame progress is only wired up in sequential runs where a
// single progress bar makes sense. With force set, existing encodes are
// rebuilt instead of reused.
func buildRepresentations(ctx context.Context, cfg *config.Config, media *ffprobe.MediaInfo, force bool, rep reporter.Reporter) (map[int]repOutput, error) {
	rates := cfg.SortedRates()
	outputs := make([]repOutput, len(rates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	sequential := cfg.Workers == 1
	for i, rate := range rates {
		i, rate := i, rate
		g.Go(func() error {
			var cb ffmpeg.ProgressCallback
			if sequential {
				rep.EncodeStarted(rate, media.TotalFrames)
				cb = func(p ffmpeg.Progress) {
					rep.EncodeProgress(reporter.ProgressSnapshot{
						Rate:         rate,
						CurrentFrame: p.CurrentFrame,
						TotalFrames:  p.TotalFrames,
						Percent:      p.Percent,
						Speed:        p.Speed,
						FPS:          p.FPS,
						ETA:          p.ETA,
					})
				}
			}

			encStart := time.Now()
			encoded, err := encode.BuildRep(gctx, cfg, rate, media.Duration, media.TotalFrames, force, cb)
			if err != nil {
				return err
			}

			size, _ := util.GetFileSize(encoded.Path)
			rep.EncodeComplete(reporter.EncodeOutcome{
				Rate:       rate,
				OutputFile: encoded.Path,
				Skipped:    encoded.Skipped,
				Size:       size,
				TotalTime:  time.Since(encStart),
			})

			bounds, err := segment.Extract(gctx, cfg, rate, encoded.Path)
			if err != nil {
				return err
			}
			summary := reporter.SegmentSummary{Rate: rate, Count: len(bounds)}
			if len(bounds) > 0 {
				summary.LastStart = bounds[len(bounds)-1].StartTime
			}
			rep.SegmentsExtracted(summary)

			outputs[i] = repOutput{encode: encoded, boundaries: bounds}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	byRate := make(map[int]repOutput, len(rates))
	for i, rate := range rates {
		byRate[rate] = outputs[i]
	}
	return byRate, nil
}

func alignmentSummary(result *validation.Result) reporter.AlignmentSummary {
	summary := reporter.AlignmentSummary{Passed: result.IsValid()}
	for _, step := range result.GetValidationSteps() {
		summary.Steps = append(summary.Steps, reporter.ValidationStep{
			Name:    step.Name,
			Passed:  step.Passed,
			Details: step.Details,
		})
	}
	return summary
}
