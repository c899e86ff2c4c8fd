// Package vmaf scores each segment of every representation against the
// highest-bitrate representation.
package vmaf

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"dashprep/internal/config"
	"dashprep/internal/errors"
	"dashprep/internal/ffmpeg"
	"dashprep/internal/logging"
	"dashprep/internal/manifest"
	"dashprep/internal/segment"
	"dashprep/internal/util"
)

// SegmentScore is one segment's entry in the aggregate quality record.
type SegmentScore struct {
	StartTime float64 `json:"start_time"`
	VMAF      float64 `json:"vmaf"`
}

// Report maps bitrate to segment number to score.
type Report map[int]map[int]SegmentScore

// Inputs collects everything the evaluator needs from the earlier stages.
type Inputs struct {
	RepPaths      map[int]string
	Boundaries    map[int][]segment.Boundary
	Resolutions   map[int]manifest.Resolution
	TotalDuration float64

	// OnRepStart and OnSegment, when set, receive scoring progress.
	OnRepStart func(rate, totalSegments int)
	OnSegment  func(rate, seg, totalSegments int, score float64)
}

// Evaluate computes per-segment quality scores for every representation
// and writes the aggregate record. A no-op when the record already exists.
//
// Every representation is converted to raw yuv420p at the reference
// resolution exactly once; segment windows are then cut from that buffer.
// The reference is scored against itself too, which always yields a near
// perfect score but keeps the record uniform across bitrates.
func Evaluate(ctx context.Context, cfg *config.Config, in Inputs) error {
	outPath := cfg.VMAFPath()
	if util.FileExists(outPath) {
		logging.Info("quality record exists, skipping scoring", "path", outPath)
		return nil
	}

	if err := checkPrereqs(cfg); err != nil {
		return err
	}

	refRate := cfg.ReferenceRate()
	res, ok := in.Resolutions[refRate]
	if !ok {
		return errors.NewManifestError(fmt.Sprintf("no resolution recorded for reference rate %d", refRate), nil)
	}

	refYUV, err := convertToYUV(ctx, cfg, in.RepPaths[refRate], res, refRate)
	if err != nil {
		return err
	}

	report := make(Report, len(cfg.Rates))
	for _, rate := range cfg.SortedRates() {
		curYUV := refYUV
		if rate != refRate {
			curYUV, err = convertToYUV(ctx, cfg, in.RepPaths[rate], res, rate)
			if err != nil {
				return err
			}
		}

		scores, err := scoreRepresentation(ctx, cfg, rate, curYUV, refYUV, res, in)
		if err != nil {
			return err
		}
		report[rate] = scores
	}

	// Raw buffers are large; drop them as soon as scoring is done.
	if err := os.RemoveAll(cfg.YUVDir()); err != nil {
		return errors.NewIOError("cannot remove raw buffer directory", err)
	}

	return writeReport(report, outPath)
}

// checkPrereqs verifies the quality tool binary and model file exist
// before any expensive conversion starts.
func checkPrereqs(cfg *config.Config) error {
	if !util.FileExists(cfg.VMAFBin) {
		return errors.NewMissingPrereqError("VMAF binary", cfg.VMAFBin)
	}
	if !util.FileExists(cfg.VMAFModel) {
		return errors.NewMissingPrereqError("VMAF model", cfg.VMAFModel)
	}
	return nil
}

// convertToYUV renders one representation to raw yuv420p at the reference
// resolution. Conversion happens once per representation, not per segment.
func convertToYUV(ctx context.Context, cfg *config.Config, repPath string, res manifest.Resolution, rate int) (string, error) {
	if err := util.EnsureDirectory(cfg.YUVDir()); err != nil {
		return "", errors.NewIOError("cannot create raw buffer directory", err)
	}

	outPath := filepath.Join(cfg.YUVDir(), fmt.Sprintf("video_%d.yuv", rate))
	args := ffmpeg.BuildRawArgs(&ffmpeg.RawParams{
		InputPath:  repPath,
		OutputPath: outPath,
		Width:      res.Width,
		Height:     res.Height,
	})

	logging.Debug("converting representation to raw buffer", "rate", rate, "resolution", fmt.Sprintf("%dx%d", res.Width, res.Height))
	if err := ffmpeg.Run(ctx, args, 0, 0, nil); err != nil {
		return "", fmt.Errorf("converting %d kbps representation to raw: %w", rate, err)
	}
	return outPath, nil
}

// scoreRepresentation scores every segment of one representation against
// the reference buffer.
func scoreRepresentation(ctx context.Context, cfg *config.Config, rate int, curYUV, refYUV string, res manifest.Resolution, in Inputs) (map[int]SegmentScore, error) {
	bounds := in.Boundaries[rate]
	if len(bounds) == 0 {
		return nil, errors.NewSegmentIndexError(fmt.Sprintf("no segment boundaries for rate %d", rate))
	}
	durations := segment.Durations(bounds, in.TotalDuration)

	if in.OnRepStart != nil {
		in.OnRepStart(rate, len(bounds))
	}

	curCut := filepath.Join(cfg.YUVDir(), "cut_candidate.yuv")
	refCut := filepath.Join(cfg.YUVDir(), "cut_reference.yuv")
	logPath := filepath.Join(cfg.YUVDir(), "vmaf_out.json")

	scores := make(map[int]SegmentScore, len(bounds))
	for i, b := range bounds {
		if err := cutWindow(ctx, cfg, curYUV, curCut, res, b.StartTime, durations[i]); err != nil {
			return nil, err
		}
		if err := cutWindow(ctx, cfg, refYUV, refCut, res, b.StartTime, durations[i]); err != nil {
			return nil, err
		}

		score, err := runQualityTool(ctx, cfg, res, refCut, curCut, logPath)
		if err != nil {
			return nil, fmt.Errorf("scoring segment %d of %d kbps representation: %w", b.Number, rate, err)
		}
		if score < 0 || score > 100 {
			logging.Warn("score outside expected range", "rate", rate, "segment", b.Number, "score", score)
		}

		scores[b.Number] = SegmentScore{StartTime: b.StartTime, VMAF: score}

		for _, p := range []string{curCut, refCut, logPath} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return nil, errors.NewIOError("cannot remove scratch file "+p, err)
			}
		}

		if in.OnSegment != nil {
			in.OnSegment(rate, b.Number, len(bounds), score)
		}
	}

	return scores, nil
}

// cutWindow extracts one segment's time window from a raw buffer at the
// reduced comparison frame rate.
func cutWindow(ctx context.Context, cfg *config.Config, inPath, outPath string, res manifest.Resolution, start, duration float64) error {
	args := ffmpeg.BuildCutArgs(&ffmpeg.CutParams{
		InputPath:  inPath,
		OutputPath: outPath,
		Width:      res.Width,
		Height:     res.Height,
		FrameRate:  cfg.CutFrameRate,
		Start:      start,
		Duration:   duration,
	})
	if err := ffmpeg.Run(ctx, args, 0, 0, nil); err != nil {
		return fmt.Errorf("cutting window at %.3fs: %w", start, err)
	}
	return nil
}

// runQualityTool invokes vmafossexec on one reference/candidate cut pair
// and extracts the scalar score from its JSON report.
func runQualityTool(ctx context.Context, cfg *config.Config, res manifest.Resolution, refCut, curCut, logPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, cfg.VMAFBin,
		"yuv420p",
		strconv.Itoa(res.Width),
		strconv.Itoa(res.Height),
		refCut,
		curCut,
		cfg.VMAFModel,
		"--log", logPath,
		"--log-fmt", "json",
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return 0, errors.NewCancelledError()
		}
		return 0, errors.WrapExecError(cfg.VMAFBin, err, strings.TrimSpace(string(output)))
	}

	raw, err := os.ReadFile(logPath)
	if err != nil {
		return 0, errors.NewIOError("cannot read quality report "+logPath, err)
	}
	return ExtractScore(raw)
}

// writeReport persists the aggregate record keyed bitrate, segment number.
func writeReport(report Report, path string) error {
	data, err := json.Marshal(report)
	if err != nil {
		return errors.NewJSONParseError("cannot serialize quality record", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewIOError("cannot write quality record "+path, err)
	}
	logging.Info("quality record written", "path", path)
	return nil
}
