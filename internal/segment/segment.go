// Package segment drives the external segmenter and derives per-segment
// timing for each representation.
package segment

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"dashprep/internal/config"
	"dashprep/internal/errors"
	"dashprep/internal/logging"
	"dashprep/internal/util"
)

// FragmentName is the per-representation manifest fragment filename within
// its segment directory.
const FragmentName = "intermediate_dash.mpd"

// InitName is the initialization file name within a segment directory.
const InitName = "init.mp4"

// Boundary holds timing metadata for one segment of a representation.
type Boundary struct {
	Number    int // 1-based sequence number
	StartTime float64
}

var chunkNameRegex = regexp.MustCompile(`^[0-9]+\.m4s$`)

// Extract segments one representation into fixed-duration chunks and
// reports each chunk's start time. Any prior segmentation for the bitrate
// is destroyed first.
func Extract(ctx context.Context, cfg *config.Config, rate int, repPath string) ([]Boundary, error) {
	segDir := cfg.SegmentDir(rate)
	if err := util.RecreateDirectory(segDir); err != nil {
		return nil, fmt.Errorf("failed to recreate segment directory: %w", err)
	}

	// The segmenter's output naming is only controllable by prefix, so it
	// runs in a private scratch directory and outputs are relocated after.
	scratch := cfg.ScratchDir(rate)
	if err := util.RecreateDirectory(scratch); err != nil {
		return nil, fmt.Errorf("failed to recreate scratch directory: %w", err)
	}

	if err := runSegmenter(ctx, scratch, repPath, cfg.SegmentSeconds*1000); err != nil {
		return nil, err
	}

	if err := relocateOutputs(scratch, segDir); err != nil {
		return nil, err
	}

	if err := os.RemoveAll(scratch); err != nil {
		return nil, fmt.Errorf("failed to remove scratch directory: %w", err)
	}

	count, err := countChunks(segDir)
	if err != nil {
		return nil, err
	}
	logging.Debug("segmented representation", "rate", rate, "segments", count)

	boundaries := make([]Boundary, 0, count)
	for seg := 1; seg <= count; seg++ {
		info, err := InspectChunk(ctx, filepath.Join(segDir, fmt.Sprintf("%d.m4s", seg)))
		if err != nil {
			return nil, err
		}
		boundaries = append(boundaries, Boundary{Number: seg, StartTime: info.StartTime()})
	}

	return boundaries, nil
}

// runSegmenter invokes MP4Box in dir to cut repPath into segMs chunks.
func runSegmenter(ctx context.Context, dir, repPath string, segMs int) error {
	absRep, err := filepath.Abs(repPath)
	if err != nil {
		return errors.NewPathError("cannot resolve representation path " + repPath)
	}

	cmd := exec.CommandContext(ctx, "MP4Box",
		"-dash", strconv.Itoa(segMs),
		"-dash-profile", "live",
		"-rap",
		"-segment-name", "",
		absRep,
	)
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return errors.NewCancelledError()
		}
		return errors.WrapExecError("MP4Box -dash "+absRep, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// relocateOutputs moves the segmenter's manifest fragment, init file and
// chunks from scratch into the stable segment directory.
func relocateOutputs(scratch, segDir string) error {
	// The fragment's name depends on the input basename.
	fragment, err := util.GlobOne(filepath.Join(scratch, "*_dash.mpd"))
	if err != nil {
		return err
	}
	if fragment == "" {
		return errors.NewPathError("segmenter produced no manifest fragment in " + scratch)
	}
	if err := util.MoveFile(fragment, filepath.Join(segDir, FragmentName)); err != nil {
		return fmt.Errorf("failed to move manifest fragment: %w", err)
	}

	initPath := filepath.Join(scratch, InitName)
	if !util.FileExists(initPath) {
		return errors.NewPathError("segmenter produced no initialization file in " + scratch)
	}
	if err := util.MoveFile(initPath, filepath.Join(segDir, InitName)); err != nil {
		return fmt.Errorf("failed to move initialization file: %w", err)
	}

	chunks, err := filepath.Glob(filepath.Join(scratch, "*.m4s"))
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return errors.NewPathError("segmenter produced no chunks in " + scratch)
	}
	for _, chunk := range chunks {
		if err := util.MoveFile(chunk, filepath.Join(segDir, filepath.Base(chunk))); err != nil {
			return fmt.Errorf("failed to move chunk %s: %w", chunk, err)
		}
	}

	return nil
}

// countChunks counts numbered chunk files in a segment directory. The
// count is discovered from disk, never assumed from the requested duration.
func countChunks(segDir string) (int, error) {
	entries, err := os.ReadDir(segDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read segment directory: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && chunkNameRegex.MatchString(entry.Name()) {
			count++
		}
	}
	return count, nil
}

// Durations derives per-segment durations from boundaries. For every
// segment but the last, the duration is exactly the distance to the next
// boundary. The last segment uses totalDuration when the container
// declares one; otherwise it falls back to the penultimate segment's
// length, which is an approximation.
func Durations(boundaries []Boundary, totalDuration float64) []float64 {
	n := len(boundaries)
	if n == 0 {
		return nil
	}

	durations := make([]float64, n)
	for i := 0; i < n-1; i++ {
		durations[i] = boundaries[i+1].StartTime - boundaries[i].StartTime
	}

	last := boundaries[n-1].StartTime
	switch {
	case totalDuration > last:
		durations[n-1] = totalDuration - last
	case n >= 2:
		logging.Warn("total duration unknown, approximating final segment with penultimate length")
		durations[n-1] = last - boundaries[n-2].StartTime
	default:
		durations[n-1] = 0
	}

	return durations
}
