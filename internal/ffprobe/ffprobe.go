// Package ffprobe provides functions for extracting media information using ffprobe.
package ffprobe

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"

	"dashprep/internal/errors"
)

// MediaInfo contains basic media information.
type MediaInfo struct {
	Duration    float64
	Width       int
	Height      int
	TotalFrames uint64
}

// ffprobeOutput represents the JSON output from ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	NbFrames  string `json:"nb_frames"`
}

// runFFprobe executes ffprobe and returns the raw JSON output.
func runFFprobe(ctx context.Context, inputPath string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, errors.WrapExecError("ffprobe", err, "")
	}
	return output, nil
}

// parseFFprobeOutput parses raw ffprobe JSON.
func parseFFprobeOutput(data []byte) (*ffprobeOutput, error) {
	var result ffprobeOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.NewJSONParseError("failed to parse ffprobe output", err)
	}
	return &result, nil
}

// extractMediaInfo pulls duration and video stream properties out of a probe.
func extractMediaInfo(probe *ffprobeOutput, inputPath string) (*MediaInfo, error) {
	info := &MediaInfo{}

	if probe.Format.Duration != "" {
		if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
			info.Duration = d
		}
	}

	var videoStream *ffprobeStream
	for i := range probe.Streams {
		if probe.Streams[i].CodecType == "video" {
			videoStream = &probe.Streams[i]
			break
		}
	}
	if videoStream == nil {
		return nil, errors.NewProbeError("no video stream found in " + inputPath)
	}

	info.Width = videoStream.Width
	info.Height = videoStream.Height
	if videoStream.NbFrames != "" {
		if frames, err := strconv.ParseUint(videoStream.NbFrames, 10, 64); err == nil {
			info.TotalFrames = frames
		}
	}

	return info, nil
}

// GetMediaInfo returns duration, dimensions and frame count for a file.
func GetMediaInfo(ctx context.Context, inputPath string) (*MediaInfo, error) {
	output, err := runFFprobe(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	probe, err := parseFFprobeOutput(output)
	if err != nil {
		return nil, err
	}

	return extractMediaInfo(probe, inputPath)
}

// GetDuration returns the container duration in seconds, or 0 when the
// container does not declare one.
func GetDuration(ctx context.Context, inputPath string) (float64, error) {
	info, err := GetMediaInfo(ctx, inputPath)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}
