// Package ffmpeg builds and executes FFmpeg invocations for the pipeline.
package ffmpeg

import (
	"fmt"
	"strconv"
)

// RepParams describes one representation encode.
type RepParams struct {
	InputPath  string
	OutputPath string
	RateKbps   int
	FrameRate  int
	GOP        int // Forced keyframe interval in frames
	Preset     string
	Duration   float64 // Source duration in seconds, used for progress
}

// BuildRepArgs builds the argument list for encoding one representation.
// Keyframes are forced at exact GOP boundaries and scene-cut insertion is
// disabled so every representation can be segmented at identical offsets.
func BuildRepArgs(p *RepParams) []string {
	return []string{
		"-y",
		"-i", p.InputPath,
		"-an",
		"-c:v", "libx264",
		"-preset", p.Preset,
		"-r", strconv.Itoa(p.FrameRate),
		"-g", strconv.Itoa(p.GOP),
		"-keyint_min", strconv.Itoa(p.GOP),
		"-sc_threshold", "0",
		"-b:v", fmt.Sprintf("%dk", p.RateKbps),
		"-maxrate", fmt.Sprintf("%dk", 2*p.RateKbps),
		"-bufsize", fmt.Sprintf("%dk", 4*p.RateKbps),
		p.OutputPath,
	}
}

// RawParams describes a conversion to a schema-free yuv420p buffer.
type RawParams struct {
	InputPath  string
	OutputPath string
	Width      int
	Height     int
}

// BuildRawArgs builds the argument list for converting an encoded file to
// raw yuv420p scaled to the comparison resolution.
func BuildRawArgs(p *RawParams) []string {
	return []string{
		"-y",
		"-i", p.InputPath,
		"-pix_fmt", "yuv420p",
		"-vsync", "0",
		"-vf", fmt.Sprintf("scale=%d:%d", p.Width, p.Height),
		p.OutputPath,
	}
}

// CutParams describes cutting one segment window out of a raw buffer.
type CutParams struct {
	InputPath  string
	OutputPath string
	Width      int
	Height     int
	FrameRate  int // Reduced sampling rate to bound comparison cost
	Start      float64
	Duration   float64
}

// BuildCutArgs builds the argument list for extracting a time window from a
// raw buffer. Raw input carries no header, so dimensions and rate are
// declared on the input side.
func BuildCutArgs(p *CutParams) []string {
	return []string{
		"-y",
		"-s:v", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-r", strconv.Itoa(p.FrameRate),
		"-i", p.InputPath,
		"-ss", formatSeconds(p.Start),
		"-t", formatSeconds(p.Duration),
		"-pix_fmt", "yuv420p",
		p.OutputPath,
	}
}

// formatSeconds renders a seconds value without trailing zeros.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
