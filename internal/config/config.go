package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Default constants
const (
	// DefaultSegmentSeconds is the segment duration in seconds.
	DefaultSegmentSeconds int = 5

	// DefaultFrameRate is the output frame rate for all representations.
	DefaultFrameRate int = 24

	// DefaultCutFrameRate is the reduced sampling rate used when cutting
	// raw segment windows for quality comparison.
	DefaultCutFrameRate int = 10

	// DefaultWorkers is the number of representations processed in parallel.
	DefaultWorkers int = 1

	// DefaultEncoderPreset is the libx264 preset for representation encodes.
	DefaultEncoderPreset string = "slow"

	// DefaultVideosDir is the root directory for per-video working trees.
	DefaultVideosDir string = "videos"

	// DefaultVMAFBin is the expected location of the vmafossexec binary.
	DefaultVMAFBin string = "./deps/vmaf/libvmaf/build/tools/vmafossexec"

	// DefaultVMAFModel is the expected location of the VMAF model file.
	DefaultVMAFModel string = "./deps/vmaf/model/vmaf_v0.6.1.json"

	// MaxSegmentSeconds is the largest accepted segment duration.
	MaxSegmentSeconds int = 30

	// MaxFrameRate is the largest accepted frame rate.
	MaxFrameRate int = 120
)

// DefaultRates is the bitrate ladder used when none is specified (kbps).
var DefaultRates = []int{300, 600, 1200, 2500}

// Ladder represents a named bitrate ladder grouping.
type Ladder string

const (
	LadderMobile Ladder = "mobile"
	LadderWeb    Ladder = "web"
	LadderFull   Ladder = "full"
)

// ParseLadder parses a string into a Ladder.
func ParseLadder(s string) (Ladder, error) {
	switch strings.ToLower(s) {
	case "mobile":
		return LadderMobile, nil
	case "web":
		return LadderWeb, nil
	case "full":
		return LadderFull, nil
	default:
		return "", fmt.Errorf("%w: '%s', valid options: mobile, web, full", ErrInvalidLadder, s)
	}
}

// String returns the string representation of the ladder.
func (l Ladder) String() string {
	return string(l)
}

// Rates returns the bitrate list for a given ladder.
func (l Ladder) Rates() []int {
	switch l {
	case LadderMobile:
		return []int{150, 300, 600}
	case LadderWeb:
		return []int{300, 600, 1200}
	case LadderFull:
		return append([]int(nil), DefaultRates...)
	default:
		return append([]int(nil), DefaultRates...)
	}
}

// Config holds all configuration for one preparation run.
type Config struct {
	// Identity and paths
	VideoName string // Directory name under VideosDir
	InputPath string // Source media file
	VideosDir string // Root for per-video working trees
	LogDir    string // Optional, defaults to <video dir>/logs

	// Pipeline parameters
	Rates          []int // Target bitrates in kbps
	FrameRate      int   // Output fps for every representation
	SegmentSeconds int   // Segment duration in seconds
	EncoderPreset  string

	// Quality scoring
	EnableVMAF   bool
	VMAFBin      string
	VMAFModel    string
	CutFrameRate int // Sampling rate for raw segment cuts

	// Processing options
	Workers int // Representations encoded+segmented in parallel

	// Selected ladder (optional)
	Ladder *Ladder
}

// NewConfig creates a new Config with default values.
func NewConfig(videoName, inputPath string) *Config {
	return &Config{
		VideoName:      videoName,
		InputPath:      inputPath,
		VideosDir:      DefaultVideosDir,
		Rates:          append([]int(nil), DefaultRates...),
		FrameRate:      DefaultFrameRate,
		SegmentSeconds: DefaultSegmentSeconds,
		EncoderPreset:  DefaultEncoderPreset,
		VMAFBin:        DefaultVMAFBin,
		VMAFModel:      DefaultVMAFModel,
		CutFrameRate:   DefaultCutFrameRate,
		Workers:        DefaultWorkers,
	}
}

// ApplyLadder applies the given ladder's bitrate list to the config.
func (c *Config) ApplyLadder(l Ladder) {
	c.Ladder = &l
	c.Rates = l.Rates()
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.VideoName == "" {
		return fmt.Errorf("video name is required")
	}
	if c.InputPath == "" {
		return fmt.Errorf("input path is required")
	}

	if len(c.Rates) == 0 {
		return ErrNoRates
	}
	seen := make(map[int]bool, len(c.Rates))
	for _, r := range c.Rates {
		if r <= 0 {
			return fmt.Errorf("%w: must be positive, got %d", ErrInvalidRate, r)
		}
		if seen[r] {
			return fmt.Errorf("%w: %d", ErrDuplicateRate, r)
		}
		seen[r] = true
	}

	if c.FrameRate <= 0 || c.FrameRate > MaxFrameRate {
		return fmt.Errorf("%w: must be 1-%d, got %d", ErrInvalidFrameRate, MaxFrameRate, c.FrameRate)
	}

	if c.SegmentSeconds <= 0 || c.SegmentSeconds > MaxSegmentSeconds {
		return fmt.Errorf("%w: must be 1-%d, got %d", ErrInvalidSegment, MaxSegmentSeconds, c.SegmentSeconds)
	}

	if c.Workers < 1 {
		return fmt.Errorf("%w: must be >= 1, got %d", ErrInvalidWorkers, c.Workers)
	}

	return nil
}

// GOP returns the forced keyframe interval in frames. Keyframes land
// exactly on segment boundaries so independently encoded representations
// segment at identical time offsets.
func (c *Config) GOP() int {
	return c.FrameRate * c.SegmentSeconds
}

// SortedRates returns the bitrates in ascending order. The position of a
// rate in this list is its rank identifier in the merged manifest.
func (c *Config) SortedRates() []int {
	sorted := append([]int(nil), c.Rates...)
	sort.Ints(sorted)
	return sorted
}

// ReferenceRate returns the highest requested bitrate, which serves as the
// quality baseline.
func (c *Config) ReferenceRate() int {
	ref := c.Rates[0]
	for _, r := range c.Rates[1:] {
		if r > ref {
			ref = r
		}
	}
	return ref
}

// VideoDir returns the per-video working directory.
func (c *Config) VideoDir() string {
	return filepath.Join(c.VideosDir, c.VideoName)
}

// TmpDir returns the scratch directory for encoded representations.
func (c *Config) TmpDir() string {
	return filepath.Join(c.VideoDir(), "tmp")
}

// TracksDir returns the directory holding segmented tracks and the manifest.
func (c *Config) TracksDir() string {
	return filepath.Join(c.VideoDir(), "tracks")
}

// RepPath returns the encoded file path for a bitrate.
func (c *Config) RepPath(rate int) string {
	return filepath.Join(c.TmpDir(), fmt.Sprintf("rep_%d.mp4", rate))
}

// SegmentDir returns the stable segment directory for a bitrate.
func (c *Config) SegmentDir(rate int) string {
	return filepath.Join(c.TracksDir(), fmt.Sprintf("video_%d", rate))
}

// ScratchDir returns the private segmenter scratch directory for a bitrate.
func (c *Config) ScratchDir(rate int) string {
	return filepath.Join(c.TmpDir(), fmt.Sprintf("mp4box_%d", rate))
}

// YUVDir returns the directory for raw pixel buffers during quality scoring.
func (c *Config) YUVDir() string {
	return filepath.Join(c.VideoDir(), "yuv")
}

// ManifestPath returns the merged manifest location.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.TracksDir(), "manifest.mpd")
}

// VMAFPath returns the aggregate quality record location.
func (c *Config) VMAFPath() string {
	return filepath.Join(c.VideoDir(), "vmaf.json")
}

// GetLogDir returns the log directory, falling back to the video dir.
func (c *Config) GetLogDir() string {
	if c.LogDir != "" {
		return c.LogDir
	}
	return filepath.Join(c.VideoDir(), "logs")
}
