package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors the optional TOML config file. Only fields present in
// the file override the built-in defaults and CLI flags supply the rest.
type FileConfig struct {
	VideosDir      string `toml:"videos_dir"`
	LogDir         string `toml:"log_dir"`
	Rates          []int  `toml:"rates"`
	FrameRate      int    `toml:"frame_rate"`
	SegmentSeconds int    `toml:"segment_seconds"`
	EncoderPreset  string `toml:"encoder_preset"`
	Ladder         string `toml:"ladder"`
	Workers        int    `toml:"workers"`

	VMAF VMAFFileConfig `toml:"vmaf"`
}

// VMAFFileConfig holds quality scoring settings from the config file.
type VMAFFileConfig struct {
	Enabled      bool   `toml:"enabled"`
	Binary       string `toml:"binary"`
	Model        string `toml:"model"`
	CutFrameRate int    `toml:"cut_frame_rate"`
}

// LoadFile reads a TOML config file and applies it onto cfg.
func LoadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	var fc FileConfig
	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	return fc.Apply(cfg)
}

// Apply copies the file's explicitly set values onto cfg.
func (fc *FileConfig) Apply(cfg *Config) error {
	if fc.VideosDir != "" {
		cfg.VideosDir = fc.VideosDir
	}
	if fc.LogDir != "" {
		cfg.LogDir = fc.LogDir
	}
	if fc.Ladder != "" {
		ladder, err := ParseLadder(fc.Ladder)
		if err != nil {
			return err
		}
		cfg.ApplyLadder(ladder)
	}
	// An explicit rate list wins over the ladder.
	if len(fc.Rates) > 0 {
		cfg.Rates = append([]int(nil), fc.Rates...)
	}
	if fc.FrameRate != 0 {
		cfg.FrameRate = fc.FrameRate
	}
	if fc.SegmentSeconds != 0 {
		cfg.SegmentSeconds = fc.SegmentSeconds
	}
	if fc.EncoderPreset != "" {
		cfg.EncoderPreset = fc.EncoderPreset
	}
	if fc.Workers != 0 {
		cfg.Workers = fc.Workers
	}

	if fc.VMAF.Enabled {
		cfg.EnableVMAF = true
	}
	if fc.VMAF.Binary != "" {
		cfg.VMAFBin = fc.VMAF.Binary
	}
	if fc.VMAF.Model != "" {
		cfg.VMAFModel = fc.VMAF.Model
	}
	if fc.VMAF.CutFrameRate != 0 {
		cfg.CutFrameRate = fc.VMAF.CutFrameRate
	}

	return nil
}
