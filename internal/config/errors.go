// Package config provides configuration types and defaults for dashprep.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInvalidLadder indicates an unknown ladder name was provided.
	ErrInvalidLadder = errors.New("invalid ladder")

	// ErrNoRates indicates an empty bitrate list.
	ErrNoRates = errors.New("no target bitrates")

	// ErrInvalidRate indicates a non-positive bitrate value.
	ErrInvalidRate = errors.New("bitrate out of range")

	// ErrDuplicateRate indicates the same bitrate was requested twice.
	ErrDuplicateRate = errors.New("duplicate bitrate")

	// ErrInvalidFrameRate indicates a non-positive frame rate.
	ErrInvalidFrameRate = errors.New("frame rate out of range")

	// ErrInvalidSegment indicates a non-positive segment duration.
	ErrInvalidSegment = errors.New("segment duration out of range")

	// ErrInvalidWorkers indicates a non-positive worker count.
	ErrInvalidWorkers = errors.New("worker count out of range")
)
