package segment

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"dashprep/internal/errors"
)

// IndexInfo holds the timing fields of a chunk's SegmentIndexBox.
type IndexInfo struct {
	Timescale                uint64
	EarliestPresentationTime uint64
}

// StartTime returns the chunk's start offset in seconds.
func (i IndexInfo) StartTime() float64 {
	return float64(i.EarliestPresentationTime) / float64(i.Timescale)
}

const indexBoxMarker = "SegmentIndexBox"

var attrRegex = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*=\s*"([^"]*)"`)

// InspectChunk recovers the container-level timing index of one chunk file
// by dumping its box structure with MP4Box.
func InspectChunk(ctx context.Context, chunkPath string) (IndexInfo, error) {
	cmd := exec.CommandContext(ctx, "MP4Box", "-std", "-diso", chunkPath)

	// MP4Box splits the dump between stdout and stderr depending on version.
	output, err := cmd.CombinedOutput()
	if err != nil {
		return IndexInfo{}, errors.WrapExecError("MP4Box -diso "+chunkPath, err, strings.TrimSpace(string(output)))
	}

	info, err := parseIndexOutput(string(output))
	if err != nil {
		return IndexInfo{}, fmt.Errorf("inspecting %s: %w", chunkPath, err)
	}
	return info, nil
}

// parseIndexOutput extracts timescale and earliest_presentation_time from an
// MP4Box box dump. Attributes are matched by name, so their order and the
// surrounding whitespace do not matter.
func parseIndexOutput(output string) (IndexInfo, error) {
	idx := strings.Index(output, indexBoxMarker)
	if idx < 0 {
		return IndexInfo{}, errors.NewSegmentIndexError("no " + indexBoxMarker + " in tool output")
	}

	// Attributes live between the marker and the closing of its tag.
	tag := output[idx:]
	if end := strings.IndexAny(tag, ">\n"); end >= 0 {
		tag = tag[:end]
	}

	attrs := make(map[string]string)
	for _, m := range attrRegex.FindAllStringSubmatch(tag, -1) {
		attrs[m[1]] = m[2]
	}

	timescale, err := parseAttr(attrs, "timescale")
	if err != nil {
		return IndexInfo{}, err
	}
	if timescale == 0 {
		return IndexInfo{}, errors.NewSegmentIndexError("timescale is zero")
	}

	ept, err := parseAttr(attrs, "earliest_presentation_time")
	if err != nil {
		return IndexInfo{}, err
	}

	return IndexInfo{Timescale: timescale, EarliestPresentationTime: ept}, nil
}

func parseAttr(attrs map[string]string, name string) (uint64, error) {
	raw, ok := attrs[name]
	if !ok {
		return 0, errors.NewSegmentIndexError("missing attribute " + name + " on " + indexBoxMarker)
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.NewSegmentIndexError(fmt.Sprintf("attribute %s is not an integer: %q", name, raw))
	}
	return v, nil
}
