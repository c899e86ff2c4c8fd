package validation

import (
	"fmt"
	"sort"

	"dashprep/internal/segment"
)

// boundaryDriftToleranceSecs is the maximum allowed difference between the
// earliest and latest start time of the same segment number across
// representations. With keyframes forced on segment boundaries the drift
// should be zero; the tolerance absorbs timescale rounding only.
const boundaryDriftToleranceSecs = 0.01

// CheckAlignment verifies that every representation segmented into the same
// number of chunks at the same time boundaries. The merge and the quality
// evaluator both assume segment n covers the same window in every
// representation, so a failing result means those stages would silently
// compare or advertise mismatched content.
func CheckAlignment(boundaries map[int][]segment.Boundary) *Result {
	result := &Result{SegmentCounts: make(map[int]int, len(boundaries))}

	rates := make([]int, 0, len(boundaries))
	for rate := range boundaries {
		rates = append(rates, rate)
	}
	sort.Ints(rates)

	for _, rate := range rates {
		result.SegmentCounts[rate] = len(boundaries[rate])
	}

	result.IsCountAligned, result.CountMessage = checkCounts(result.SegmentCounts, rates)
	result.IsMonotonic, result.MonotonicMessage = checkMonotonic(boundaries, rates)

	if result.IsCountAligned {
		result.IsBoundaryAligned, result.MaxDriftSecs, result.BoundaryMessage = checkDrift(boundaries, rates)
	} else {
		result.IsBoundaryAligned = false
		result.BoundaryMessage = "not checked, segment counts differ"
	}

	return result
}

func checkCounts(counts map[int]int, rates []int) (bool, string) {
	if len(rates) == 0 {
		return false, "no representations to validate"
	}

	first := counts[rates[0]]
	for _, rate := range rates[1:] {
		if counts[rate] != first {
			return false, "segment counts differ: " + formatCounts(counts, rates)
		}
	}
	return true, fmt.Sprintf("%d segments in all %d representations", first, len(rates))
}

func checkMonotonic(boundaries map[int][]segment.Boundary, rates []int) (bool, string) {
	for _, rate := range rates {
		bounds := boundaries[rate]
		for i := 1; i < len(bounds); i++ {
			if bounds[i].StartTime < bounds[i-1].StartTime {
				return false, fmt.Sprintf("start times regress in %d kbps representation: segment %d starts at %.3fs after %.3fs",
					rate, bounds[i].Number, bounds[i].StartTime, bounds[i-1].StartTime)
			}
		}
	}
	return true, "start times non-decreasing in every representation"
}

func checkDrift(boundaries map[int][]segment.Boundary, rates []int) (bool, float64, string) {
	if len(rates) < 2 {
		return true, 0, "single representation, nothing to align"
	}

	maxDrift := 0.0
	worstSegment := 0
	count := len(boundaries[rates[0]])

	for i := 0; i < count; i++ {
		lo := boundaries[rates[0]][i].StartTime
		hi := lo
		for _, rate := range rates[1:] {
			t := boundaries[rate][i].StartTime
			if t < lo {
				lo = t
			}
			if t > hi {
				hi = t
			}
		}
		if drift := hi - lo; drift > maxDrift {
			maxDrift = drift
			worstSegment = boundaries[rates[0]][i].Number
		}
	}

	if maxDrift > boundaryDriftToleranceSecs {
		return false, maxDrift, fmt.Sprintf("segment %d boundaries drift by %.4fs across representations (max: %.4fs)",
			worstSegment, maxDrift, boundaryDriftToleranceSecs)
	}
	return true, maxDrift, fmt.Sprintf("boundaries aligned within %.4fs", maxDrift)
}
