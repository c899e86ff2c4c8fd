// Package validation provides cross-representation alignment checks.
package validation

import "fmt"

// Result contains the overall alignment validation result.
type Result struct {
	IsCountAligned    bool
	IsMonotonic       bool
	IsBoundaryAligned bool

	// Details
	SegmentCounts    map[int]int // rate to segment count
	MaxDriftSecs     float64
	CountMessage     string
	MonotonicMessage string
	BoundaryMessage  string
}

// ValidationStep represents a single validation check.
type ValidationStep struct {
	Name    string
	Passed  bool
	Details string
}

// IsValid returns true if all alignment checks passed.
func (r *Result) IsValid() bool {
	return r.IsCountAligned && r.IsMonotonic && r.IsBoundaryAligned
}

// GetValidationSteps returns all validation steps with results.
func (r *Result) GetValidationSteps() []ValidationStep {
	return []ValidationStep{
		{
			Name:    "Segment count",
			Passed:  r.IsCountAligned,
			Details: r.CountMessage,
		},
		{
			Name:    "Boundary ordering",
			Passed:  r.IsMonotonic,
			Details: r.MonotonicMessage,
		},
		{
			Name:    "Boundary alignment",
			Passed:  r.IsBoundaryAligned,
			Details: r.BoundaryMessage,
		},
	}
}

// GetFailures returns descriptions of failed validation checks.
func (r *Result) GetFailures() []string {
	var failures []string
	for _, step := range r.GetValidationSteps() {
		if !step.Passed {
			failures = append(failures, step.Name+": "+step.Details)
		}
	}
	return failures
}

func formatCounts(counts map[int]int, rates []int) string {
	out := ""
	for i, rate := range rates {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d kbps: %d", rate, counts[rate])
	}
	return out
}
