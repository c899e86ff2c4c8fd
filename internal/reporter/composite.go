package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: reporters}
}

func (c *CompositeReporter) RunStarted(info RunStartInfo) {
	for _, r := range c.reporters {
		r.RunStarted(info)
	}
}

func (c *CompositeReporter) SourceProbed(summary SourceSummary) {
	for _, r := range c.reporters {
		r.SourceProbed(summary)
	}
}

func (c *CompositeReporter) StageProgress(update StageProgress) {
	for _, r := range c.reporters {
		r.StageProgress(update)
	}
}

func (c *CompositeReporter) EncodeStarted(rate int, totalFrames uint64) {
	for _, r := range c.reporters {
		r.EncodeStarted(rate, totalFrames)
	}
}

func (c *CompositeReporter) EncodeProgress(progress ProgressSnapshot) {
	for _, r := range c.reporters {
		r.EncodeProgress(progress)
	}
}

func (c *CompositeReporter) EncodeComplete(outcome EncodeOutcome) {
	for _, r := range c.reporters {
		r.EncodeComplete(outcome)
	}
}

func (c *CompositeReporter) SegmentsExtracted(summary SegmentSummary) {
	for _, r := range c.reporters {
		r.SegmentsExtracted(summary)
	}
}

func (c *CompositeReporter) AlignmentChecked(summary AlignmentSummary) {
	for _, r := range c.reporters {
		r.AlignmentChecked(summary)
	}
}

func (c *CompositeReporter) ManifestMerged(summary ManifestSummary) {
	for _, r := range c.reporters {
		r.ManifestMerged(summary)
	}
}

func (c *CompositeReporter) ScoringStarted(rate int, totalSegments int) {
	for _, r := range c.reporters {
		r.ScoringStarted(rate, totalSegments)
	}
}

func (c *CompositeReporter) SegmentScored(update ScoreUpdate) {
	for _, r := range c.reporters {
		r.SegmentScored(update)
	}
}

func (c *CompositeReporter) RunComplete(summary RunOutcome) {
	for _, r := range c.reporters {
		r.RunComplete(summary)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Error(err ReporterError) {
	for _, r := range c.reporters {
		r.Error(err)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}
