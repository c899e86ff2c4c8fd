package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	RunStarted(info RunStartInfo)
	SourceProbed(summary SourceSummary)
	StageProgress(update StageProgress)
	EncodeStarted(rate int, totalFrames uint64)
	EncodeProgress(progress ProgressSnapshot)
	EncodeComplete(outcome EncodeOutcome)
	SegmentsExtracted(summary SegmentSummary)
	AlignmentChecked(summary AlignmentSummary)
	ManifestMerged(summary ManifestSummary)
	ScoringStarted(rate int, totalSegments int)
	SegmentScored(update ScoreUpdate)
	RunComplete(summary RunOutcome)
	Warning(message string)
	Error(err ReporterError)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) RunStarted(RunStartInfo)        {}
func (NullReporter) SourceProbed(SourceSummary)     {}
func (NullReporter) StageProgress(StageProgress)    {}
func (NullReporter) EncodeStarted(int, uint64)      {}
func (NullReporter) EncodeProgress(ProgressSnapshot) {}
func (NullReporter) EncodeComplete(EncodeOutcome)   {}
func (NullReporter) SegmentsExtracted(SegmentSummary) {}
func (NullReporter) AlignmentChecked(AlignmentSummary) {}
func (NullReporter) ManifestMerged(ManifestSummary) {}
func (NullReporter) ScoringStarted(int, int)        {}
func (NullReporter) SegmentScored(ScoreUpdate)      {}
func (NullReporter) RunComplete(RunOutcome)         {}
func (NullReporter) Warning(string)                 {}
func (NullReporter) Error(ReporterError)            {}
func (NullReporter) Verbose(string)                 {}
