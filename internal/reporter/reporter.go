package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	Hardware(summary HardwareSummary)
	Initialization(summary InitializationSummary)
	ValidationComplete(summary ValidationSummary)
	Resolution(summary ResolutionSummary)
	StitchConfig(summary StitchConfigSummary)
	StitchStarted()
	StitchProgress(progress ProgressSnapshot)
	StitchComplete(summary StitchOutcome)
	Upload(summary UploadSummary)
	Warning(message string)
	Error(err ReporterError)
	OperationComplete(message string)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Hardware(HardwareSummary)             {}
func (NullReporter) Initialization(InitializationSummary) {}
func (NullReporter) ValidationComplete(ValidationSummary) {}
func (NullReporter) Resolution(ResolutionSummary)         {}
func (NullReporter) StitchConfig(StitchConfigSummary)     {}
func (NullReporter) StitchStarted()                       {}
func (NullReporter) StitchProgress(ProgressSnapshot)      {}
func (NullReporter) StitchComplete(StitchOutcome)         {}
func (NullReporter) Upload(UploadSummary)                 {}
func (NullReporter) Warning(string)                       {}
func (NullReporter) Error(ReporterError)                  {}
func (NullReporter) OperationComplete(string)             {}
func (NullReporter) Verbose(string)                       {}
