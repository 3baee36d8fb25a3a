package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: reporters}
}

func (c *CompositeReporter) Hardware(summary HardwareSummary) {
	for _, r := range c.reporters {
		r.Hardware(summary)
	}
}

func (c *CompositeReporter) Initialization(summary InitializationSummary) {
	for _, r := range c.reporters {
		r.Initialization(summary)
	}
}

func (c *CompositeReporter) ValidationComplete(summary ValidationSummary) {
	for _, r := range c.reporters {
		r.ValidationComplete(summary)
	}
}

func (c *CompositeReporter) Resolution(summary ResolutionSummary) {
	for _, r := range c.reporters {
		r.Resolution(summary)
	}
}

func (c *CompositeReporter) StitchConfig(summary StitchConfigSummary) {
	for _, r := range c.reporters {
		r.StitchConfig(summary)
	}
}

func (c *CompositeReporter) StitchStarted() {
	for _, r := range c.reporters {
		r.StitchStarted()
	}
}

func (c *CompositeReporter) StitchProgress(progress ProgressSnapshot) {
	for _, r := range c.reporters {
		r.StitchProgress(progress)
	}
}

func (c *CompositeReporter) StitchComplete(summary StitchOutcome) {
	for _, r := range c.reporters {
		r.StitchComplete(summary)
	}
}

func (c *CompositeReporter) Upload(summary UploadSummary) {
	for _, r := range c.reporters {
		r.Upload(summary)
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

func (c *CompositeReporter) OperationComplete(message string) {
	for _, r := range c.reporters {
		r.OperationComplete(message)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}
