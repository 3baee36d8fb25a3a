package reporter

// Logger is the subset of the run logger the log reporter writes to.
type Logger interface {
	Info(format string, args ...any)
	Debug(format string, args ...any)
}

// LogReporter records stitch progress milestones in the run log. Other
// events are already logged where they happen and are ignored here.
type LogReporter struct {
	NullReporter
	log        Logger
	lastDecile int
}

// NewLogReporter creates a reporter that writes progress to log.
func NewLogReporter(log Logger) *LogReporter {
	return &LogReporter{log: log, lastDecile: -1}
}

func (r *LogReporter) StitchStarted() {
	r.lastDecile = -1
	r.log.Debug("Stitcher started")
}

// StitchProgress logs once per 10% step.
func (r *LogReporter) StitchProgress(p ProgressSnapshot) {
	decile := int(p.Percent) / 10
	if decile <= r.lastDecile {
		return
	}
	r.lastDecile = decile
	r.log.Info("Progress: %.0f%% (%.0fs elapsed)", p.Percent, p.ElapsedSecs)
}

func (r *LogReporter) OperationComplete(message string) {
	r.log.Info("%s", message)
}
