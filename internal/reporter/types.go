// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// HardwareSummary contains hardware information.
type HardwareSummary struct {
	Hostname string
	OS       string
	Arch     string
	NumCPU   int
}

// InitializationSummary describes the run before any work starts.
type InitializationSummary struct {
	InputFile string
	InputSize string
	OutputDir string
	Algorithm string
	ImageType string
}

// ValidationSummary contains pre-flight check results.
type ValidationSummary struct {
	Passed bool
	Steps  []ValidationStep
}

// ValidationStep represents a single validation check.
type ValidationStep struct {
	Name    string
	Passed  bool
	Details string
}

// ResolutionSummary describes how the output size was chosen.
type ResolutionSummary struct {
	InputSize  string // Probed WxH, empty when probing failed or was skipped
	Codec      string
	Duration   string
	Frames     uint64
	OutputSize string
	Source     string
	ProbeError string
}

// StitchConfigSummary contains the resolved stitcher invocation.
type StitchConfigSummary struct {
	Executable  string
	WorkDir     string
	Algorithm   string
	StitchType  string
	Model       string
	ImageType   string
	OutputSize  string
	LibraryPath string
	Options     []string
	CommandLine string
}

// ProgressSnapshot contains stitching progress information.
type ProgressSnapshot struct {
	Percent     float64
	ElapsedSecs float64
	ETA         time.Duration
}

// StitchOutcome contains final stitching results.
type StitchOutcome struct {
	InputFile  string
	OutputDir  string
	ImageType  string
	FrameCount int
	TotalBytes uint64
	TotalTime  time.Duration
	LogFile    string
}

// UploadSummary describes frames copied to object storage.
type UploadSummary struct {
	Endpoint string
	Bucket   string
	Prefix   string
	Objects  int
	Bytes    uint64
	Duration time.Duration
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}
