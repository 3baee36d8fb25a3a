package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs one JSON event per line.
type JSONReporter struct {
	writer             io.Writer
	mu                 sync.Mutex
	lastProgressBucket int
	lastProgressTime   time.Time
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return NewJSONReporterWithWriter(os.Stdout)
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		lastProgressBucket: -1,
	}
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(v map[string]any) {
	v["timestamp"] = r.timestamp()

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Hardware(summary HardwareSummary) {
	r.write(map[string]any{
		"type":     "hardware",
		"hostname": summary.Hostname,
		"os":       summary.OS,
		"arch":     summary.Arch,
		"num_cpu":  summary.NumCPU,
	})
}

func (r *JSONReporter) Initialization(summary InitializationSummary) {
	r.write(map[string]any{
		"type":       "initialization",
		"input_file": summary.InputFile,
		"input_size": summary.InputSize,
		"output_dir": summary.OutputDir,
		"algorithm":  summary.Algorithm,
		"image_type": summary.ImageType,
	})
}

func (r *JSONReporter) ValidationComplete(summary ValidationSummary) {
	steps := make([]map[string]any, len(summary.Steps))
	for i, step := range summary.Steps {
		steps[i] = map[string]any{
			"step":    step.Name,
			"passed":  step.Passed,
			"details": step.Details,
		}
	}

	r.write(map[string]any{
		"type":              "validation_complete",
		"validation_passed": summary.Passed,
		"validation_steps":  steps,
	})
}

func (r *JSONReporter) Resolution(summary ResolutionSummary) {
	event := map[string]any{
		"type":        "resolution",
		"output_size": summary.OutputSize,
		"source":      summary.Source,
	}
	if summary.InputSize != "" {
		event["input_size"] = summary.InputSize
		event["codec"] = summary.Codec
		event["duration"] = summary.Duration
		event["frames"] = summary.Frames
	}
	if summary.ProbeError != "" {
		event["probe_error"] = summary.ProbeError
	}
	r.write(event)
}

func (r *JSONReporter) StitchConfig(summary StitchConfigSummary) {
	options := summary.Options
	if options == nil {
		options = []string{}
	}
	r.write(map[string]any{
		"type":         "stitch_config",
		"executable":   summary.Executable,
		"work_dir":     summary.WorkDir,
		"algorithm":    summary.Algorithm,
		"stitch_type":  summary.StitchType,
		"model":        summary.Model,
		"image_type":   summary.ImageType,
		"output_size":  summary.OutputSize,
		"library_path": summary.LibraryPath,
		"options":      options,
		"command_line": summary.CommandLine,
	})
}

func (r *JSONReporter) StitchStarted() {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write(map[string]any{
		"type": "stitch_started",
	})
}

func (r *JSONReporter) StitchProgress(progress ProgressSnapshot) {
	const minInterval = 5 * time.Second

	bucket := int(progress.Percent)
	now := time.Now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed

	if !shouldEmit {
		r.mu.Unlock()
		return
	}

	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	r.write(map[string]any{
		"type":            "stitch_progress",
		"stage":           "stitching",
		"percent":         progress.Percent,
		"elapsed_seconds": int64(progress.ElapsedSecs),
		"eta_seconds":     int64(progress.ETA.Seconds()),
	})
}

func (r *JSONReporter) StitchComplete(summary StitchOutcome) {
	r.write(map[string]any{
		"type":             "stitch_complete",
		"input_file":       summary.InputFile,
		"output_dir":       summary.OutputDir,
		"image_type":       summary.ImageType,
		"frame_count":      summary.FrameCount,
		"total_bytes":      summary.TotalBytes,
		"duration_seconds": int64(summary.TotalTime.Seconds()),
		"log_file":         summary.LogFile,
	})
}

func (r *JSONReporter) Upload(summary UploadSummary) {
	r.write(map[string]any{
		"type":             "upload_complete",
		"endpoint":         summary.Endpoint,
		"bucket":           summary.Bucket,
		"prefix":           summary.Prefix,
		"objects":          summary.Objects,
		"bytes":            summary.Bytes,
		"duration_seconds": int64(summary.Duration.Seconds()),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]any{
		"type":    "warning",
		"message": message,
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]any{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
	})
}

func (r *JSONReporter) OperationComplete(message string) {
	r.write(map[string]any{
		"type":    "operation_complete",
		"message": message,
	})
}

func (r *JSONReporter) Verbose(message string) {
	r.write(map[string]any{
		"type":    "verbose",
		"message": message,
	})
}
