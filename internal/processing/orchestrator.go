// Package processing runs a stitch from validation to frame count.
package processing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/five82/panostitch/internal/config"
	"github.com/five82/panostitch/internal/discovery"
	coreerrors "github.com/five82/panostitch/internal/errors"
	"github.com/five82/panostitch/internal/ffprobe"
	"github.com/five82/panostitch/internal/logging"
	"github.com/five82/panostitch/internal/metrics"
	"github.com/five82/panostitch/internal/publish"
	"github.com/five82/panostitch/internal/reporter"
	"github.com/five82/panostitch/internal/resolution"
	"github.com/five82/panostitch/internal/stitcher"
	"github.com/five82/panostitch/internal/util"
	"github.com/five82/panostitch/internal/validation"
)

// Request names the video to stitch and where its frames go.
type Request struct {
	InputPath string
	OutputDir string
}

// RunFunc executes a stitcher command.
type RunFunc func(ctx context.Context, cmd *stitcher.Command, callback stitcher.ProgressCallback) stitcher.Result

// FrameUploader copies frames to object storage.
type FrameUploader interface {
	UploadFrames(ctx context.Context, frames []discovery.Frame) (*publish.Result, error)
	Endpoint() string
	Bucket() string
	Prefix() string
}

// Deps are the collaborators of a run. Zero values fall back to the real
// implementations or to no-ops.
//
// Logger may be created with logging.New; its file is opened under the
// output directory (or cfg.LogDir) once preflight has passed.
type Deps struct {
	Prober   resolution.Prober
	Run      RunFunc
	Uploader FrameUploader
	Metrics  *metrics.Recorder
	Logger   *logging.Logger
	// Stdout and Stderr receive the stitcher's own output. Nil means the
	// process's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

// StitchResult contains the outcome of a successful run.
type StitchResult struct {
	InputPath  string
	OutputDir  string
	Resolution resolution.Resolution
	FrameCount int
	TotalBytes uint64
	Duration   time.Duration
	Warnings   []string
	Upload     *publish.Result
}

// Stitch validates the request, derives the output resolution, runs the
// stitcher and counts the frames it wrote. The frame count is only produced
// when the stitcher exits successfully.
func Stitch(ctx context.Context, cfg *config.Config, req Request, deps Deps, rep reporter.Reporter) (result *StitchResult, err error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	if deps.Prober == nil {
		deps.Prober = ffprobe.NewClient(cfg.FFprobePath)
	}
	if deps.Run == nil {
		deps.Run = stitcher.Run
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	log := deps.Logger

	start := time.Now()
	defer func() {
		deps.Metrics.ObserveStage("total", time.Since(start))
		deps.Metrics.Finish(cfg.Algorithm.String(), err == nil)
		if werr := deps.Metrics.WriteTextfile(cfg.MetricsFile); werr != nil {
			log.Warn("Failed to write metrics to %s: %v", cfg.MetricsFile, werr)
			rep.Warning(fmt.Sprintf("Could not write metrics file %s: %v", cfg.MetricsFile, werr))
		}
	}()

	sysInfo := util.GetSystemInfo()
	rep.Hardware(reporter.HardwareSummary{
		Hostname: sysInfo.Hostname,
		OS:       sysInfo.OS,
		Arch:     sysInfo.Arch,
		NumCPU:   sysInfo.NumCPU,
	})

	inputPath, outputDir, warnings, err := preflight(cfg, req, rep, log)
	if err != nil {
		return nil, err
	}
	if err := openRunLog(cfg, log, outputDir, rep); err != nil {
		return nil, err
	}

	inputSize, _ := util.GetFileSize(inputPath)
	rep.Initialization(reporter.InitializationSummary{
		InputFile: util.GetFilename(inputPath),
		InputSize: util.FormatBytes(inputSize),
		OutputDir: outputDir,
		Algorithm: fmt.Sprintf("%s (%s)", cfg.Algorithm, cfg.Algorithm.Description()),
		ImageType: cfg.ImageType.String(),
	})

	probeStart := time.Now()
	res := chooseResolution(ctx, cfg, deps.Prober, inputPath, rep, log, deps.Metrics)
	deps.Metrics.ObserveStage("probe", time.Since(probeStart))
	deps.Metrics.SetOutputSize(res.Width, res.Height)

	params := stitcher.NewParams(cfg, inputPath, outputDir, res)
	cmd := stitcher.BuildCommand(params)
	cmd.Stdout = deps.Stdout
	cmd.Stderr = deps.Stderr

	rep.StitchConfig(reporter.StitchConfigSummary{
		Executable:  cmd.Path,
		WorkDir:     cmd.Dir,
		Algorithm:   cfg.Algorithm.String(),
		StitchType:  params.StitchType,
		Model:       params.ModelPath,
		ImageType:   params.ImageType.String(),
		OutputSize:  res.String(),
		LibraryPath: params.LibraryPath,
		Options:     stitchOptions(params),
		CommandLine: cmd.String(),
	})
	log.Info("Running: %s", cmd.String())
	log.Debug("%s=%s", config.LibraryPathEnv, params.LibraryPath)

	rep.StitchStarted()
	runResult := deps.Run(ctx, cmd, func(p stitcher.Progress) {
		rep.StitchProgress(reporter.ProgressSnapshot{
			Percent:     p.Percent,
			ElapsedSecs: p.ElapsedSecs,
			ETA:         estimateETA(p),
		})
	})
	deps.Metrics.ObserveStage("stitch", runResult.Duration)

	if !runResult.Success {
		return nil, reportStitchFailure(runResult, rep, log)
	}
	log.Info("Stitcher finished in %s", runResult.Duration.Round(time.Second))

	frames, err := discovery.FindFramesWithLogging(outputDir, cfg.ImageType, log)
	if err != nil {
		rep.Error(reporter.ReporterError{
			Title:   "Output Error",
			Message: fmt.Sprintf("Could not read output directory: %v", err),
			Context: fmt.Sprintf("Directory: %s", outputDir),
		})
		return nil, coreerrors.NewIOError("failed to list frames", err)
	}
	deps.Metrics.SetFrames(cfg.ImageType.String(), frames.Count(), frames.TotalBytes)

	result = &StitchResult{
		InputPath:  inputPath,
		OutputDir:  outputDir,
		Resolution: res,
		FrameCount: frames.Count(),
		TotalBytes: uint64(frames.TotalBytes),
		Duration:   time.Since(start),
		Warnings:   warnings,
	}

	rep.StitchComplete(reporter.StitchOutcome{
		InputFile:  util.GetFilename(inputPath),
		OutputDir:  outputDir,
		ImageType:  cfg.ImageType.String(),
		FrameCount: result.FrameCount,
		TotalBytes: result.TotalBytes,
		TotalTime:  runResult.Duration,
		LogFile:    log.FilePath(),
	})
	log.Zap().Info("stitch complete",
		zap.Int("frame_count", result.FrameCount),
		zap.String("output_dir", outputDir),
		zap.Duration("stitch_duration", runResult.Duration),
	)

	if deps.Uploader != nil {
		upload, err := uploadFrames(ctx, deps.Uploader, frames.Frames, rep, log, deps.Metrics)
		if err != nil {
			return nil, err
		}
		result.Upload = upload
	}

	rep.OperationComplete(fmt.Sprintf("Stitched %d frame(s) into %s", result.FrameCount, outputDir))
	return result, nil
}

// preflight runs the input, SDK and output checks in that order and reports
// them together.
func preflight(cfg *config.Config, req Request, rep reporter.Reporter, log *logging.Logger) (string, string, []string, error) {
	checks := &validation.Result{}
	report := func() {
		rep.ValidationComplete(toValidationSummary(checks))
		for _, w := range checks.Warnings {
			log.Warn("%s", w)
			rep.Warning(w)
		}
	}

	inputPath, err := validation.ValidateInput(checks, req.InputPath)
	if err == nil {
		err = validation.ValidateSDK(checks, cfg)
	}
	var outputDir string
	if err == nil {
		outputDir, err = validation.PrepareOutputDir(checks, req.OutputDir)
	}
	report()

	if err != nil {
		log.Error("Preflight failed: %v", err)
		rep.Error(reporter.ReporterError{
			Title:      "Preflight Error",
			Message:    err.Error(),
			Context:    checks.Summary(),
			Suggestion: preflightSuggestion(err),
		})
		return "", "", nil, err
	}
	return inputPath, outputDir, checks.Warnings, nil
}

// openRunLog starts the log file once the output directory exists.
func openRunLog(cfg *config.Config, log *logging.Logger, outputDir string, rep reporter.Reporter) error {
	logDir := cfg.LogDir
	if logDir == "" {
		logDir = filepath.Join(outputDir, "logs")
	}
	if err := log.Open(logDir); err != nil {
		rep.Error(reporter.ReporterError{
			Title:      "Logging Error",
			Message:    err.Error(),
			Context:    fmt.Sprintf("Log directory: %s", logDir),
			Suggestion: "Choose another directory with --log-dir, or disable the log file with --no-log",
		})
		return coreerrors.NewIOError("failed to open run log", err)
	}
	return nil
}

func preflightSuggestion(err error) string {
	switch {
	case coreerrors.IsKind(err, coreerrors.KindSDK):
		return "Check --sdk-dir and --camera-sdk-lib, or PANOSTITCH_SDK_DIR"
	case coreerrors.IsKind(err, coreerrors.KindPath):
		return "Check the input and output paths and their permissions"
	default:
		return ""
	}
}

func toValidationSummary(r *validation.Result) reporter.ValidationSummary {
	steps := make([]reporter.ValidationStep, len(r.Steps))
	for i, s := range r.Steps {
		steps[i] = reporter.ValidationStep{Name: s.Name, Passed: s.Passed, Details: s.Details}
	}
	return reporter.ValidationSummary{Passed: r.IsValid(), Steps: steps}
}

// chooseResolution applies an explicit size or probes the input. Probe
// failures only produce a warning.
func chooseResolution(ctx context.Context, cfg *config.Config, prober resolution.Prober, inputPath string,
	rep reporter.Reporter, log *logging.Logger, rec *metrics.Recorder) resolution.Resolution {
	if cfg.HasOutputSize() {
		res := resolution.Override(cfg.OutputWidth, cfg.OutputHeight)
		log.Info("Using requested output size %s", res)
		rep.Resolution(reporter.ResolutionSummary{OutputSize: res.String(), Source: string(res.Source)})
		return res
	}

	probed := resolution.Probe(ctx, prober, inputPath)
	summary := reporter.ResolutionSummary{
		OutputSize: probed.Resolution.String(),
		Source:     string(probed.Resolution.Source),
	}

	if probed.Err != nil {
		rec.RecordProbeFallback()
		log.Warn("Probe failed for %s: %v", inputPath, probed.Err)
		summary.ProbeError = probed.Err.Error()
		rep.Warning(fmt.Sprintf("Could not determine video resolution, using default %s", probed.Resolution))
	} else {
		info := probed.Info
		summary.InputSize = fmt.Sprintf("%dx%d", info.Width, info.Height)
		summary.Codec = info.CodecName
		summary.Duration = util.FormatDuration(info.DurationSecs)
		summary.Frames = info.TotalFrames
		log.Info("Probed %dx%d %s, output %s (%s)", info.Width, info.Height, info.CodecName, probed.Resolution, probed.Resolution.Source)
	}

	rep.Resolution(summary)
	return probed.Resolution
}

func reportStitchFailure(r stitcher.Result, rep reporter.Reporter, log *logging.Logger) error {
	if coreerrors.IsCancelled(r.Error) {
		log.Warn("Stitching cancelled")
		rep.Warning("Stitching cancelled")
		return r.Error
	}

	log.Error("Stitching failed: %v", r.Error)
	if r.Stderr != "" {
		log.Debug("stitcher stderr:\n%s", r.Stderr)
	}

	detail := ""
	if r.ExitCode >= 0 {
		detail = fmt.Sprintf("Exit code: %d", r.ExitCode)
	}
	rep.Error(reporter.ReporterError{
		Title:      "Stitching Error",
		Message:    r.Error.Error(),
		Context:    detail,
		Suggestion: "Try --disable-cuda or a different algorithm, and check the stitcher output above",
	})
	return r.Error
}

func uploadFrames(ctx context.Context, u FrameUploader, frames []discovery.Frame,
	rep reporter.Reporter, log *logging.Logger, rec *metrics.Recorder) (*publish.Result, error) {
	log.Info("Uploading %d frame(s) to %s/%s", len(frames), u.Bucket(), u.Prefix())

	result, err := u.UploadFrames(ctx, frames)
	if result != nil {
		rec.AddUploaded(result.Objects)
	}
	if err != nil {
		rep.Error(reporter.ReporterError{
			Title:      "Upload Error",
			Message:    err.Error(),
			Context:    fmt.Sprintf("Bucket: %s", u.Bucket()),
			Suggestion: "Frames are still on disk; check PANOSTITCH_MINIO_* settings",
		})
		return nil, err
	}

	rec.ObserveStage("upload", result.Duration)
	rep.Upload(reporter.UploadSummary{
		Endpoint: u.Endpoint(),
		Bucket:   u.Bucket(),
		Prefix:   u.Prefix(),
		Objects:  result.Objects,
		Bytes:    result.Bytes,
		Duration: result.Duration,
	})
	return result, nil
}

// stitchOptions lists the optional switches for display.
func stitchOptions(p *stitcher.Params) []string {
	var opts []string
	if p.FrameIndex != "" {
		opts = append(opts, "frames "+p.FrameIndex)
	}
	if p.FlowState {
		opts = append(opts, "FlowState")
	}
	if p.DirectionLock {
		opts = append(opts, "direction lock")
	}
	if p.DisableCUDA {
		opts = append(opts, "CUDA disabled")
	}
	if p.SoftEncode {
		opts = append(opts, "software encode")
	}
	if p.SoftDecode {
		opts = append(opts, "software decode")
	}
	if p.AccessoryType > 0 {
		opts = append(opts, fmt.Sprintf("accessory %d", p.AccessoryType))
	}
	return opts
}

// estimateETA extrapolates the remaining time from the rate so far.
func estimateETA(p stitcher.Progress) time.Duration {
	if p.Percent <= 0 || p.Percent >= 100 {
		return 0
	}
	remaining := p.ElapsedSecs * (100 - p.Percent) / p.Percent
	return time.Duration(remaining * float64(time.Second))
}
