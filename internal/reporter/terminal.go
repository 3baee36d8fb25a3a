package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/five82/panostitch/internal/util"
	"github.com/schollz/progressbar/v3"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	out        io.Writer
	errOut     io.Writer
	verbose    bool
	progress   *progressbar.ProgressBar
	maxPercent float64
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	bold       *color.Color
	faint      *color.Color
}

// NewTerminalReporter creates a new terminal reporter. Verbose messages are
// only printed when verbose is set.
func NewTerminalReporter(verbose bool) *TerminalReporter {
	return newTerminalReporter(os.Stdout, os.Stderr, verbose)
}

func newTerminalReporter(out, errOut io.Writer, verbose bool) *TerminalReporter {
	return &TerminalReporter{
		out:     out,
		errOut:  errOut,
		verbose: verbose,
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		bold:    color.New(color.Bold),
		faint:   color.New(color.Faint),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

func (r *TerminalReporter) section(title string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.cyan.Fprintln(r.out, title)
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Hardware(summary HardwareSummary) {
	r.section("HARDWARE")
	r.printLabel(10, "Hostname:", summary.Hostname)
	r.printLabel(10, "Platform:", fmt.Sprintf("%s/%s, %d CPUs", summary.OS, summary.Arch, summary.NumCPU))
}

func (r *TerminalReporter) Initialization(summary InitializationSummary) {
	r.section("VIDEO")
	r.printLabel(10, "File:", fmt.Sprintf("%s (%s)", summary.InputFile, summary.InputSize))
	r.printLabel(10, "Output:", summary.OutputDir)
	r.printLabel(10, "Algorithm:", summary.Algorithm)
	r.printLabel(10, "Frames:", summary.ImageType)
}

func (r *TerminalReporter) ValidationComplete(summary ValidationSummary) {
	r.section("PREFLIGHT")

	maxLen := 0
	for _, step := range summary.Steps {
		if len(step.Name) > maxLen {
			maxLen = len(step.Name)
		}
	}

	for _, step := range summary.Steps {
		status := r.green.Sprint("✓")
		if !step.Passed {
			status = r.red.Sprint("✗")
		}
		paddedName := fmt.Sprintf("%-*s", maxLen, step.Name)
		_, _ = fmt.Fprintf(r.out, "  - %s: %s (%s)\n", paddedName, status, step.Details)
	}
}

func (r *TerminalReporter) Resolution(summary ResolutionSummary) {
	r.section("RESOLUTION")
	if summary.InputSize != "" {
		r.printLabel(8, "Input:", fmt.Sprintf("%s %s, %s", summary.InputSize, summary.Codec, summary.Duration))
	}
	r.printLabel(8, "Output:", fmt.Sprintf("%s (%s)", r.green.Sprint(summary.OutputSize), summary.Source))
	if summary.ProbeError != "" {
		r.printLabel(8, "Probe:", r.faint.Sprint(summary.ProbeError))
	}
}

func (r *TerminalReporter) StitchConfig(summary StitchConfigSummary) {
	r.section("STITCHING")
	const w = 12
	r.printLabel(w, "Stitcher:", summary.Executable)
	r.printLabel(w, "Algorithm:", fmt.Sprintf("%s (%s)", summary.Algorithm, summary.StitchType))
	if summary.Model != "" {
		r.printLabel(w, "Model:", summary.Model)
	}
	r.printLabel(w, "Image type:", summary.ImageType)
	r.printLabel(w, "Output size:", summary.OutputSize)
	if len(summary.Options) > 0 {
		r.printLabel(w, "Options:", strings.Join(summary.Options, ", "))
	}
	if r.verbose {
		r.printLabel(w, "Libraries:", summary.LibraryPath)
		r.printLabel(w, "Command:", r.faint.Sprint(summary.CommandLine))
	}
}

func (r *TerminalReporter) StitchStarted() {
	r.finishProgress()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.errOut),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Stitching [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) StitchProgress(progress ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	clamped := min(max(progress.Percent, 0), 100)
	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	desc := "elapsed " + util.FormatDurationFromSecs(int64(progress.ElapsedSecs))
	if progress.ETA > 0 {
		desc += ", eta " + util.FormatDurationFromSecs(int64(progress.ETA.Seconds()))
	}
	r.progress.Describe(desc)
}

func (r *TerminalReporter) StitchComplete(summary StitchOutcome) {
	r.finishProgress()

	r.section("RESULTS")
	r.printLabel(8, "Frames:", r.bold.Sprintf("%d %s", summary.FrameCount, summary.ImageType))
	r.printLabel(8, "Size:", util.FormatBytes(summary.TotalBytes))
	r.printLabel(8, "Time:", util.FormatDurationFromSecs(int64(summary.TotalTime.Seconds())))
	if summary.LogFile != "" {
		r.printLabel(8, "Log:", summary.LogFile)
	}
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(summary.OutputDir))
}

func (r *TerminalReporter) Upload(summary UploadSummary) {
	r.section("UPLOAD")
	r.printLabel(8, "Target:", fmt.Sprintf("%s/%s/%s", summary.Endpoint, summary.Bucket, summary.Prefix))
	r.printLabel(8, "Objects:", fmt.Sprintf("%d (%s)", summary.Objects, util.FormatBytes(summary.Bytes)))
	r.printLabel(8, "Time:", util.FormatDurationFromSecs(int64(summary.Duration.Seconds())))
}

func (r *TerminalReporter) Warning(message string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.yellow.Fprintf(r.out, "WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	r.finishProgress()

	_, _ = fmt.Fprintln(r.errOut)
	_, _ = r.red.Fprintf(r.errOut, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(r.errOut, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) OperationComplete(message string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = fmt.Fprintf(r.out, "%s %s\n", color.New(color.FgGreen, color.Bold).Sprint("✓"), r.bold.Sprint(message))
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.verbose {
		return
	}
	_, _ = fmt.Fprintf(r.out, "  %s\n", r.faint.Sprint(message))
}
