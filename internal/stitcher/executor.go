package stitcher

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	coreerrors "github.com/five82/panostitch/internal/errors"
)

// Progress represents stitching progress as reported by the SDK.
type Progress struct {
	Percent     float64
	ElapsedSecs float64
}

// ProgressCallback is called with progress updates during stitching.
type ProgressCallback func(Progress)

// Result contains the outcome of a stitcher run.
type Result struct {
	Success  bool
	Error    error
	ExitCode int
	Duration time.Duration
	// Message is the last "error: ..." line the stitcher printed, if any.
	Message string
	Stderr  string
}

var processRegex = regexp.MustCompile(`process\s*=\s*(\d+(?:\.\d+)?)\s*%`)

// maxStderrTail bounds how much stderr is kept for error reporting.
const maxStderrTail = 4096

// Run executes cmd and waits for it. Stdout is scanned for progress lines,
// which go to callback; everything else is forwarded to cmd.Stdout.
func Run(ctx context.Context, cmd *Command, callback ProgressCallback) Result {
	start := time.Now()

	proc := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	proc.Dir = cmd.Dir
	proc.Env = cmd.Env

	stderr := &tailBuffer{limit: maxStderrTail}
	if cmd.Stderr != nil {
		proc.Stderr = io.MultiWriter(cmd.Stderr, stderr)
	} else {
		proc.Stderr = stderr
	}

	stdout, err := proc.StdoutPipe()
	if err != nil {
		return Result{
			ExitCode: -1,
			Error:    coreerrors.NewCommandStartError(cmd.Path, fmt.Errorf("failed to get stdout pipe: %w", err)),
		}
	}

	if err := proc.Start(); err != nil {
		return Result{
			ExitCode: -1,
			Error:    coreerrors.NewStitchError("failed to start stitcher", coreerrors.NewCommandStartError(cmd.Path, err)),
		}
	}

	out := cmd.Stdout
	if out == nil {
		out = io.Discard
	}
	message := scanOutput(stdout, out, start, callback)

	err = proc.Wait()
	result := Result{
		Duration: time.Since(start),
		Message:  message,
		Stderr:   stderr.String(),
	}

	if err != nil {
		if ctx.Err() != nil {
			result.ExitCode = -1
			result.Error = coreerrors.NewCancelledError()
			return result
		}

		cmdErr := coreerrors.WrapExecError(cmd.Path, err, strings.TrimSpace(result.Stderr))
		result.ExitCode = coreerrors.ExitCode(cmdErr)
		detail := "stitcher failed"
		if result.ExitCode >= 0 {
			detail = fmt.Sprintf("stitcher exited with code %d", result.ExitCode)
		}
		if message != "" {
			detail += ": " + message
		}
		result.Error = coreerrors.NewStitchError(detail, cmdErr)
		return result
	}

	result.Success = true
	return result
}

// scanOutput reads stitcher stdout byte by byte. The SDK rewrites its
// progress line with \r, so both \r and \n end a line.
func scanOutput(r io.Reader, out io.Writer, start time.Time, callback ProgressCallback) string {
	reader := bufio.NewReader(r)
	var lineBuf strings.Builder
	var lastError string

	flush := func() {
		raw := lineBuf.String()
		lineBuf.Reset()
		line := strings.TrimSpace(raw)
		if line == "" {
			return
		}

		if percent, ok := ParseProgressLine(line); ok && callback != nil {
			callback(Progress{Percent: percent, ElapsedSecs: time.Since(start).Seconds()})
			return
		}
		if msg, ok := strings.CutPrefix(line, "error:"); ok {
			lastError = strings.TrimSpace(msg)
		}
		fmt.Fprintln(out, raw)
	}

	for {
		b, err := reader.ReadByte()
		if err != nil {
			break
		}
		if b == '\r' || b == '\n' {
			flush()
		} else {
			lineBuf.WriteByte(b)
		}
	}
	flush()

	return lastError
}

// ParseProgressLine extracts the percentage from a "process = N%" line.
func ParseProgressLine(line string) (float64, bool) {
	matches := processRegex.FindStringSubmatch(line)
	if len(matches) < 2 {
		return 0, false
	}
	percent, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, false
	}
	if percent > 100 {
		percent = 100
	}
	return percent, true
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
