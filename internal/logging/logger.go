// Package logging provides the run log file for the panostitch CLI.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes leveled entries to a timestamped log file. Entries logged
// before Open are held in memory and written out when the file is opened.
// A nil *Logger is valid and discards everything.
type Logger struct {
	zap      *zap.Logger
	sugar    *zap.SugaredLogger
	sink     *sink
	filePath string
	runID    string
}

// New creates a logger whose file is opened later with Open.
func New(verbose bool) *Logger {
	s := &sink{}
	l := newLogger(s, verbose)
	l.sink = s

	l.Info("panostitch starting")
	if verbose {
		l.Info("Debug level logging enabled")
	}
	return l
}

// Open creates the log file in logDir and flushes any held entries to it.
// Calling Open on an opened or nil logger does nothing.
func (l *Logger) Open(logDir string) error {
	if l == nil || l.filePath != "" {
		return nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filePath := filepath.Join(logDir, fmt.Sprintf("panostitch_run_%s.log", timestamp))

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file %s: %w", filePath, err)
	}
	if err := l.sink.attach(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write log file %s: %w", filePath, err)
	}
	l.filePath = filePath

	l.Info("Log file: %s", filePath)
	return nil
}

// newLogger builds a logger over w tagged with a fresh run id.
func newLogger(w io.Writer, verbose bool) *Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	runID := uuid.NewString()
	base := zap.New(core).With(zap.String("run_id", runID))

	return &Logger{
		zap:   base,
		sugar: base.Sugar(),
		runID: runID,
	}
}

// Close flushes and closes the log file. Entries still held because Open
// was never called are dropped.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	_ = l.zap.Sync()
	if l.sink == nil {
		return nil
	}
	return l.sink.close()
}

// FilePath returns the path to the log file.
func (l *Logger) FilePath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// RunID returns the identifier attached to every entry of this run.
func (l *Logger) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// Zap returns the underlying structured logger, or a no-op logger.
func (l *Logger) Zap() *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.zap
}

// Info logs an info-level message.
func (l *Logger) Info(format string, args ...any) {
	if l == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

// Debug logs a debug-level message (only if verbose mode is enabled).
func (l *Logger) Debug(format string, args ...any) {
	if l == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	if l == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	if l == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// Writer returns an io.Writer that writes to the log file.
// Used to mirror stitcher output into the log.
func (l *Logger) Writer() io.Writer {
	if l == nil || l.sink == nil {
		return io.Discard
	}
	return l.sink
}

// sink buffers writes until a file is attached.
type sink struct {
	mu     sync.Mutex
	held   bytes.Buffer
	file   *os.File
	closed bool
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.file != nil:
		return s.file.Write(p)
	case s.closed:
		return len(p), nil
	default:
		return s.held.Write(p)
	}
}

func (s *sink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	return s.file.Sync()
}

func (s *sink) attach(file *os.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.held.WriteTo(file); err != nil {
		return err
	}
	s.file = file
	return nil
}

func (s *sink) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.held.Reset()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
