package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger

	l.Info("x")
	l.Debug("x")
	l.Warn("x")
	l.Error("x")
	l.Zap().Info("x")
	if err := l.Open(t.TempDir()); err != nil {
		t.Errorf("Open() error = %v", err)
	}
	if l.FilePath() != "" || l.RunID() != "" {
		t.Error("nil logger should report empty path and run id")
	}
	if _, err := l.Writer().Write([]byte("x")); err != nil {
		t.Errorf("Writer().Write() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestOpenWritesLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	l := New(false)
	if err := l.Open(dir); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	l.Info("stitching %s", "VID_001.insv")
	l.Debug("hidden detail")
	l.Zap().Warn("structured", zap.Int("frames", 12))
	path := l.FilePath()
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if !strings.HasPrefix(filepath.Base(path), "panostitch_run_") || filepath.Ext(path) != ".log" {
		t.Errorf("unexpected log file name %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	content := string(data)

	for _, want := range []string{"panostitch starting", "stitching VID_001.insv", "structured", `"frames"`, l.RunID()} {
		if !strings.Contains(content, want) {
			t.Errorf("log file missing %q:\n%s", want, content)
		}
	}
	if strings.Contains(content, "hidden detail") {
		t.Error("debug entry written without verbose")
	}
}

func TestVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, true)
	l.Debug("frame %d", 7)
	_ = l.Zap().Sync()

	if !strings.Contains(buf.String(), "DEBUG") || !strings.Contains(buf.String(), "frame 7") {
		t.Errorf("debug output = %q", buf.String())
	}
}

func TestRunIDUnique(t *testing.T) {
	a := newLogger(&bytes.Buffer{}, false)
	b := newLogger(&bytes.Buffer{}, false)
	if a.RunID() == "" || a.RunID() == b.RunID() {
		t.Errorf("run ids %q and %q should be distinct and non-empty", a.RunID(), b.RunID())
	}
}

func TestNewHoldsEntriesUntilOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "logs")

	l := New(false)
	l.Info("before open")
	if l.FilePath() != "" {
		t.Errorf("FilePath() = %q before Open", l.FilePath())
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("log directory created before Open")
	}

	if err := l.Open(dir); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	first := l.FilePath()
	if err := l.Open(t.TempDir()); err != nil || l.FilePath() != first {
		t.Errorf("second Open() changed file to %q (err %v)", l.FilePath(), err)
	}
	l.Info("after open")
	if _, err := l.Writer().Write([]byte("stitcher line\n")); err != nil {
		t.Fatalf("Writer().Write() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	content := string(data)
	for _, want := range []string{"panostitch starting", "before open", "Log file:", "after open", "stitcher line"} {
		if !strings.Contains(content, want) {
			t.Errorf("log file missing %q:\n%s", want, content)
		}
	}
	if strings.Index(content, "before open") > strings.Index(content, "after open") {
		t.Error("held entries should precede later entries")
	}
}

func TestCloseWithoutOpenWritesNothing(t *testing.T) {
	l := New(true)
	l.Debug("dropped")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	// Writes after Close are discarded.
	if _, err := l.Writer().Write([]byte("late\n")); err != nil {
		t.Errorf("Write() after Close error = %v", err)
	}
	if l.FilePath() != "" {
		t.Errorf("FilePath() = %q, want empty", l.FilePath())
	}
}

func TestOpenFailsWhenLogDirIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "taken")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	l := New(false)
	defer func() { _ = l.Close() }()
	if err := l.Open(file); err == nil {
		t.Error("Open() expected error when the log dir is a file")
	}
	if l.FilePath() != "" {
		t.Errorf("FilePath() = %q after failed Open", l.FilePath())
	}
}
