// Package discovery finds the frames a stitch run wrote to disk.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/five82/panostitch/internal/config"
)

// DiscoveryLogger defines the interface for discovery logging.
type DiscoveryLogger interface {
	Info(format string, args ...any)
	Debug(format string, args ...any)
}

// Frame is one image written by the stitcher.
type Frame struct {
	Path string
	Size int64
}

// FrameResult contains the frames found in an output directory.
type FrameResult struct {
	Frames       []Frame
	TotalBytes   int64
	SkippedCount int
}

// Count returns the number of frames found.
func (r *FrameResult) Count() int {
	return len(r.Frames)
}

// FindFrames lists the non-hidden regular files in dir whose suffix matches
// imageType, case-insensitively. Frames are sorted by filename.
func FindFrames(dir string, imageType config.ImageType) (*FrameResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("directory does not exist: %s", dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", dir, err)
	}

	ext := imageType.Extension()
	result := &FrameResult{}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		name := entry.Name()

		// Skip hidden files
		if strings.HasPrefix(name, ".") {
			continue
		}

		if !strings.EqualFold(filepath.Ext(name), ext) {
			result.SkippedCount++
			continue
		}

		frame := Frame{Path: filepath.Join(dir, name)}
		if fi, err := entry.Info(); err == nil {
			frame.Size = fi.Size()
		}
		result.Frames = append(result.Frames, frame)
		result.TotalBytes += frame.Size
	}

	sort.Slice(result.Frames, func(i, j int) bool {
		return filepath.Base(result.Frames[i].Path) < filepath.Base(result.Frames[j].Path)
	})

	return result, nil
}

// CountFrames returns how many imageType frames dir holds.
func CountFrames(dir string, imageType config.ImageType) (int, error) {
	result, err := FindFrames(dir, imageType)
	if err != nil {
		return 0, err
	}
	return result.Count(), nil
}

// FindFramesWithLogging finds frames and logs the first few plus a count.
func FindFramesWithLogging(dir string, imageType config.ImageType, logger DiscoveryLogger) (*FrameResult, error) {
	result, err := FindFrames(dir, imageType)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logDiscoveredFrames(result, logger)
	}
	return result, nil
}

// logDiscoveredFrames logs the first 5 frames plus a count.
func logDiscoveredFrames(result *FrameResult, logger DiscoveryLogger) {
	if result.Count() == 0 {
		logger.Info("No frames found")
		return
	}

	logger.Info("Found %d frame(s)", result.Count())

	maxToLog := min(5, result.Count())
	for i := 0; i < maxToLog; i++ {
		logger.Debug("  %s", filepath.Base(result.Frames[i].Path))
	}

	if result.Count() > 5 {
		logger.Debug("  ... and %d more", result.Count()-5)
	}
	if result.SkippedCount > 0 {
		logger.Debug("  skipped %d other file(s)", result.SkippedCount)
	}
}
