package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InputExtensions are the container suffixes the stitcher is known to accept.
var InputExtensions = map[string]bool{
	".insv": true,
	".mp4":  true,
}

// HasInputExtension reports whether path ends in a known container suffix.
func HasInputExtension(path string) bool {
	return InputExtensions[strings.ToLower(filepath.Ext(path))]
}

// GetFilename returns the filename from a path.
func GetFilename(path string) string {
	return filepath.Base(path)
}

// EnsureDirectory creates a directory if it doesn't exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(path, 0755)
}

// DirectoryExists checks if a directory exists.
func DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnsureDirectoryWritable checks that path is an existing directory the
// current user may create files in.
func EnsureDirectoryWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	if err := checkWritable(path); err != nil {
		return fmt.Errorf("no write permission in %s: %w", path, err)
	}
	return nil
}
