package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/five82/panostitch/internal/config"
	coreerrors "github.com/five82/panostitch/internal/errors"
	"github.com/five82/panostitch/internal/util"
)

// ValidateInput checks that the input video exists. An unexpected extension
// is only a warning: the stitcher may still accept the file.
func ValidateInput(result *Result, inputPath string) (string, error) {
	absPath, err := filepath.Abs(inputPath)
	if err != nil {
		result.add("Input file", false, err.Error())
		return "", coreerrors.NewPathError(fmt.Sprintf("invalid input path %s: %v", inputPath, err))
	}

	info, err := os.Stat(absPath)
	if err != nil {
		result.add("Input file", false, "not found")
		return "", coreerrors.NewPathError(fmt.Sprintf("input video not found: %s", absPath))
	}
	if info.IsDir() {
		result.add("Input file", false, "is a directory")
		return "", coreerrors.NewPathError(fmt.Sprintf("input is a directory, not a video: %s", absPath))
	}
	result.add("Input file", true, fmt.Sprintf("%s (%s)", util.GetFilename(absPath), util.FormatBytes(uint64(info.Size()))))

	if !util.HasInputExtension(absPath) {
		ext := filepath.Ext(absPath)
		if ext == "" {
			ext = "no extension"
		}
		result.warn(fmt.Sprintf("Input is not .insv or .mp4 (%s), continuing anyway", ext))
	}

	return absPath, nil
}

// ValidateSDK checks that the stitcher, its libraries and, for AI algorithms,
// the model file are installed.
func ValidateSDK(result *Result, cfg *config.Config) error {
	exe := cfg.ExecutablePath()
	if !util.FileExists(exe) {
		result.add("Stitcher executable", false, "not found at "+exe)
		return coreerrors.NewSDKError(fmt.Sprintf(
			"stitcher executable not found at %s; build the SDK example and check --sdk-dir", exe))
	}
	result.add("Stitcher executable", true, exe)

	libDir := cfg.CameraLibDir()
	if !util.DirectoryExists(libDir) {
		result.add("Camera SDK libraries", false, "not found at "+libDir)
		return coreerrors.NewSDKError(fmt.Sprintf("CameraSDK libraries not found in %s", libDir))
	}
	result.add("Camera SDK libraries", true, libDir)

	if cfg.Algorithm.RequiresModel() {
		model := cfg.ModelPath()
		if !util.FileExists(model) {
			result.add("AI model", false, "not found at "+model)
			return coreerrors.NewSDKError(fmt.Sprintf("AI stitching model for %s not found at %s", cfg.Algorithm, model))
		}
		result.add("AI model", true, model)
	}

	return nil
}

// PrepareOutputDir creates the output directory and checks it is writable.
// It returns the absolute path handed to the stitcher.
func PrepareOutputDir(result *Result, outputDir string) (string, error) {
	absPath, err := filepath.Abs(outputDir)
	if err != nil {
		result.add("Output directory", false, err.Error())
		return "", coreerrors.NewPathError(fmt.Sprintf("invalid output path %s: %v", outputDir, err))
	}

	if err := util.EnsureDirectory(absPath); err != nil {
		result.add("Output directory", false, "cannot create")
		return "", &coreerrors.CoreError{
			Kind:       coreerrors.KindPath,
			Message:    fmt.Sprintf("cannot create output directory %s", absPath),
			Underlying: err,
		}
	}

	if err := util.EnsureDirectoryWritable(absPath); err != nil {
		result.add("Output directory", false, "not writable")
		return "", &coreerrors.CoreError{
			Kind:       coreerrors.KindPath,
			Message:    fmt.Sprintf("no write permission in %s", absPath),
			Underlying: err,
		}
	}
	result.add("Output directory", true, absPath)

	return absPath, nil
}

// Summary renders failures as one line for error contexts.
func (r *Result) Summary() string {
	return strings.Join(r.GetFailures(), "; ")
}
