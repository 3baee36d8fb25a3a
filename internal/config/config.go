// Package config provides configuration types and defaults for panostitch.
package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Default constants
const (
	// DefaultSDKDir is the root of the MediaSDK installation.
	DefaultSDKDir = "/mnt/data/pdx/insta360sdk/libMediaSDK-dev-3.0.5.1-20250618_195946-amd64"

	// DefaultCameraSDKDirName is the CameraSDK directory, a sibling of the MediaSDK root.
	DefaultCameraSDKDirName = "CameraSDK-20250418_145834-2.0.2-Linux"

	// DefaultMediaSDKLib is where the MediaSDK shared objects are installed.
	DefaultMediaSDKLib = "/usr/lib"

	// DefaultFFprobe is the probe tool looked up on PATH.
	DefaultFFprobe = "ffprobe"

	// ExampleDirName holds the prebuilt stitcher; it is also the working directory of a run.
	ExampleDirName = "example"

	// ExecutableName is the stitcher binary inside ExampleDirName.
	ExecutableName = "main"

	// ModelDirName holds the AI stitching models.
	ModelDirName = "modelfile"

	// LibraryPathEnv is the dynamic loader search path variable.
	LibraryPathEnv = "LD_LIBRARY_PATH"

	// DefaultAlgorithm is used when no algorithm argument is given.
	DefaultAlgorithm = AlgorithmTemplate

	// DefaultImageType is the image sequence format.
	DefaultImageType = ImageTypeJPG
)

// Algorithm is a user-facing stitching algorithm name.
type Algorithm string

const (
	AlgorithmTemplate      Algorithm = "template"
	AlgorithmDynamicStitch Algorithm = "dynamicstitch"
	AlgorithmOptFlow       Algorithm = "optflow"
	AlgorithmAIStitchV1    Algorithm = "aistitchv1"
	AlgorithmAIStitchV2    Algorithm = "aistitchv2"
)

// Algorithms lists every accepted algorithm in help order.
var Algorithms = []Algorithm{
	AlgorithmTemplate,
	AlgorithmDynamicStitch,
	AlgorithmOptFlow,
	AlgorithmAIStitchV1,
	AlgorithmAIStitchV2,
}

// ParseAlgorithm parses a string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Algorithms {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: '%s', valid options: %s", ErrInvalidAlgorithm, s, AlgorithmNames())
}

// AlgorithmNames returns the accepted names joined with ", ".
func AlgorithmNames() string {
	names := make([]string, len(Algorithms))
	for i, a := range Algorithms {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

// String returns the string representation of the algorithm.
func (a Algorithm) String() string {
	return string(a)
}

// StitchType returns the value passed to the stitcher's -stitch_type flag.
func (a Algorithm) StitchType() string {
	switch a {
	case AlgorithmAIStitchV1, AlgorithmAIStitchV2:
		return "aistitch"
	default:
		return string(a)
	}
}

// ModelFile returns the AI model file name, or "" for non-AI algorithms.
func (a Algorithm) ModelFile() string {
	switch a {
	case AlgorithmAIStitchV1:
		return "ai_stitcher_v1.ins"
	case AlgorithmAIStitchV2:
		return "ai_stitcher_v2.ins"
	default:
		return ""
	}
}

// RequiresModel reports whether the algorithm needs an AI model file.
func (a Algorithm) RequiresModel() bool {
	return a.ModelFile() != ""
}

// Description is a one-line summary used in CLI help.
func (a Algorithm) Description() string {
	switch a {
	case AlgorithmTemplate:
		return "Fast, stable geometry (recommended for 3D/SfM)"
	case AlgorithmDynamicStitch:
		return "Good quality/speed trade-off"
	case AlgorithmOptFlow:
		return "Best seams, may distort geometry"
	case AlgorithmAIStitchV1:
		return "AI stitching for pre-X4 cameras"
	case AlgorithmAIStitchV2:
		return "AI stitching for X5 (experimental)"
	default:
		return ""
	}
}

// ImageType is the format of the exported image sequence.
type ImageType string

const (
	ImageTypeJPG ImageType = "jpg"
	ImageTypePNG ImageType = "png"
)

// ParseImageType parses a string into an ImageType.
func ParseImageType(s string) (ImageType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpg", "jpeg":
		return ImageTypeJPG, nil
	case "png":
		return ImageTypePNG, nil
	default:
		return "", fmt.Errorf("%w: '%s', valid options: jpg, png", ErrInvalidImageType, s)
	}
}

// Extension returns the file suffix written by the stitcher, with the dot.
func (t ImageType) Extension() string {
	return "." + string(t)
}

// String returns the string representation of the image type.
func (t ImageType) String() string {
	return string(t)
}

var (
	outputSizeRegex = regexp.MustCompile(`^(\d+)[xX](\d+)$`)
	frameIndexRegex = regexp.MustCompile(`^\d+(-\d+)*$`)
)

// ParseOutputSize parses a "WxH" string.
func ParseOutputSize(s string) (width, height int, err error) {
	m := outputSizeRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, fmt.Errorf("%w: '%s', expected WIDTHxHEIGHT", ErrInvalidOutputSize, s)
	}
	width, _ = strconv.Atoi(m[1])
	height, _ = strconv.Atoi(m[2])
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: '%s', dimensions must be positive", ErrInvalidOutputSize, s)
	}
	return width, height, nil
}

// Environment holds deployment settings read from the process environment.
type Environment struct {
	SDKDir       string `env:"PANOSTITCH_SDK_DIR"        envDefault:"/mnt/data/pdx/insta360sdk/libMediaSDK-dev-3.0.5.1-20250618_195946-amd64"`
	CameraSDKLib string `env:"PANOSTITCH_CAMERA_SDK_LIB"`
	MediaSDKLib  string `env:"PANOSTITCH_MEDIA_SDK_LIB"  envDefault:"/usr/lib"`
	FFprobe      string `env:"PANOSTITCH_FFPROBE"        envDefault:"ffprobe"`

	MinIOEndpoint  string `env:"PANOSTITCH_MINIO_ENDPOINT"`
	MinIOAccessKey string `env:"PANOSTITCH_MINIO_ACCESS_KEY"`
	MinIOSecretKey string `env:"PANOSTITCH_MINIO_SECRET_KEY"`
	MinIOUseSSL    bool   `env:"PANOSTITCH_MINIO_USE_SSL"    envDefault:"true"`
}

// LoadEnvironment reads deployment settings from the environment.
func LoadEnvironment() (Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return Environment{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}

// Config holds all configuration for a stitching run.
type Config struct {
	// SDK deployment
	SDKDir       string
	CameraSDKLib string // Empty means <SDKDir>/../DefaultCameraSDKDirName/lib
	MediaSDKLib  string
	FFprobePath  string

	// Run options
	Algorithm    Algorithm
	ImageType    ImageType
	OutputWidth  int // Zero means probe the input
	OutputHeight int
	LogDir       string
	MetricsFile  string

	// Vendor stitcher switches
	FrameIndex    string // e.g. "20-50-30"
	FlowState     bool
	DirectionLock bool
	DisableCUDA   bool
	SoftEncode    bool
	SoftDecode    bool
	AccessoryType int

	// Optional upload of the exported frames
	UploadBucket   string
	UploadPrefix   string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		SDKDir:      DefaultSDKDir,
		MediaSDKLib: DefaultMediaSDKLib,
		FFprobePath: DefaultFFprobe,
		Algorithm:   DefaultAlgorithm,
		ImageType:   DefaultImageType,
		MinIOUseSSL: true,
	}
}

// ApplyEnvironment copies non-empty environment settings onto the config.
func (c *Config) ApplyEnvironment(e Environment) {
	if e.SDKDir != "" {
		c.SDKDir = e.SDKDir
	}
	if e.CameraSDKLib != "" {
		c.CameraSDKLib = e.CameraSDKLib
	}
	if e.MediaSDKLib != "" {
		c.MediaSDKLib = e.MediaSDKLib
	}
	if e.FFprobe != "" {
		c.FFprobePath = e.FFprobe
	}
	c.MinIOEndpoint = e.MinIOEndpoint
	c.MinIOAccessKey = e.MinIOAccessKey
	c.MinIOSecretKey = e.MinIOSecretKey
	c.MinIOUseSSL = e.MinIOUseSSL
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := ParseAlgorithm(string(c.Algorithm)); err != nil {
		return err
	}

	if _, err := ParseImageType(string(c.ImageType)); err != nil {
		return err
	}

	if (c.OutputWidth == 0) != (c.OutputHeight == 0) || c.OutputWidth < 0 || c.OutputHeight < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidOutputSize, c.OutputWidth, c.OutputHeight)
	}

	if c.FrameIndex != "" && !frameIndexRegex.MatchString(c.FrameIndex) {
		return fmt.Errorf("%w: '%s', expected numbers separated by '-'", ErrInvalidFrameIndex, c.FrameIndex)
	}

	if c.AccessoryType < 0 {
		return fmt.Errorf("%w: must be >= 0, got %d", ErrInvalidAccessoryType, c.AccessoryType)
	}

	if c.SDKDir == "" {
		return fmt.Errorf("%w: SDK directory is empty", ErrMissingSDKPath)
	}

	if c.UploadBucket != "" && c.MinIOEndpoint == "" {
		return fmt.Errorf("%w: set PANOSTITCH_MINIO_ENDPOINT", ErrUploadNotConfigured)
	}

	return nil
}

// ExampleDir returns the stitcher's directory, used as its working directory.
func (c *Config) ExampleDir() string {
	return filepath.Join(c.SDKDir, ExampleDirName)
}

// ExecutablePath returns the path of the stitcher binary.
func (c *Config) ExecutablePath() string {
	return filepath.Join(c.ExampleDir(), ExecutableName)
}

// ModelDir returns the directory holding AI stitching models.
func (c *Config) ModelDir() string {
	return filepath.Join(c.SDKDir, ModelDirName)
}

// ModelPath returns the model for the configured algorithm, or "".
func (c *Config) ModelPath() string {
	name := c.Algorithm.ModelFile()
	if name == "" {
		return ""
	}
	return filepath.Join(c.ModelDir(), name)
}

// CameraLibDir returns the CameraSDK shared library directory.
func (c *Config) CameraLibDir() string {
	if c.CameraSDKLib != "" {
		return c.CameraSDKLib
	}
	return filepath.Join(filepath.Dir(filepath.Clean(c.SDKDir)), DefaultCameraSDKDirName, "lib")
}

// LibraryPath returns the LD_LIBRARY_PATH value for the stitcher.
func (c *Config) LibraryPath() string {
	return c.CameraLibDir() + string(filepath.ListSeparator) + c.MediaSDKLib
}

// HasOutputSize reports whether an explicit output size was configured.
func (c *Config) HasOutputSize() bool {
	return c.OutputWidth > 0 && c.OutputHeight > 0
}
