// Package panostitch provides a Go library for stitching 360° video into
// equirectangular image sequences with the Insta360 Media SDK.
//
// panostitch wraps the SDK's example stitcher: it probes the input with
// ffprobe to pick an output resolution, runs the stitcher with the right
// library search path, and counts the frames it writes.
//
// Basic usage:
//
//	s, err := panostitch.New(
//	    panostitch.WithSDKDir("/opt/insta360/MediaSDK"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := s.Stitch(ctx, "VID_0001.insv", "frames/", "optflow")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Stitched %d frames at %s\n", result.FrameCount, result.Resolution)
package panostitch

import (
	"context"

	"github.com/five82/panostitch/internal/config"
	"github.com/five82/panostitch/internal/processing"
	"github.com/five82/panostitch/internal/reporter"
)

// Algorithm selects the SDK stitching method.
type Algorithm = config.Algorithm

const (
	AlgorithmTemplate      = config.AlgorithmTemplate
	AlgorithmDynamicStitch = config.AlgorithmDynamicStitch
	AlgorithmOptFlow       = config.AlgorithmOptFlow
	AlgorithmAIStitchV1    = config.AlgorithmAIStitchV1
	AlgorithmAIStitchV2    = config.AlgorithmAIStitchV2
)

// ImageType is the format of the written frames.
type ImageType = config.ImageType

const (
	ImageTypeJPG = config.ImageTypeJPG
	ImageTypePNG = config.ImageTypePNG
)

// Reporter receives progress events during a stitch.
type Reporter = reporter.Reporter

// ParseAlgorithm converts an algorithm name to an Algorithm value.
// Valid values are "template", "dynamicstitch", "optflow", "aistitchv1" and
// "aistitchv2" (case-insensitive).
func ParseAlgorithm(s string) (Algorithm, error) {
	return config.ParseAlgorithm(s)
}

// Stitcher is the main entry point for stitching.
type Stitcher struct {
	config *config.Config
}

// Result contains the outcome of a stitch.
type Result struct {
	OutputDir        string
	FrameCount       int
	TotalBytes       uint64
	Resolution       string
	Width            int
	Height           int
	ResolutionSource string
	UploadedObjects  int
}

// Option configures the stitcher.
type Option func(*config.Config)

// New creates a Stitcher. PANOSTITCH_* environment variables are applied
// first, then opts.
func New(opts ...Option) (*Stitcher, error) {
	cfg := config.NewConfig()

	env, err := config.LoadEnvironment()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvironment(env)

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Stitcher{config: cfg}, nil
}

// WithSDKDir sets the Media SDK root holding example/main and modelfile/.
func WithSDKDir(dir string) Option {
	return func(c *config.Config) {
		c.SDKDir = dir
	}
}

// WithCameraSDKLib sets the CameraSDK library directory.
func WithCameraSDKLib(dir string) Option {
	return func(c *config.Config) {
		c.CameraSDKLib = dir
	}
}

// WithMediaSDKLib sets the Media SDK library directory.
func WithMediaSDKLib(dir string) Option {
	return func(c *config.Config) {
		c.MediaSDKLib = dir
	}
}

// WithFFprobe sets the ffprobe executable.
func WithFFprobe(path string) Option {
	return func(c *config.Config) {
		c.FFprobePath = path
	}
}

// WithAlgorithm sets the default stitching algorithm.
func WithAlgorithm(a Algorithm) Option {
	return func(c *config.Config) {
		c.Algorithm = a
	}
}

// WithImageType selects jpg or png frames.
func WithImageType(t ImageType) Option {
	return func(c *config.Config) {
		c.ImageType = t
	}
}

// WithOutputSize skips probing and stitches at width x height.
func WithOutputSize(width, height int) Option {
	return func(c *config.Config) {
		c.OutputWidth = width
		c.OutputHeight = height
	}
}

// WithFrameIndex exports only the given frames, as "a-b-c".
func WithFrameIndex(index string) Option {
	return func(c *config.Config) {
		c.FrameIndex = index
	}
}

// WithFlowState enables FlowState stabilization.
func WithFlowState() Option {
	return func(c *config.Config) {
		c.FlowState = true
	}
}

// WithDirectionLock enables direction lock.
func WithDirectionLock() Option {
	return func(c *config.Config) {
		c.DirectionLock = true
	}
}

// WithDisableCUDA stitches without CUDA.
func WithDisableCUDA() Option {
	return func(c *config.Config) {
		c.DisableCUDA = true
	}
}

// WithSoftwareCodec uses software encoding and decoding.
func WithSoftwareCodec() Option {
	return func(c *config.Config) {
		c.SoftEncode = true
		c.SoftDecode = true
	}
}

// WithAccessoryType sets the camera accessory type passed to the SDK.
func WithAccessoryType(t int) Option {
	return func(c *config.Config) {
		c.AccessoryType = t
	}
}

// WithMetricsFile writes run metrics to path in Prometheus text format.
func WithMetricsFile(path string) Option {
	return func(c *config.Config) {
		c.MetricsFile = path
	}
}

// WithUpload copies frames to bucket under prefix after stitching. The
// endpoint and credentials come from PANOSTITCH_MINIO_*.
func WithUpload(bucket, prefix string) Option {
	return func(c *config.Config) {
		c.UploadBucket = bucket
		c.UploadPrefix = prefix
	}
}

// Stitch stitches input into outputDir. An empty algorithm uses the
// configured default.
func (s *Stitcher) Stitch(ctx context.Context, input, outputDir, algorithm string) (*Result, error) {
	return s.StitchWithReporter(ctx, input, outputDir, algorithm, nil)
}

// StitchWithReporter is Stitch with direct access to all progress events.
func (s *Stitcher) StitchWithReporter(ctx context.Context, input, outputDir, algorithm string, rep Reporter) (*Result, error) {
	cfg := *s.config
	if algorithm != "" {
		a, err := config.ParseAlgorithm(algorithm)
		if err != nil {
			return nil, err
		}
		cfg.Algorithm = a
	}

	deps, err := processing.NewDeps(&cfg, nil)
	if err != nil {
		return nil, err
	}

	r, err := processing.Stitch(ctx, &cfg, processing.Request{InputPath: input, OutputDir: outputDir}, deps, rep)
	if err != nil {
		return nil, err
	}

	result := &Result{
		OutputDir:        r.OutputDir,
		FrameCount:       r.FrameCount,
		TotalBytes:       r.TotalBytes,
		Resolution:       r.Resolution.String(),
		Width:            r.Resolution.Width,
		Height:           r.Resolution.Height,
		ResolutionSource: string(r.Resolution.Source),
	}
	if r.Upload != nil {
		result.UploadedObjects = r.Upload.Objects
	}
	return result, nil
}
