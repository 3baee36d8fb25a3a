// Package main provides the CLI entry point for panostitch.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/panostitch/internal/config"
	"github.com/five82/panostitch/internal/logging"
	"github.com/five82/panostitch/internal/processing"
	"github.com/five82/panostitch/internal/reporter"
	"github.com/five82/panostitch/internal/resolution"
)

const (
	appName    = "panostitch"
	appVersion = "0.1.0"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// stitchArgs holds the parsed flags for a stitch run.
type stitchArgs struct {
	sdkDir        string
	cameraSDKLib  string
	mediaSDKLib   string
	ffprobe       string
	imageType     string
	outputSize    string
	frameIndex    string
	flowState     bool
	directionLock bool
	disableCUDA   bool
	softEncode    bool
	softDecode    bool
	accessoryType int
	// Output options
	json        bool
	verbose     bool
	logDir      string
	noLog       bool
	metricsFile string
	// Upload options
	uploadBucket string
	uploadPrefix string
}

func newRootCmd() *cobra.Command {
	var sa stitchArgs

	root := &cobra.Command{
		Use:   appName + " <input_video> <output_dir> [algorithm]",
		Short: "Stitch 360° video into an equirectangular image sequence",
		Long: fmt.Sprintf(`Stitch a dual-fisheye 360° video (.insv or .mp4) into an equirectangular
image sequence with the Insta360 Media SDK.

The output resolution is derived from the input: a square WxW video is
stitched to 2W x W, anything else keeps its size. If the input cannot be
probed, %dx%d is used.

Algorithms:
%s`, resolution.DefaultWidth, resolution.DefaultHeight, algorithmHelp()),
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStitch(cmd.Context(), sa, args)
		},
	}

	f := root.Flags()
	f.StringVar(&sa.sdkDir, "sdk-dir", "", "Media SDK root directory (env PANOSTITCH_SDK_DIR)")
	f.StringVar(&sa.cameraSDKLib, "camera-sdk-lib", "", "CameraSDK library directory (env PANOSTITCH_CAMERA_SDK_LIB)")
	f.StringVar(&sa.mediaSDKLib, "media-sdk-lib", "", "Media SDK library directory (env PANOSTITCH_MEDIA_SDK_LIB)")
	f.StringVar(&sa.ffprobe, "ffprobe", "", "ffprobe executable (env PANOSTITCH_FFPROBE)")
	f.StringVar(&sa.imageType, "image-type", string(config.DefaultImageType), "Frame format: jpg or png")
	f.StringVar(&sa.outputSize, "output-size", "", "Output size WxH, skips probing")
	f.StringVar(&sa.frameIndex, "frame-index", "", "Export only these frames, e.g. 20-50-30")
	f.BoolVar(&sa.flowState, "flowstate", false, "Enable FlowState stabilization")
	f.BoolVar(&sa.directionLock, "directionlock", false, "Enable direction lock")
	f.BoolVar(&sa.disableCUDA, "disable-cuda", false, "Stitch without CUDA")
	f.BoolVar(&sa.softEncode, "soft-encode", false, "Use software encoding")
	f.BoolVar(&sa.softDecode, "soft-decode", false, "Use software decoding")
	f.IntVar(&sa.accessoryType, "accessory-type", 0, "Camera accessory type passed to the SDK")

	f.BoolVar(&sa.json, "json", false, "Emit progress as JSON lines on stdout")
	f.BoolVarP(&sa.verbose, "verbose", "v", false, "Enable verbose output for troubleshooting")
	f.StringVarP(&sa.logDir, "log-dir", "l", "", "Log directory (defaults to OUTPUT_DIR/logs)")
	f.BoolVar(&sa.noLog, "no-log", false, "Disable log file creation")
	f.StringVar(&sa.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")

	f.StringVar(&sa.uploadBucket, "upload-bucket", "", "Upload frames to this bucket (env PANOSTITCH_MINIO_*)")
	f.StringVar(&sa.uploadPrefix, "upload-prefix", "", "Object key prefix for uploaded frames")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, appVersion)
		},
	})

	return root
}

func algorithmHelp() string {
	var b strings.Builder
	for _, a := range config.Algorithms {
		fmt.Fprintf(&b, "  %-14s %s\n", a, a.Description())
	}
	return b.String()
}

// buildConfig layers defaults, environment and flags, in that order.
func buildConfig(sa stitchArgs, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	env, err := config.LoadEnvironment()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvironment(env)

	if len(args) > 2 {
		algorithm, err := config.ParseAlgorithm(args[2])
		if err != nil {
			return nil, err
		}
		cfg.Algorithm = algorithm
	}

	imageType, err := config.ParseImageType(sa.imageType)
	if err != nil {
		return nil, err
	}
	cfg.ImageType = imageType

	if sa.outputSize != "" {
		cfg.OutputWidth, cfg.OutputHeight, err = config.ParseOutputSize(sa.outputSize)
		if err != nil {
			return nil, err
		}
	}

	if sa.sdkDir != "" {
		cfg.SDKDir = sa.sdkDir
	}
	if sa.cameraSDKLib != "" {
		cfg.CameraSDKLib = sa.cameraSDKLib
	}
	if sa.mediaSDKLib != "" {
		cfg.MediaSDKLib = sa.mediaSDKLib
	}
	if sa.ffprobe != "" {
		cfg.FFprobePath = sa.ffprobe
	}

	cfg.FrameIndex = sa.frameIndex
	cfg.FlowState = sa.flowState
	cfg.DirectionLock = sa.directionLock
	cfg.DisableCUDA = sa.disableCUDA
	cfg.SoftEncode = sa.softEncode
	cfg.SoftDecode = sa.softDecode
	cfg.AccessoryType = sa.accessoryType
	cfg.MetricsFile = sa.metricsFile
	cfg.UploadBucket = sa.uploadBucket
	cfg.UploadPrefix = sa.uploadPrefix

	// Empty means <output_dir>/logs, opened once the output dir is validated.
	cfg.LogDir = sa.logDir

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runStitch(parent context.Context, sa stitchArgs, args []string) error {
	cfg, err := buildConfig(sa, args)
	if err != nil {
		return err
	}

	var logger *logging.Logger
	if !sa.noLog {
		logger = logging.New(sa.verbose)
	}
	defer func() { _ = logger.Close() }()

	logger.Info("Input: %s", args[0])
	logger.Info("Output directory: %s", args[1])
	logger.Info("Algorithm: %s", cfg.Algorithm)
	logger.Info("SDK: %s", cfg.SDKDir)

	deps, err := processing.NewDeps(cfg, logger)
	if err != nil {
		return err
	}

	var rep reporter.Reporter
	var stitcherOut, stitcherErr io.Writer
	if sa.json {
		// stdout carries JSON events only; stitcher output goes to the log.
		rep = reporter.NewJSONReporter()
		stitcherOut, stitcherErr = logger.Writer(), logger.Writer()
	} else {
		rep = reporter.NewTerminalReporter(sa.verbose)
		stitcherOut, stitcherErr = os.Stdout, os.Stderr
	}
	if logger != nil {
		rep = reporter.NewCompositeReporter(rep, reporter.NewLogReporter(logger))
	}
	deps.Stdout = stitcherOut
	deps.Stderr = stitcherErr

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	_, err = processing.Stitch(ctx, cfg, processing.Request{InputPath: args[0], OutputDir: args[1]}, deps, rep)
	return err
}
