package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.SDKDir != DefaultSDKDir {
		t.Errorf("expected SDKDir=%s, got %s", DefaultSDKDir, cfg.SDKDir)
	}
	if cfg.Algorithm != AlgorithmTemplate {
		t.Errorf("expected Algorithm=template, got %s", cfg.Algorithm)
	}
	if cfg.ImageType != ImageTypeJPG {
		t.Errorf("expected ImageType=jpg, got %s", cfg.ImageType)
	}
	if cfg.HasOutputSize() {
		t.Error("default config should probe for output size")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid, got %v", err)
	}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		input   string
		want    Algorithm
		wantErr bool
	}{
		{"template", AlgorithmTemplate, false},
		{"dynamicstitch", AlgorithmDynamicStitch, false},
		{"optflow", AlgorithmOptFlow, false},
		{"aistitchv1", AlgorithmAIStitchV1, false},
		{"aistitchv2", AlgorithmAIStitchV2, false},
		{"  OptFlow ", AlgorithmOptFlow, false},
		{"aistitch", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAlgorithm) {
					t.Errorf("ParseAlgorithm(%q) error = %v, want ErrInvalidAlgorithm", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAlgorithm(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAlgorithm(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestAlgorithmStitchTypeAndModel(t *testing.T) {
	tests := []struct {
		algorithm  Algorithm
		stitchType string
		model      string
	}{
		{AlgorithmTemplate, "template", ""},
		{AlgorithmDynamicStitch, "dynamicstitch", ""},
		{AlgorithmOptFlow, "optflow", ""},
		{AlgorithmAIStitchV1, "aistitch", "ai_stitcher_v1.ins"},
		{AlgorithmAIStitchV2, "aistitch", "ai_stitcher_v2.ins"},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm.String(), func(t *testing.T) {
			if got := tt.algorithm.StitchType(); got != tt.stitchType {
				t.Errorf("StitchType() = %s, want %s", got, tt.stitchType)
			}
			if got := tt.algorithm.ModelFile(); got != tt.model {
				t.Errorf("ModelFile() = %q, want %q", got, tt.model)
			}
			if got := tt.algorithm.RequiresModel(); got != (tt.model != "") {
				t.Errorf("RequiresModel() = %v", got)
			}
			if tt.algorithm.Description() == "" {
				t.Error("Description() should not be empty")
			}
		})
	}
}

func TestParseImageType(t *testing.T) {
	if got, err := ParseImageType("JPEG"); err != nil || got != ImageTypeJPG {
		t.Errorf("ParseImageType(JPEG) = %v, %v", got, err)
	}
	if got, err := ParseImageType("png"); err != nil || got != ImageTypePNG {
		t.Errorf("ParseImageType(png) = %v, %v", got, err)
	}
	if _, err := ParseImageType("tiff"); !errors.Is(err, ErrInvalidImageType) {
		t.Errorf("ParseImageType(tiff) error = %v, want ErrInvalidImageType", err)
	}
	if ImageTypePNG.Extension() != ".png" {
		t.Errorf("Extension() = %s, want .png", ImageTypePNG.Extension())
	}
}

func TestParseOutputSize(t *testing.T) {
	tests := []struct {
		input   string
		w, h    int
		wantErr bool
	}{
		{"11520x5760", 11520, 5760, false},
		{"1920X960", 1920, 960, false},
		{" 3840x1920 ", 3840, 1920, false},
		{"0x960", 0, 0, true},
		{"1920", 0, 0, true},
		{"axb", 0, 0, true},
		{"-1x2", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			w, h, err := ParseOutputSize(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidOutputSize) {
					t.Errorf("ParseOutputSize(%q) error = %v, want ErrInvalidOutputSize", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseOutputSize(%q) unexpected error: %v", tt.input, err)
			}
			if w != tt.w || h != tt.h {
				t.Errorf("ParseOutputSize(%q) = %dx%d, want %dx%d", tt.input, w, h, tt.w, tt.h)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name         string
		modify       func(*Config)
		wantSentinel error
	}{
		{
			name:   "default config is valid",
			modify: func(c *Config) {},
		},
		{
			name:         "unknown algorithm",
			modify:       func(c *Config) { c.Algorithm = "fancy" },
			wantSentinel: ErrInvalidAlgorithm,
		},
		{
			name:         "unknown image type",
			modify:       func(c *Config) { c.ImageType = "bmp" },
			wantSentinel: ErrInvalidImageType,
		},
		{
			name:         "width without height",
			modify:       func(c *Config) { c.OutputWidth = 1920 },
			wantSentinel: ErrInvalidOutputSize,
		},
		{
			name:   "explicit size is valid",
			modify: func(c *Config) { c.OutputWidth, c.OutputHeight = 1920, 960 },
		},
		{
			name:   "frame index sequence is valid",
			modify: func(c *Config) { c.FrameIndex = "20-50-30" },
		},
		{
			name:         "malformed frame index",
			modify:       func(c *Config) { c.FrameIndex = "20,50" },
			wantSentinel: ErrInvalidFrameIndex,
		},
		{
			name:         "negative accessory type",
			modify:       func(c *Config) { c.AccessoryType = -1 },
			wantSentinel: ErrInvalidAccessoryType,
		},
		{
			name:         "empty SDK dir",
			modify:       func(c *Config) { c.SDKDir = "" },
			wantSentinel: ErrMissingSDKPath,
		},
		{
			name:         "upload without endpoint",
			modify:       func(c *Config) { c.UploadBucket = "frames" },
			wantSentinel: ErrUploadNotConfigured,
		},
		{
			name: "upload with endpoint",
			modify: func(c *Config) {
				c.UploadBucket = "frames"
				c.MinIOEndpoint = "localhost:9000"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantSentinel == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantSentinel) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantSentinel)
			}
		})
	}
}

func TestSDKPaths(t *testing.T) {
	cfg := NewConfig()
	cfg.SDKDir = "/opt/sdk/media"

	if got, want := cfg.ExampleDir(), filepath.Join("/opt/sdk/media", "example"); got != want {
		t.Errorf("ExampleDir() = %s, want %s", got, want)
	}
	if got, want := cfg.ExecutablePath(), filepath.Join("/opt/sdk/media", "example", "main"); got != want {
		t.Errorf("ExecutablePath() = %s, want %s", got, want)
	}
	if got, want := cfg.CameraLibDir(), filepath.Join("/opt/sdk", DefaultCameraSDKDirName, "lib"); got != want {
		t.Errorf("CameraLibDir() = %s, want %s", got, want)
	}
	if cfg.ModelPath() != "" {
		t.Errorf("ModelPath() for template = %q, want empty", cfg.ModelPath())
	}

	cfg.Algorithm = AlgorithmAIStitchV2
	if got, want := cfg.ModelPath(), filepath.Join("/opt/sdk/media", "modelfile", "ai_stitcher_v2.ins"); got != want {
		t.Errorf("ModelPath() = %s, want %s", got, want)
	}

	cfg.CameraSDKLib = "/opt/camera/lib"
	cfg.MediaSDKLib = "/usr/local/lib"
	want := "/opt/camera/lib" + string(filepath.ListSeparator) + "/usr/local/lib"
	if got := cfg.LibraryPath(); got != want {
		t.Errorf("LibraryPath() = %s, want %s", got, want)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PANOSTITCH_SDK_DIR", "/srv/sdk")
	t.Setenv("PANOSTITCH_CAMERA_SDK_LIB", "/srv/camera/lib")
	t.Setenv("PANOSTITCH_FFPROBE", "/usr/local/bin/ffprobe")
	t.Setenv("PANOSTITCH_MINIO_ENDPOINT", "minio:9000")
	t.Setenv("PANOSTITCH_MINIO_USE_SSL", "false")

	e, err := LoadEnvironment()
	if err != nil {
		t.Fatalf("LoadEnvironment() error = %v", err)
	}
	if e.MediaSDKLib != DefaultMediaSDKLib {
		t.Errorf("MediaSDKLib = %s, want default %s", e.MediaSDKLib, DefaultMediaSDKLib)
	}

	cfg := NewConfig()
	cfg.ApplyEnvironment(e)

	if cfg.SDKDir != "/srv/sdk" {
		t.Errorf("SDKDir = %s, want /srv/sdk", cfg.SDKDir)
	}
	if cfg.CameraLibDir() != "/srv/camera/lib" {
		t.Errorf("CameraLibDir() = %s, want /srv/camera/lib", cfg.CameraLibDir())
	}
	if cfg.FFprobePath != "/usr/local/bin/ffprobe" {
		t.Errorf("FFprobePath = %s", cfg.FFprobePath)
	}
	if cfg.MinIOEndpoint != "minio:9000" || cfg.MinIOUseSSL {
		t.Errorf("MinIO settings = %s ssl=%v", cfg.MinIOEndpoint, cfg.MinIOUseSSL)
	}
}

func TestLoadEnvironmentInvalidBool(t *testing.T) {
	t.Setenv("PANOSTITCH_MINIO_USE_SSL", "sometimes")

	if _, err := LoadEnvironment(); err == nil {
		t.Error("LoadEnvironment() expected error for malformed bool")
	}
}
