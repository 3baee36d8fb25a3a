package validation

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/five82/panostitch/internal/config"
	coreerrors "github.com/five82/panostitch/internal/errors"
)

func writeFile(t *testing.T, path string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), mode); err != nil {
		t.Fatal(err)
	}
}

// fakeSDK lays out an SDK tree and returns a config pointing at it.
func fakeSDK(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	sdkDir := filepath.Join(root, "media")

	cfg := config.NewConfig()
	cfg.SDKDir = sdkDir
	writeFile(t, cfg.ExecutablePath(), 0755)
	if err := os.MkdirAll(cfg.CameraLibDir(), 0755); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestValidateInput(t *testing.T) {
	dir := t.TempDir()
	insv := filepath.Join(dir, "VID_001.insv")
	writeFile(t, insv, 0644)

	var result Result
	abs, err := ValidateInput(&result, insv)
	if err != nil {
		t.Fatalf("ValidateInput() error = %v", err)
	}
	if abs != insv {
		t.Errorf("path = %s, want %s", abs, insv)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
	if !result.IsValid() {
		t.Errorf("IsValid() = false, failures: %v", result.GetFailures())
	}
}

func TestValidateInput_UppercaseExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CLIP.MP4")
	writeFile(t, path, 0644)

	var result Result
	if _, err := ValidateInput(&result, path); err != nil {
		t.Fatalf("ValidateInput() error = %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings for .MP4: %v", result.Warnings)
	}
}

func TestValidateInput_UnknownExtensionWarns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mov")
	writeFile(t, path, 0644)

	var result Result
	if _, err := ValidateInput(&result, path); err != nil {
		t.Fatalf("ValidateInput() error = %v, want warning only", err)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], ".mov") {
		t.Errorf("Warnings = %v, want one mentioning .mov", result.Warnings)
	}
}

func TestValidateInput_Missing(t *testing.T) {
	var result Result
	_, err := ValidateInput(&result, filepath.Join(t.TempDir(), "missing.insv"))
	if !coreerrors.IsKind(err, coreerrors.KindPath) {
		t.Fatalf("error = %v, want KindPath", err)
	}
	if result.IsValid() {
		t.Error("IsValid() = true after failure")
	}
}

func TestValidateInput_Directory(t *testing.T) {
	var result Result
	_, err := ValidateInput(&result, t.TempDir())
	if !coreerrors.IsKind(err, coreerrors.KindPath) {
		t.Errorf("error = %v, want KindPath", err)
	}
}

func TestValidateSDK(t *testing.T) {
	cfg := fakeSDK(t)

	var result Result
	if err := ValidateSDK(&result, cfg); err != nil {
		t.Fatalf("ValidateSDK() error = %v", err)
	}
	if len(result.Steps) != 2 {
		t.Errorf("len(Steps) = %d, want 2 for non-AI algorithm", len(result.Steps))
	}
}

func TestValidateSDK_Failures(t *testing.T) {
	tests := []struct {
		name   string
		modify func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "missing executable",
			modify: func(t *testing.T, cfg *config.Config) {
				if err := os.Remove(cfg.ExecutablePath()); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "missing camera libraries",
			modify: func(t *testing.T, cfg *config.Config) {
				cfg.CameraSDKLib = filepath.Join(t.TempDir(), "nope")
			},
		},
		{
			name: "missing AI model",
			modify: func(t *testing.T, cfg *config.Config) {
				cfg.Algorithm = config.AlgorithmAIStitchV2
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fakeSDK(t)
			tt.modify(t, cfg)

			var result Result
			err := ValidateSDK(&result, cfg)
			if !coreerrors.IsKind(err, coreerrors.KindSDK) {
				t.Fatalf("error = %v, want KindSDK", err)
			}
			if len(result.GetFailures()) != 1 {
				t.Errorf("GetFailures() = %v, want one failure", result.GetFailures())
			}
		})
	}
}

func TestValidateSDK_AIModelPresent(t *testing.T) {
	cfg := fakeSDK(t)
	cfg.Algorithm = config.AlgorithmAIStitchV1
	writeFile(t, cfg.ModelPath(), 0644)

	var result Result
	if err := ValidateSDK(&result, cfg); err != nil {
		t.Fatalf("ValidateSDK() error = %v", err)
	}
	if len(result.Steps) != 3 {
		t.Errorf("len(Steps) = %d, want 3", len(result.Steps))
	}
}

func TestPrepareOutputDir_CreatesNested(t *testing.T) {
	out := filepath.Join(t.TempDir(), "a", "b", "frames")

	var result Result
	abs, err := PrepareOutputDir(&result, out)
	if err != nil {
		t.Fatalf("PrepareOutputDir() error = %v", err)
	}
	if abs != out {
		t.Errorf("path = %s, want %s", abs, out)
	}
	if info, err := os.Stat(out); err != nil || !info.IsDir() {
		t.Errorf("output directory not created: %v", err)
	}
}

func TestPrepareOutputDir_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	writeFile(t, path, 0644)

	var result Result
	_, err := PrepareOutputDir(&result, path)
	if !coreerrors.IsKind(err, coreerrors.KindPath) {
		t.Errorf("error = %v, want KindPath", err)
	}
}

func TestPrepareOutputDir_ReadOnly(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	dir := filepath.Join(t.TempDir(), "ro")
	if err := os.Mkdir(dir, 0555); err != nil {
		t.Fatal(err)
	}

	var result Result
	_, err := PrepareOutputDir(&result, dir)
	if !coreerrors.IsKind(err, coreerrors.KindPath) {
		t.Errorf("error = %v, want KindPath", err)
	}
	if !strings.Contains(result.Summary(), "not writable") {
		t.Errorf("Summary() = %q", result.Summary())
	}
}
