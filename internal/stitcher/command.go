// Package stitcher builds and runs the vendor stitching executable.
package stitcher

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/five82/panostitch/internal/config"
	"github.com/five82/panostitch/internal/resolution"
)

// Params holds everything needed to assemble one stitcher invocation.
type Params struct {
	Executable  string
	WorkDir     string
	LibraryPath string

	InputPath  string // Absolute
	OutputDir  string // Absolute
	ImageType  config.ImageType
	OutputSize resolution.Resolution
	StitchType string
	ModelPath  string // Empty unless the algorithm needs one

	FrameIndex    string
	FlowState     bool
	DirectionLock bool
	DisableCUDA   bool
	SoftEncode    bool
	SoftDecode    bool
	AccessoryType int
}

// NewParams derives invocation parameters from the run configuration.
func NewParams(cfg *config.Config, inputPath, outputDir string, size resolution.Resolution) *Params {
	return &Params{
		Executable:    cfg.ExecutablePath(),
		WorkDir:       cfg.ExampleDir(),
		LibraryPath:   cfg.LibraryPath(),
		InputPath:     inputPath,
		OutputDir:     outputDir,
		ImageType:     cfg.ImageType,
		OutputSize:    size,
		StitchType:    cfg.Algorithm.StitchType(),
		ModelPath:     cfg.ModelPath(),
		FrameIndex:    cfg.FrameIndex,
		FlowState:     cfg.FlowState,
		DirectionLock: cfg.DirectionLock,
		DisableCUDA:   cfg.DisableCUDA,
		SoftEncode:    cfg.SoftEncode,
		SoftDecode:    cfg.SoftDecode,
		AccessoryType: cfg.AccessoryType,
	}
}

// Command is a fully resolved process invocation.
type Command struct {
	Path string
	Args []string
	Dir  string
	Env  []string

	// Stdout receives the stitcher's output lines. Progress lines are
	// only forwarded when no progress callback is installed.
	Stdout io.Writer
	// Stderr receives the stitcher's diagnostics as they arrive.
	Stderr io.Writer
}

// String renders the command line for logs.
func (c *Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// argBuilder accumulates flags in order.
type argBuilder struct {
	args []string
}

func (b *argBuilder) flag(name string) *argBuilder {
	b.args = append(b.args, "-"+name)
	return b
}

func (b *argBuilder) value(name, value string) *argBuilder {
	b.args = append(b.args, "-"+name, value)
	return b
}

func (b *argBuilder) flagIf(cond bool, name string) *argBuilder {
	if cond {
		b.flag(name)
	}
	return b
}

// BuildArgs returns the stitcher arguments in the order the SDK example expects.
func BuildArgs(p *Params) []string {
	b := &argBuilder{}
	b.value("inputs", p.InputPath).
		value("image_sequence_dir", p.OutputDir).
		value("image_type", p.ImageType.String()).
		value("output_size", p.OutputSize.String()).
		value("stitch_type", p.StitchType)

	if p.ModelPath != "" {
		b.value("ai_stitching_model", p.ModelPath)
	}
	if p.FrameIndex != "" {
		b.value("export_frame_index", p.FrameIndex)
	}

	b.flagIf(p.FlowState, "enable_flowstate").
		flagIf(p.DirectionLock, "enable_directionlock").
		flagIf(p.DisableCUDA, "disable_cuda").
		flagIf(p.SoftEncode, "enable_soft_encode").
		flagIf(p.SoftDecode, "enable_soft_decode")

	if p.AccessoryType > 0 {
		b.value("camera_accessory_type", strconv.Itoa(p.AccessoryType))
	}

	return b.args
}

// BuildCommand assembles the process invocation for p. The working directory
// is the SDK example dir and the library search path replaces any inherited one.
func BuildCommand(p *Params) *Command {
	return &Command{
		Path: p.Executable,
		Args: BuildArgs(p),
		Dir:  p.WorkDir,
		Env:  withEnv(os.Environ(), config.LibraryPathEnv, p.LibraryPath),
	}
}

// withEnv returns env with key set to value, dropping earlier definitions.
func withEnv(env []string, key, value string) []string {
	prefix := key + "="
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			continue
		}
		out = append(out, kv)
	}
	return append(out, prefix+value)
}
