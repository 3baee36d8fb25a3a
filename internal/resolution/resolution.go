// Package resolution derives the equirectangular output size of a stitch.
package resolution

import (
	"context"
	"fmt"

	"github.com/five82/panostitch/internal/ffprobe"
)

const (
	// DefaultWidth and DefaultHeight are used when the input cannot be probed.
	DefaultWidth  = 11520
	DefaultHeight = 5760
)

// Source records how a Resolution was chosen.
type Source string

const (
	// SourceDualFisheye means a square frame was doubled to 2:1.
	SourceDualFisheye Source = "dual-fisheye"
	// SourcePassthrough means the probed size was used unchanged.
	SourcePassthrough Source = "passthrough"
	// SourceDefault means probing failed and the default was used.
	SourceDefault Source = "default"
	// SourceOverride means the size was given explicitly.
	SourceOverride Source = "override"
)

// Resolution is an output frame size.
type Resolution struct {
	Width  int
	Height int
	Source Source
}

// String renders the size as WxH, the format the stitcher expects.
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Default returns the fallback resolution.
func Default() Resolution {
	return Resolution{Width: DefaultWidth, Height: DefaultHeight, Source: SourceDefault}
}

// Override returns an explicitly requested resolution.
func Override(width, height int) Resolution {
	return Resolution{Width: width, Height: height, Source: SourceOverride}
}

// ForDimensions applies the dual-fisheye rule: a square WxW frame holds two
// lenses side by side and stitches to 2W x W. Anything else is assumed to be
// equirectangular already and passes through.
func ForDimensions(width, height int) Resolution {
	if width == height {
		return Resolution{Width: width * 2, Height: width, Source: SourceDualFisheye}
	}
	return Resolution{Width: width, Height: height, Source: SourcePassthrough}
}

// Prober returns stream information for a media file.
type Prober interface {
	VideoInfo(ctx context.Context, inputPath string) (*ffprobe.VideoInfo, error)
}

// Result is the outcome of Probe.
type Result struct {
	Resolution Resolution
	// Info is nil when probing failed.
	Info *ffprobe.VideoInfo
	// Err is the probing failure behind a default resolution.
	Err error
}

// Probe inspects inputPath and derives the output resolution. It never fails:
// any probing error yields Default with the error attached for reporting.
func Probe(ctx context.Context, prober Prober, inputPath string) Result {
	info, err := prober.VideoInfo(ctx, inputPath)
	if err != nil {
		return Result{Resolution: Default(), Err: err}
	}
	return Result{Resolution: ForDimensions(info.Width, info.Height), Info: info}
}
