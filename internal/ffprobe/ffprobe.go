// Package ffprobe provides functions for extracting stream information using ffprobe.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	coreerrors "github.com/five82/panostitch/internal/errors"
)

// DefaultBinary is the ffprobe executable looked up on PATH.
const DefaultBinary = "ffprobe"

// VideoInfo describes the first video stream of a container.
type VideoInfo struct {
	Width        int
	Height       int
	CodecName    string
	DurationSecs float64
	TotalFrames  uint64
	VideoStreams int
}

// ffprobeOutput represents the JSON output from ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	Index     int    `json:"index"`
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	NbFrames  string `json:"nb_frames"`
	Duration  string `json:"duration"`
}

// Client runs a specific ffprobe binary.
type Client struct {
	Binary string
}

// NewClient returns a client for the given binary, falling back to DefaultBinary.
func NewClient(binary string) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Client{Binary: binary}
}

// VideoInfo probes inputPath and returns its first video stream.
func (c *Client) VideoInfo(ctx context.Context, inputPath string) (*VideoInfo, error) {
	probe, err := c.run(ctx, inputPath)
	if err != nil {
		return nil, err
	}
	return extractVideoInfo(probe, inputPath)
}

// run executes ffprobe and returns the parsed output.
func (c *Client) run(ctx context.Context, inputPath string) (*ffprobeOutput, error) {
	cmd := exec.CommandContext(ctx, c.Binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, coreerrors.WrapExecError(c.Binary, err, strings.TrimSpace(stderr.String()))
	}

	return parseFFprobeOutput(output)
}

// parseFFprobeOutput decodes ffprobe's JSON document.
func parseFFprobeOutput(data []byte) (*ffprobeOutput, error) {
	var result ffprobeOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, coreerrors.NewFFprobeParseError("failed to parse ffprobe output", err)
	}
	return &result, nil
}

// extractVideoInfo picks the first video stream, the one the stitcher reads.
func extractVideoInfo(probe *ffprobeOutput, inputPath string) (*VideoInfo, error) {
	var videoStream *ffprobeStream
	count := 0
	for i := range probe.Streams {
		if probe.Streams[i].CodecType != "video" {
			continue
		}
		count++
		if videoStream == nil {
			videoStream = &probe.Streams[i]
		}
	}

	if videoStream == nil {
		return nil, coreerrors.NewNoStreamsFoundError(inputPath)
	}

	if videoStream.Width <= 0 || videoStream.Height <= 0 {
		return nil, coreerrors.NewFFprobeParseError(
			fmt.Sprintf("invalid dimensions in %s: %dx%d", inputPath, videoStream.Width, videoStream.Height), nil)
	}

	info := &VideoInfo{
		Width:        videoStream.Width,
		Height:       videoStream.Height,
		CodecName:    videoStream.CodecName,
		VideoStreams: count,
	}

	// Stream duration is more precise for insv; fall back to the container.
	for _, d := range []string{videoStream.Duration, probe.Format.Duration} {
		if d == "" {
			continue
		}
		if secs, err := strconv.ParseFloat(d, 64); err == nil {
			info.DurationSecs = secs
			break
		}
	}

	if videoStream.NbFrames != "" {
		if frames, err := strconv.ParseUint(videoStream.NbFrames, 10, 64); err == nil {
			info.TotalFrames = frames
		}
	}

	return info, nil
}
