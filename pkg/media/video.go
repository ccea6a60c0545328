package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// VideoInfo describes a video file: playback duration in seconds and
// frame dimensions in pixels.
type VideoInfo struct {
	Duration float64
	Width    int
	Height   int
}

// VideoInspector reports duration and dimensions for a video file. The
// video configure phase needs these values; implementations are external
// collaborators and may shell out to system tools.
type VideoInspector interface {
	Probe(ctx context.Context, path string) (VideoInfo, error)
}

// FFProbe inspects videos using the ffprobe binary.
type FFProbe struct {
	// Binary overrides the ffprobe executable name. Empty means
	// "ffprobe" resolved via PATH.
	Binary string
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe runs ffprobe against the file and parses its JSON output.
func (p *FFProbe) Probe(ctx context.Context, path string) (VideoInfo, error) {
	binary := p.Binary
	if binary == "" {
		binary = "ffprobe"
	}

	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-show_entries", "stream=codec_type,width,height",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return VideoInfo{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := VideoInfo{}
	if parsed.Format.Duration != "" {
		info.Duration, err = strconv.ParseFloat(parsed.Format.Duration, 64)
		if err != nil {
			return VideoInfo{}, fmt.Errorf("bad duration %q: %w", parsed.Format.Duration, err)
		}
	}

	for _, stream := range parsed.Streams {
		if stream.CodecType == "video" {
			info.Width = stream.Width
			info.Height = stream.Height
			break
		}
	}

	if info.Width == 0 || info.Height == 0 {
		return VideoInfo{}, fmt.Errorf("no video stream found in %s", path)
	}

	return info, nil
}
