// Package media inspects local media files before upload: image pixel
// dimensions for the photo configure phase and duration/dimensions for
// the video configure phase.
package media

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
)

// Kind classifies a media file by its extension.
type Kind string

const (
	KindPhoto   Kind = "photo"
	KindVideo   Kind = "video"
	KindUnknown Kind = "unknown"
)

var (
	photoExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".gif": true, ".png": true, ".bmp": true,
	}
	videoExtensions = map[string]bool{
		".mov": true, ".mp4": true,
	}
)

// Classify returns the media kind for a file path based on its extension.
func Classify(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case photoExtensions[ext]:
		return KindPhoto
	case videoExtensions[ext]:
		return KindVideo
	default:
		return KindUnknown
	}
}

// ImageSize returns the pixel dimensions of the image at path without
// decoding the full image.
func ImageSize(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image %s: %w", filepath.Base(path), err)
	}
	return cfg.Width, cfg.Height, nil
}
