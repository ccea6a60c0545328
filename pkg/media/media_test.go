package media

import (
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		kind Kind
	}{
		{"photo.jpg", KindPhoto},
		{"photo.JPG", KindPhoto},
		{"photo.jpeg", KindPhoto},
		{"image.png", KindPhoto},
		{"anim.gif", KindPhoto},
		{"scan.bmp", KindPhoto},
		{"/some/dir/clip.mp4", KindVideo},
		{"clip.MOV", KindVideo},
		{"notes.txt", KindUnknown},
		{"archive.zip", KindUnknown},
		{"noextension", KindUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.kind, Classify(tt.path), "path: %s", tt.path)
	}
}

func TestImageSizePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 320, 240))))
	require.NoError(t, f.Close())

	width, height, err := ImageSize(path)
	require.NoError(t, err)
	assert.Equal(t, 320, width)
	assert.Equal(t, 240, height)
}

func TestImageSizeJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jpg")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, image.NewRGBA(image.Rect(0, 0, 720, 1280)), nil))
	require.NoError(t, f.Close())

	width, height, err := ImageSize(path)
	require.NoError(t, err)
	assert.Equal(t, 720, width)
	assert.Equal(t, 1280, height)
}

func TestImageSizeBMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.bmp")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, image.NewRGBA(image.Rect(0, 0, 64, 48))))
	require.NoError(t, f.Close())

	width, height, err := ImageSize(path)
	require.NoError(t, err)
	assert.Equal(t, 64, width)
	assert.Equal(t, 48, height)
}

func TestImageSizeMissingFile(t *testing.T) {
	_, _, err := ImageSize("/nonexistent/photo.jpg")
	assert.Error(t, err)
}

func TestImageSizeNotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))

	_, _, err := ImageSize(path)
	assert.Error(t, err)
}
