package imageio

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.Black)
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page_0001.png")
	writePNG(t, path, 40, 20)

	img, err := Load(path, 0)
	require.NoError(t, err)

	assert.Equal(t, "png", img.Format)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, 40, img.Width)
	assert.Equal(t, 20, img.Height)
	assert.False(t, img.Resized)
	assert.NotEmpty(t, img.Data)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.png"), 0)

	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	var ie *Error
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "load", ie.Op)
}

func TestLoadNotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.png")
	require.NoError(t, os.WriteFile(path, []byte("definitely not pixels"), 0o600))

	_, err := Load(path, 0)

	var ie *Error
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "decode", ie.Op)
	assert.NotErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("", 0)
	assert.Error(t, err)
}

func TestLoadDownscalesLargeImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	writePNG(t, path, 400, 100)

	img, err := Load(path, 100)
	require.NoError(t, err)

	assert.True(t, img.Resized)
	assert.Equal(t, 100, img.Width)
	assert.Equal(t, 25, img.Height)
	assert.Equal(t, "image/png", img.MIMEType)
}

func TestLoadDownscaleKeepsJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.jpg")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, image.NewGray(image.Rect(0, 0, 300, 300)), nil))
	require.NoError(t, f.Close())

	img, err := Load(path, 150)
	require.NoError(t, err)

	assert.True(t, img.Resized)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Equal(t, 150, img.Width)
}
