// Package imageio loads page scans from disk and prepares them for upload.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"img2text/internal/util"
)

// Error wraps a failure with the step that produced it.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("image %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Image is an encoded image ready to be sent to a vision model.
type Image struct {
	Path     string
	Data     []byte
	MIMEType string
	Format   string
	Width    int
	Height   int
	Resized  bool
}

// Load reads and validates the image at path. A missing file yields an error
// matching fs.ErrNotExist. When maxDim > 0, images with a side longer than
// maxDim are scaled down to fit and re-encoded.
func Load(path string, maxDim int) (Image, error) {
	if path == "" {
		return Image{}, &Error{Op: "load", Err: errors.New("empty path")}
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304
	if err != nil {
		return Image{}, &Error{Op: "load", Path: path, Err: err}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, &Error{Op: "decode", Path: path, Err: err}
	}

	img := Image{
		Path:     path,
		Data:     data,
		Format:   format,
		MIMEType: util.PickMIME(util.MimeFromFormat(format), "", data),
		Width:    cfg.Width,
		Height:   cfg.Height,
	}
	if maxDim <= 0 || (cfg.Width <= maxDim && cfg.Height <= maxDim) {
		return img, nil
	}
	return downscale(img, maxDim)
}

func downscale(img Image, maxDim int) (Image, error) {
	src, err := imaging.Decode(bytes.NewReader(img.Data), imaging.AutoOrientation(true))
	if err != nil {
		return Image{}, &Error{Op: "decode", Path: img.Path, Err: err}
	}
	dst := imaging.Fit(src, maxDim, maxDim, imaging.Lanczos)

	enc, mime, format := imaging.PNG, "image/png", "png"
	if img.Format == "jpeg" {
		enc, mime, format = imaging.JPEG, "image/jpeg", "jpeg"
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, enc); err != nil {
		return Image{}, &Error{Op: "encode", Path: img.Path, Err: err}
	}

	b := dst.Bounds()
	return Image{
		Path:     img.Path,
		Data:     buf.Bytes(),
		MIMEType: mime,
		Format:   format,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Resized:  true,
	}, nil
}
