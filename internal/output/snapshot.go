// Package output writes rendered frames to image files and video.
package output

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"yaws/internal/graphics/renderer"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

var ErrEmptyFrame = errors.New("output: empty frame")

// toByte quantizes a [0, 1] channel. Out-of-range values are clamped.
func toByte(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// ToNRGBA converts a tonemapped frame into an 8-bit image. Row 0 stays on top.
func ToNRGBA(buf *renderer.RGBABuffer) (*image.NRGBA, error) {
	if buf == nil || len(buf.Pix) == 0 {
		return nil, ErrEmptyFrame
	}
	w, h := buf.Size()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x, c := range buf.Row(y) {
			img.SetNRGBA(x, y, color.NRGBA{R: toByte(c[0]), G: toByte(c[1]), B: toByte(c[2]), A: toByte(c[3])})
		}
	}
	return img, nil
}

// Scale resamples img to width x height with Catmull-Rom. A non-positive
// dimension keeps the aspect ratio of the other; both zero returns img.
func Scale(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if width <= 0 && height <= 0 {
		return img
	}
	if width <= 0 {
		width = max(1, b.Dx()*height/b.Dy())
	}
	if height <= 0 {
		height = max(1, b.Dy()*width/b.Dx())
	}
	if width == b.Dx() && height == b.Dy() {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Encode writes img in the format implied by ext (".png", ".tif", ".tiff",
// ".bmp"). Anything else is written as PNG.
func Encode(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case ".bmp":
		return bmp.Encode(w, img)
	default:
		return png.Encode(w, img)
	}
}

// Snapshot saves the frame to path, optionally resized.
func Snapshot(path string, buf *renderer.RGBABuffer, width, height int) error {
	img, err := ToNRGBA(buf)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("could not create snapshot directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create snapshot: %w", err)
	}
	if err := Encode(f, Scale(img, width, height), filepath.Ext(path)); err != nil {
		f.Close()
		return fmt.Errorf("could not encode snapshot %s: %w", path, err)
	}
	return f.Close()
}
