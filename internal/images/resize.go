// Package images normalizes uploaded event images: decode, scale to fit the
// listing frame, re-encode as JPEG under a content-addressed-ish ULID name.
package images

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/image/draw"
)

const (
	// MaxWidth and MaxHeight bound the stored image. Images already inside
	// the frame are kept at their original size.
	MaxWidth  = 1280
	MaxHeight = 720

	// jpegQuality matches the listing frontend's tolerance for artifacts.
	jpegQuality = 75
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Process decodes src, scales it to fit inside MaxWidth x MaxHeight
// preserving aspect ratio, and writes it as <ulid>.jpg under dir. It returns
// the generated file name.
func Process(src io.Reader, dir string) (string, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return "", ErrUnsupportedFormat
	}

	scaled := fitInside(img, MaxWidth, MaxHeight)

	name := ulid.MustNew(ulid.Timestamp(time.Now()), ulid.DefaultEntropy()).String() + ".jpg"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}

	out, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	return name, nil
}

// fitInside scales img down so both dimensions fit the frame, preserving
// aspect ratio. Images already inside the frame pass through untouched.
func fitInside(img image.Image, maxW, maxH int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxW && h <= maxH {
		return img
	}

	ratioW := float64(maxW) / float64(w)
	ratioH := float64(maxH) / float64(h)
	ratio := ratioW
	if ratioH < ratio {
		ratio = ratioH
	}

	dstW := int(float64(w) * ratio)
	dstH := int(float64(h) * ratio)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
