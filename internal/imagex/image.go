// Package imagex turns uploaded profile pictures into bounded PNG images.
package imagex

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ContentTypePNG is the content type of every normalised image.
const ContentTypePNG = "image/png"

// MaxPixels caps width*height of an upload. It is checked before decoding.
const MaxPixels int64 = 40 << 20

var (
	ErrUnsupportedImage = errors.New("unsupported image")
	ErrTooLarge         = errors.New("image too large")
)

// Limits bound an upload. Zero values disable the corresponding check.
type Limits struct {
	MaxBytes     int64
	MaxDimension int
}

// NormalizePNG decodes data (png, jpeg, gif, bmp or webp) and returns it as a
// PNG whose sides do not exceed lim.MaxDimension, keeping the aspect ratio.
// A PNG that already fits is returned unchanged.
func NormalizePNG(data []byte, lim Limits) ([]byte, error) {
	if lim.MaxBytes > 0 && int64(len(data)) > lim.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), lim.MaxBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d pixels, limit %d", ErrTooLarge, cfg.Width, cfg.Height, MaxPixels)
	}

	fits := lim.MaxDimension <= 0 || (cfg.Width <= lim.MaxDimension && cfg.Height <= lim.MaxDimension)
	if format == "png" && fits {
		if _, err := png.Decode(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
		}
		return data, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	if !fits {
		src = scale(src, lim.MaxDimension)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func scale(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if w >= h {
		h = max(1, h*maxDim/w)
		w = maxDim
	} else {
		w = max(1, w*maxDim/h)
		h = maxDim
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
