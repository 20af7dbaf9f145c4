// Package imageproc validates and normalizes generated images before upload.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	FormatPNG  = "png"
	FormatWebP = "webp"

	WebPQuality = 80
)

// ErrInvalidImage is returned when the payload is not a decodable image.
var ErrInvalidImage = errors.New("invalid image payload")

// Options controls the output of Normalize.
type Options struct {
	// MaxDimension bounds the longest side; 0 disables resizing.
	MaxDimension int
	// Format is png or webp.
	Format string
}

// Result is an encoded image ready for upload.
type Result struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// Normalize decodes data, shrinks it to fit MaxDimension and re-encodes it in
// the requested format. PNG input that needs no change is returned untouched.
func Normalize(data []byte, opts Options) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if !isSupportedDecodedFormat(format) {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidImage, format)
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}

	target := strings.ToLower(opts.Format)
	if target == "" {
		target = FormatPNG
	}

	out := src
	if opts.MaxDimension > 0 {
		out = resizeToFit(src, opts.MaxDimension, opts.MaxDimension)
	}
	ob := out.Bounds()

	switch target {
	case FormatPNG:
		if out == src && format == "png" {
			return &Result{Data: data, ContentType: "image/png", Ext: FormatPNG, Width: ob.Dx(), Height: ob.Dy()}, nil
		}
		encoded, err := encodePNG(out)
		if err != nil {
			return nil, err
		}
		return &Result{Data: encoded, ContentType: "image/png", Ext: FormatPNG, Width: ob.Dx(), Height: ob.Dy()}, nil
	case FormatWebP:
		encoded, err := encodeWebP(out, WebPQuality)
		if err != nil {
			return nil, err
		}
		return &Result{Data: encoded, ContentType: "image/webp", Ext: FormatWebP, Width: ob.Dx(), Height: ob.Dy()}, nil
	}
	return nil, fmt.Errorf("unsupported output format %q", opts.Format)
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodePNG(img image.Image) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

func isSupportedDecodedFormat(format string) bool {
	switch format {
	case "jpeg", "png", "webp":
		return true
	default:
		return false
	}
}
