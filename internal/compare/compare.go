package compare

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/orisano/pixelmatch"
)

// DefaultPixelThreshold is the per-pixel color distance used when none is configured.
const DefaultPixelThreshold = 0.01

// ErrDimensionMismatch indicates the two images do not share width and height.
var ErrDimensionMismatch = errors.New("images have different dimensions")

// Result captures the outcome of a single image comparison.
type Result struct {
	Mismatched int
	Total      int
	// Diff visualises mismatched pixels; it has the same bounds as the inputs.
	Diff image.Image
}

// Ratio returns the fraction of mismatched pixels.
func (r Result) Ratio() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Mismatched) / float64(r.Total)
}

// Comparator wraps the pixel differ.
type Comparator struct {
	// PixelThreshold is the per-pixel color sensitivity in [0,1]. It is
	// unrelated to the aggregate ratio a caller uses to decide pass/fail.
	PixelThreshold float64
}

// New returns a Comparator using the supplied per-pixel threshold.
func New(pixelThreshold float64) *Comparator {
	return &Comparator{PixelThreshold: pixelThreshold}
}

// Compare counts the pixels that differ between baseline and captured.
func (c *Comparator) Compare(baseline, captured image.Image) (Result, error) {
	bs, cs := baseline.Bounds().Size(), captured.Bounds().Size()
	if bs != cs {
		return Result{}, fmt.Errorf("%w: baseline %dx%d, captured %dx%d", ErrDimensionMismatch, bs.X, bs.Y, cs.X, cs.Y)
	}

	var diff image.Image
	mismatched, err := pixelmatch.MatchPixel(baseline, captured,
		pixelmatch.Threshold(c.PixelThreshold),
		pixelmatch.WriteTo(&diff),
	)
	if err != nil {
		return Result{}, fmt.Errorf("match pixels: %w", err)
	}
	if diff == nil {
		diff = image.NewRGBA(image.Rect(0, 0, bs.X, bs.Y))
	}

	return Result{
		Mismatched: mismatched,
		Total:      bs.X * bs.Y,
		Diff:       diff,
	}, nil
}

// Decode parses PNG bytes.
func Decode(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return img, nil
}

// Encode renders img as PNG bytes.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
