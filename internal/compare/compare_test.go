package compare

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareIdentical(t *testing.T) {
	img := solid(20, 10, color.White)

	res, err := New(DefaultPixelThreshold).Compare(img, img)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Mismatched)
	assert.Equal(t, 200, res.Total)
	assert.Zero(t, res.Ratio())
	require.NotNil(t, res.Diff)
	assert.Equal(t, img.Bounds().Size(), res.Diff.Bounds().Size())
}

func TestCompareCountsChangedPixels(t *testing.T) {
	base := solid(10, 10, color.White)
	changed := solid(10, 10, color.White)
	changed.Set(1, 1, color.Black)
	changed.Set(7, 7, color.Black)

	res, err := New(DefaultPixelThreshold).Compare(base, changed)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Mismatched)
	assert.Equal(t, 100, res.Total)
	assert.InDelta(t, 0.02, res.Ratio(), 1e-9)
}

func TestCompareDimensionMismatch(t *testing.T) {
	_, err := New(DefaultPixelThreshold).Compare(solid(10, 10, color.White), solid(10, 11, color.White))
	require.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Contains(t, err.Error(), "10x10")
	assert.Contains(t, err.Error(), "10x11")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	img := solid(3, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	data, err := Encode(img)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	_, err = Decode([]byte("not a png"))
	require.Error(t, err)
}

func TestRatioEmptyImage(t *testing.T) {
	assert.Zero(t, Result{}.Ratio())
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}
