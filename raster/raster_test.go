package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 11), B: uint8(x + y), A: 255})
		}
	}
	return img
}

func TestChannelSet(t *testing.T) {
	s := Of(Red, Blue)
	assert.True(t, s.Has(Red))
	assert.False(t, s.Has(Green))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []Channel{Red, Blue}, s.Channels())
	assert.Equal(t, "{red,blue}", s.String())

	assert.True(t, RGBA.Contains(RGB))
	assert.False(t, RGB.Contains(RGBA))
	assert.Equal(t, Of(Alpha), RGB.Missing(RGBA))
	assert.Equal(t, 4, RGBA.Len())
}

func TestPlanarFromImage(t *testing.T) {
	img := gradient(9, 5)
	p := FromImage(img, RGBA)

	assert.Equal(t, image.Rect(0, 0, 9, 5), p.Bounds())
	assert.InDelta(t, float32(3*7)/255, p.At(Red, 3, 2), 1e-6)
	assert.InDelta(t, float32(2*11)/255, p.At(Green, 3, 2), 1e-6)
	assert.InDelta(t, float32(1), p.At(Alpha, 3, 2), 1e-6)

	row := p.Row(Blue, 4)
	require.Len(t, row, 9)
	assert.InDelta(t, float32(8+4)/255, row[8], 1e-6)

	assert.Equal(t, img, p.Image())
}

func TestPlanarOffsetOrigin(t *testing.T) {
	img := gradient(12, 8).SubImage(image.Rect(4, 2, 10, 8))
	p := FromImage(img, RGB)

	assert.Equal(t, image.Rect(0, 0, 6, 6), p.Bounds())
	assert.InDelta(t, float32(4*7)/255, p.At(Red, 0, 0), 1e-6)
	assert.Nil(t, p.Row(Alpha, 0))

	// missing alpha exports as opaque
	assert.Equal(t, uint8(255), p.Image().NRGBAAt(0, 0).A)
}

func TestTiledMatchesPlanar(t *testing.T) {
	img := gradient(37, 23)
	planar := FromImage(img, RGBA)

	tiled, err := NewTiled(img, RGBA, 8, 4)
	require.NoError(t, err)
	assert.Equal(t, planar.Bounds(), tiled.Bounds())

	for y := 0; y < 23; y++ {
		for x := 0; x < 37; x++ {
			for _, c := range RGBA.Channels() {
				require.Equal(t, planar.At(c, x, y), tiled.At(c, x, y), "(%d,%d) %s", x, y, c)
			}
		}
	}
	assert.LessOrEqual(t, tiled.Cached(), 4)
}

func TestTiledRejectsBadSizes(t *testing.T) {
	_, err := NewTiled(gradient(4, 4), RGB, 0, 4)
	assert.Error(t, err)

	_, err = NewTiled(gradient(4, 4), RGB, 2, 0)
	assert.Error(t, err)
}

func TestRow(t *testing.T) {
	r := NewRow(10, 15)
	assert.False(t, r.Has(Red))

	r.WritableAll(Of(Red, Alpha))
	assert.True(t, r.Has(Red))
	assert.True(t, r.Has(Alpha))
	assert.False(t, r.Has(Green))

	r.Set(Red, 12, 0.5)
	assert.Equal(t, float32(0.5), r.Get(Red, 12))
	assert.Equal(t, float32(0.5), r.Writable(Red)[2])

	assert.True(t, r.Covers(10, 15))
	assert.True(t, r.Covers(11, 13))
	assert.False(t, r.Covers(9, 12))
	assert.False(t, r.Covers(12, 16))

	dst := NewPlanar(20, 2, Of(Red, Green))
	r.CopyTo(dst, 1)
	assert.Equal(t, float32(0.5), dst.At(Red, 12, 1))
	assert.Equal(t, float32(0), dst.At(Red, 12, 0))
}
