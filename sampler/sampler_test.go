package sampler

import (
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoflaresat/polewarp/raster"
	"github.com/echoflaresat/polewarp/vectors"
)

// ramp holds red = x, green = y*10, blue = 1 so reads are easy to check.
func ramp(w, h int) *raster.Planar {
	p := raster.NewPlanar(w, h, raster.RGB)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p.SetPixel(x, y, raster.Pixel{float32(x), float32(y * 10), 1, 0})
		}
	}
	return p
}

func at(x, y float64) SamplePosition {
	return SamplePosition{
		Target: vectors.Vec2{X: x, Y: y},
		Du:     vectors.Vec2{X: 1, Y: -1},
		Dv:     vectors.Vec2{X: -1, Y: 1},
	}
}

func mustFilter(t *testing.T, name string) Filter {
	t.Helper()
	f, err := ParseFilter(name)
	require.NoError(t, err)
	return f
}

func TestInterpolatingFiltersAreExactAtPixelCentres(t *testing.T) {
	src := ramp(8, 6)
	for _, name := range []string{"impulse", "box", "linear", "cubic", "lanczos"} {
		t.Run(name, func(t *testing.T) {
			s := New(src, raster.RGB, mustFilter(t, name), Clamp)
			var px raster.Pixel
			for y := 0; y < 6; y++ {
				for x := 0; x < 8; x++ {
					s.Sample(at(float64(x)+0.5, float64(y)+0.5), &px)
					require.InDelta(t, float64(x), float64(px[raster.Red]), 1e-5, "(%d,%d)", x, y)
					require.InDelta(t, float64(y*10), float64(px[raster.Green]), 1e-4, "(%d,%d)", x, y)
				}
			}
		})
	}
}

func TestLinearInterpolatesBetweenCentres(t *testing.T) {
	s := New(ramp(8, 6), raster.RGB, mustFilter(t, "linear"), Clamp)
	var px raster.Pixel
	s.Sample(at(3.0, 2.5), &px)
	assert.InDelta(t, 2.5, float64(px[raster.Red]), 1e-6)
	assert.InDelta(t, 20.0, float64(px[raster.Green]), 1e-6)

	s.Sample(at(3.25, 3.0), &px)
	assert.InDelta(t, 2.75, float64(px[raster.Red]), 1e-6)
	assert.InDelta(t, 25.0, float64(px[raster.Green]), 1e-6)
}

func TestSmoothingFiltersPreserveConstant(t *testing.T) {
	src := ramp(8, 6)
	for _, name := range []string{"gaussian", "bspline", "mitchell", "hann"} {
		s := New(src, raster.RGB, mustFilter(t, name), Clamp)
		var px raster.Pixel
		s.Sample(at(4.3, 2.7), &px)
		assert.InDelta(t, 1.0, float64(px[raster.Blue]), 1e-6, name)
	}
}

func TestEdgePolicies(t *testing.T) {
	src := ramp(8, 6)
	cases := []struct {
		name      string
		edge      EdgePolicy
		pos       SamplePosition
		wantRed   float32
		wantGreen float32
	}{
		{"clamp left", Clamp, at(-2.5, 1.5), 0, 10},
		{"clamp right", Clamp, at(9.5, 1.5), 7, 10},
		{"clamp below", Clamp, at(3.5, 8.5), 3, 50},
		{"wrap left", Wrap, at(-2.5, 1.5), 5, 10},
		{"wrap right", Wrap, at(9.5, 1.5), 1, 10},
		{"wrap clamps rows", Wrap, at(3.5, -4.5), 3, 0},
		{"black outside", Black, at(-2.5, 1.5), 0, 0},
		{"black inside", Black, at(3.5, 1.5), 3, 10},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := New(src, raster.RGB, mustFilter(t, "impulse"), c.edge)
			var px raster.Pixel
			s.Sample(c.pos, &px)
			assert.Equal(t, c.wantRed, px[raster.Red])
			assert.Equal(t, c.wantGreen, px[raster.Green])
		})
	}
}

func TestMissingChannelsReadZero(t *testing.T) {
	s := New(ramp(4, 4), raster.RGBA, mustFilter(t, "linear"), Clamp)
	px := raster.Pixel{9, 9, 9, 9}
	s.Sample(at(1.5, 1.5), &px)
	assert.Equal(t, float32(0), px[raster.Alpha])
	assert.Equal(t, float32(1), px[raster.Blue])
}

func TestUnrequestedChannelsStayZero(t *testing.T) {
	s := New(ramp(4, 4), raster.Of(raster.Green), mustFilter(t, "linear"), Clamp)
	var px raster.Pixel
	s.Sample(at(1.5, 2.5), &px)
	assert.Equal(t, float32(0), px[raster.Red])
	assert.Equal(t, float32(20), px[raster.Green])
}

func TestExtent(t *testing.T) {
	assert.Equal(t, vectors.Vec2{X: 1, Y: 1}, at(0, 0).Extent())

	wide := SamplePosition{Du: vectors.Vec2{X: 3, Y: 0.2}, Dv: vectors.Vec2{X: -0.5, Y: 2}}
	assert.Equal(t, vectors.Vec2{X: 3, Y: 2}, wide.Extent())
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter(" Tent ")
	require.NoError(t, err)
	assert.Equal(t, "linear", f.Name)
	assert.Equal(t, imaging.Linear.Support, f.Support)

	f, err = ParseFilter("nearest")
	require.NoError(t, err)
	assert.True(t, f.Impulse())

	_, err = ParseFilter("sinc")
	assert.ErrorIs(t, err, ErrUnknownFilter)

	assert.Contains(t, FilterNames(), "cubic")
	assert.Len(t, FilterNames(), 15)
}

func TestInitialize(t *testing.T) {
	f, err := Filter{}.Initialize()
	require.NoError(t, err)
	assert.Equal(t, DefaultFilterName, f.Name)

	f, err = Filter{ResampleFilter: imaging.Box}.Initialize()
	require.NoError(t, err)
	assert.Equal(t, "custom", f.Name)

	_, err = Filter{Name: "broken", ResampleFilter: imaging.ResampleFilter{Support: 1}}.Initialize()
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = Filter{Name: "negative", ResampleFilter: imaging.ResampleFilter{Support: -1, Kernel: imaging.Box.Kernel}}.Initialize()
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestParseEdge(t *testing.T) {
	for _, e := range []EdgePolicy{Clamp, Wrap, Black} {
		got, err := ParseEdge(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}
	_, err := ParseEdge("mirror")
	assert.ErrorIs(t, err, ErrUnknownEdge)
}
