package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoflaresat/polewarp/raster"
	"github.com/echoflaresat/polewarp/sampler"
	"github.com/echoflaresat/polewarp/warp"
)

func gradient(w, h int) *raster.Planar {
	p := raster.NewPlanar(w, h, raster.RGBA)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p.SetPixel(x, y, raster.Pixel{float32(x) / float32(w), float32(y) / float32(h), float32((x*y)%5) / 4, 1})
		}
	}
	return p
}

func transform(t *testing.T, src raster.Source, dx, dy float64, filter string) *warp.Transform {
	t.Helper()
	f, err := sampler.ParseFilter(filter)
	require.NoError(t, err)
	tr, err := warp.New(src, warp.Config{PoleOffsetX: dx, PoleOffsetY: dy, Filter: f})
	require.NoError(t, err)
	return tr
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestRenderParallelMatchesSequential(t *testing.T) {
	tr := transform(t, gradient(64, 32), 11, 7.5, "cubic")

	seq, err := Render(context.Background(), tr, Options{Workers: 1, Logger: quiet()})
	require.NoError(t, err)
	par, err := Render(context.Background(), tr, Options{Workers: 8, Logger: quiet()})
	require.NoError(t, err)

	assert.Equal(t, seq, par)
	assert.Equal(t, image.Rect(0, 0, 64, 32), par.Bounds())
	assert.Equal(t, raster.RGBA, par.Channels())
}

func TestRenderSpansMatchWholeRows(t *testing.T) {
	tr := transform(t, gradient(50, 20), -4, 3, "lanczos")

	whole, err := Render(context.Background(), tr, Options{Logger: quiet()})
	require.NoError(t, err)
	for _, span := range []int{1, 7, 16, 49, 50, 500} {
		got, err := Render(context.Background(), tr, Options{SpanWidth: span, Logger: quiet()})
		require.NoError(t, err)
		assert.Equal(t, whole, got, "span %d", span)
	}
}

func TestRenderNullRotationCopiesSource(t *testing.T) {
	src := gradient(20, 10)
	tr := transform(t, src, 0, 0, "impulse")

	out, err := Render(context.Background(), tr, Options{Logger: quiet()})
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestRenderChannelSubset(t *testing.T) {
	tr := transform(t, gradient(16, 8), 2, 0, "linear")
	out, err := Render(context.Background(), tr, Options{Channels: raster.Of(raster.Green), Logger: quiet()})
	require.NoError(t, err)
	assert.Equal(t, raster.Of(raster.Green), out.Channels())
	assert.Nil(t, out.Row(raster.Red, 0))
}

func TestRenderMissingChannels(t *testing.T) {
	src := raster.NewPlanar(8, 4, raster.RGB)
	tr := transform(t, src, 0, 0, "box")
	_, err := Render(context.Background(), tr, Options{Channels: raster.RGBA, Logger: quiet()})
	assert.ErrorIs(t, err, warp.ErrMissingChannels)
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := transform(t, gradient(32, 16), 1, 1, "cubic")
	out, err := Render(ctx, tr, Options{Logger: quiet()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
}

// failing wraps a Transform and fails one row.
type failing struct {
	*warp.Transform
	row int
}

var errBoom = errors.New("boom")

func (f failing) ProcessSpan(ctx context.Context, y, x, r int, channels raster.ChannelSet, out *raster.Row) error {
	if y == f.row {
		return errBoom
	}
	return f.Transform.ProcessSpan(ctx, y, x, r, channels, out)
}

func TestRenderStopsOnSpanError(t *testing.T) {
	tr := transform(t, gradient(16, 16), 0, 0, "box")
	out, err := Render(context.Background(), failing{tr, 5}, Options{Workers: 2, Logger: quiet()})
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "row 5")
	assert.Nil(t, out)
}

func TestRenderLogsProgress(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tr := transform(t, gradient(10, 20), 0, 0, "impulse")
	_, err := Render(context.Background(), tr, Options{Workers: 1, Logger: log})
	require.NoError(t, err)

	text := buf.String()
	assert.Contains(t, text, "input requested")
	assert.Equal(t, 9, strings.Count(text, "msg=warping"))
	assert.Contains(t, text, "percent=50")
	assert.Contains(t, text, "warp complete")
}
