package warp

import (
	"context"
	"fmt"

	"github.com/echoflaresat/polewarp/raster"
)

// Resampler draws one filtered pixel per position. *sampler.Sampler is the
// production implementation.
type Resampler interface {
	Sample(pos SamplePosition, px *raster.Pixel)
}

// ProcessSpan fills columns [x, r) of output row y. Every channel in
// channels must already have storage in out.
//
// ctx is polled before each column is mapped. On cancellation ProcessSpan
// returns ctx.Err() at once; since sampling only starts once every column is
// mapped, out is then left untouched.
func ProcessSpan(ctx context.Context, y, x, r int, channels raster.ChannelSet, cfg Config, rs Resampler, out *raster.Row) error {
	if !out.Covers(x, r) {
		return fmt.Errorf("%w: columns [%d,%d) outside row [%d,%d)", ErrNoStorage, x, r, out.X, out.R)
	}
	for _, c := range channels.Channels() {
		if !out.Has(c) {
			return fmt.Errorf("%w: channel %s not writable", ErrNoStorage, c)
		}
	}
	if x == r {
		return nil
	}

	rot := newRotation(cfg)
	positions := make([]SamplePosition, 0, r-x)
	for X := x; X < r; X++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		positions = append(positions, rot.position(X, y))
	}

	list := channels.Channels()
	var px raster.Pixel
	for _, pos := range positions {
		rs.Sample(pos, &px)
		for _, c := range list {
			out.Set(c, pos.X, px[c])
		}
	}
	return nil
}
