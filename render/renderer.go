// Package render drives a warp over a whole image, one errgroup task per
// output row.
package render

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/echoflaresat/polewarp/raster"
	"github.com/echoflaresat/polewarp/warp"
)

// Warp is the engine plus access to the image it reads.
type Warp interface {
	warp.Engine
	Source() raster.Source
}

// Options tune the driver. The zero value renders all source channels with
// GOMAXPROCS workers, whole rows at a time.
type Options struct {
	// Channels to produce; zero means every channel of the source.
	Channels raster.ChannelSet
	// Workers bounds the rows processed at once; <= 0 uses GOMAXPROCS.
	Workers int
	// SpanWidth splits each row into spans of at most this many columns,
	// the way a tiled host would call the engine. <= 0 means whole rows.
	SpanWidth int
	// Logger receives progress; nil uses slog.Default().
	Logger *slog.Logger
}

// Render validates w and fills an output buffer the size of its source.
// The first failing span cancels the others; a cancelled ctx yields its
// error and no image.
func Render(ctx context.Context, w Warp, opts Options) (*raster.Planar, error) {
	cfg, err := w.Validate()
	if err != nil {
		return nil, err
	}
	src := w.Source()
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	channels := opts.Channels
	if channels == 0 {
		channels = src.Channels()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	span := opts.SpanWidth
	if span <= 0 || span > cfg.Width {
		span = cfg.Width
	}

	req := w.RequestInput(image.Rect(0, 0, cfg.Width, cfg.Height), channels, 1)
	if err := req.Check(src); err != nil {
		return nil, err
	}
	log.Debug("input requested",
		"box", req.Box, "channels", req.Channels, "count", req.Count,
		"filter", cfg.Filter, "edge", cfg.Edge)

	out := raster.NewPlanar(cfg.Width, cfg.Height, channels)
	progress := newProgress(log, cfg.Height)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := 0; y < cfg.Height; y++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			row := raster.NewRow(0, cfg.Width)
			row.WritableAll(channels)
			for x := 0; x < cfg.Width; x += span {
				r := min(x+span, cfg.Width)
				if err := w.ProcessSpan(gctx, y, x, r, channels, row); err != nil {
					return fmt.Errorf("row %d [%d,%d): %w", y, x, r, err)
				}
			}
			row.CopyTo(out, y)
			progress.rowDone()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	progress.finish()
	return out, nil
}

// progress logs every 10% of rows completed.
type progress struct {
	log   *slog.Logger
	total int64
	done  atomic.Int64
	start time.Time
}

func newProgress(log *slog.Logger, total int) *progress {
	return &progress{log: log, total: int64(total), start: time.Now()}
}

func (p *progress) rowDone() {
	n := p.done.Add(1)
	before := (n - 1) * 10 / p.total
	after := n * 10 / p.total
	if after > before && after < 10 {
		p.log.Info("warping", "percent", after*10, "rows", n, "of", p.total)
	}
}

func (p *progress) finish() {
	p.log.Info("warp complete", "rows", p.total, "elapsed", time.Since(p.start).Round(time.Millisecond))
}
