package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/echoflaresat/polewarp/raster"
	"github.com/echoflaresat/polewarp/render"
	"github.com/echoflaresat/polewarp/sampler"
	"github.com/echoflaresat/polewarp/texture"
	"github.com/echoflaresat/polewarp/warp"
)

type config struct {
	in, out      *string
	cx, cy       *float64
	filter, edge *string
	workers      *int
	span         *int
	tiled        *bool
	tileSize     *int
	tileCache    *int
	verbose      *bool
	showHelp     *bool
}

func defineFlags(fs *flag.FlagSet) config {
	tex := texture.DefaultOptions()
	return config{
		in:  fs.String("in", "", "Input equirectangular image (tif, png, jpg, bmp, webp)"),
		out: fs.String("out", "warped.png", "Output image path (png, jpg, tif, bmp)"),

		cx: fs.Float64("cx", 0, "Pole offset along the width, in pixels (yaw)"),
		cy: fs.Float64("cy", 0, "Pole offset along the height, in pixels (pitch)"),

		filter: fs.String("filter", sampler.DefaultFilterName, "Resampling filter: "+strings.Join(sampler.FilterNames(), ", ")),
		edge:   fs.String("edge", sampler.Clamp.String(), "Edge policy: clamp, wrap or black"),

		workers: fs.Int("workers", runtime.GOMAXPROCS(0), "Rows warped concurrently"),
		span:    fs.Int("span", 0, "Split rows into spans of this many columns (0 = whole rows)"),

		tiled:     fs.Bool("tiled", false, "Convert the input tile by tile instead of up front"),
		tileSize:  fs.Int("tile-size", tex.TileSize, "Tile edge in pixels when -tiled"),
		tileCache: fs.Int("tile-cache", tex.CacheTiles, "Converted tiles kept in memory when -tiled"),

		verbose:  fs.Bool("v", false, "Verbose logging"),
		showHelp: fs.Bool("h", false, "Show this help message"),
	}
}

func printHelp(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, `Pole Warp - move the poles of an equirectangular image

Usage:
  %[1]s -in <image> [options]

`, fs.Name())

	printGroup(fs, "Input/Output", []string{"in", "out"})
	printGroup(fs, "Warp Options", []string{"cx", "cy", "filter", "edge"})
	printGroup(fs, "Performance", []string{"workers", "span", "tiled", "tile-size", "tile-cache"})
	printGroup(fs, "Misc", []string{"v", "h"})
}

func printGroup(fs *flag.FlagSet, title string, keys []string) {
	w := fs.Output()
	fmt.Fprintf(w, "%s:\n", title)
	for _, name := range keys {
		if f := fs.Lookup(name); f != nil {
			fmt.Fprintf(w, "  -%-10s %s (default %q)\n", f.Name, f.Usage, f.DefValue)
		}
	}
	fmt.Fprintln(w)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		slog.Error("polewarp failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("polewarp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg := defineFlags(fs)
	fs.Usage = func() { printHelp(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if *cfg.showHelp {
		printHelp(fs)
		return nil
	}
	if *cfg.in == "" {
		printHelp(fs)
		return errors.New("missing -in")
	}

	level := slog.LevelInfo
	if *cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	filter, err := sampler.ParseFilter(*cfg.filter)
	if err != nil {
		return err
	}
	edge, err := sampler.ParseEdge(*cfg.edge)
	if err != nil {
		return err
	}

	tex, err := texture.Open(*cfg.in, texture.Options{
		Tiled:      *cfg.tiled,
		TileSize:   *cfg.tileSize,
		CacheTiles: *cfg.tileCache,
	})
	if err != nil {
		return err
	}
	defer tex.Close()

	tr, err := warp.New(tex, warp.Config{
		PoleOffsetX: *cfg.cx,
		PoleOffsetY: *cfg.cy,
		Filter:      filter,
		Edge:        edge,
	})
	if err != nil {
		return err
	}

	logger.Info("starting warp", "in", *cfg.in, "size", tex.Bounds().Size(),
		"cx", *cfg.cx, "cy", *cfg.cy, "filter", filter, "edge", edge)
	out, err := render.Render(ctx, tr, render.Options{
		Workers:   *cfg.workers,
		SpanWidth: *cfg.span,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	if err := texture.Save(*cfg.out, outputImage(out, *cfg.out)); err != nil {
		return err
	}
	logger.Info("wrote", "out", *cfg.out)
	return nil
}

// outputImage keeps 16 bits per channel for TIFF, the only output format
// that can hold them.
func outputImage(out *raster.Planar, path string) image.Image {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		return out.Image16()
	}
	return out.Image()
}
