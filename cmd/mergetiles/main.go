// Command mergetiles stitches a grid of equal-sized tiles, given row by row,
// into one image.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/echoflaresat/polewarp/texture"
)

var errUsage = errors.New("usage: mergetiles <cols>x<rows> <output> <tile1> <tile2> ...")

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		slog.Error("mergetiles failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errUsage
	}
	cols, rows, err := parseLayout(args[0])
	if err != nil {
		return err
	}
	output, inputs := args[1], args[2:]
	if len(inputs) != cols*rows {
		return fmt.Errorf("expected %d input files, got %d", cols*rows, len(inputs))
	}

	canvas, err := merge(ctx, cols, inputs)
	if err != nil {
		return err
	}

	slog.Info("creating", "path", output, "size", canvas.Bounds().Size())
	return texture.Save(output, canvas)
}

func parseLayout(s string) (cols, rows int, err error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid tile layout %q (expected NxM)", s)
	}
	if cols, err = strconv.Atoi(parts[0]); err != nil || cols <= 0 {
		return 0, 0, fmt.Errorf("invalid cols in %q", s)
	}
	if rows, err = strconv.Atoi(parts[1]); err != nil || rows <= 0 {
		return 0, 0, fmt.Errorf("invalid rows in %q", s)
	}
	return cols, rows, nil
}

// merge loads every tile concurrently and draws tile i at column i%cols,
// row i/cols. All tiles must share the first tile's size.
func merge(ctx context.Context, cols int, paths []string) (*image.NRGBA, error) {
	tiles := make([]image.Image, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slog.Info("processing", "path", path)
			img, closer, err := texture.Load(path)
			if err != nil {
				return fmt.Errorf("could not load %q: %w", path, err)
			}
			defer closer.Close()

			// Copy out so the file or mapping can be released.
			b := img.Bounds()
			tile := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
			draw.Draw(tile, tile.Bounds(), img, b.Min, draw.Src)
			tiles[i] = tile
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tileW, tileH := tiles[0].Bounds().Dx(), tiles[0].Bounds().Dy()
	rows := len(tiles) / cols
	canvas := image.NewNRGBA(image.Rect(0, 0, cols*tileW, rows*tileH))
	for i, tile := range tiles {
		if tile.Bounds().Dx() != tileW || tile.Bounds().Dy() != tileH {
			return nil, fmt.Errorf("tile size mismatch for %q: expected %dx%d, got %dx%d",
				paths[i], tileW, tileH, tile.Bounds().Dx(), tile.Bounds().Dy())
		}
		x := (i % cols) * tileW
		y := (i / cols) * tileH
		draw.Draw(canvas, image.Rect(x, y, x+tileW, y+tileH), tile, image.Point{}, draw.Src)
	}
	return canvas, nil
}
