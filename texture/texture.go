// Package texture loads equirectangular images into raster sources and
// writes warped results back to disk.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ectiff "github.com/echoflaresat/tiff"
	"golang.org/x/image/bmp"
	xtiff "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register WebP format with image.Decode

	"github.com/echoflaresat/polewarp/raster"
	"github.com/echoflaresat/polewarp/texture/tiff"
)

// ErrUnsupportedFormat is returned by Save for unknown extensions.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Options select how Open exposes the pixels.
type Options struct {
	// Tiled keeps the image as decoded (or memory-mapped) and converts
	// TileSize×TileSize tiles on demand, holding at most CacheTiles of them.
	// Otherwise the whole image is converted up front.
	Tiled      bool
	TileSize   int
	CacheTiles int
}

func DefaultOptions() Options {
	return Options{TileSize: 256, CacheTiles: 256}
}

// Texture is an opened image exposed as an RGBA raster.Source.
type Texture struct {
	raster.Source
	Path   string
	closer io.Closer
}

// Close releases the file or mapping behind a tiled texture.
func (t *Texture) Close() error {
	if t.closer == nil {
		return nil
	}
	err := t.closer.Close()
	t.closer = nil
	return err
}

// Open loads path and wraps it as a Planar or Tiled source.
func Open(path string, opts Options) (*Texture, error) {
	img, closer, err := Load(path)
	if err != nil {
		return nil, err
	}

	if !opts.Tiled {
		src := raster.FromImage(img, raster.RGBA)
		if err := closer.Close(); err != nil {
			return nil, err
		}
		slog.Debug("texture loaded", "path", path, "size", src.Bounds().Size(), "mode", "planar")
		return &Texture{Source: src, Path: path}, nil
	}

	src, err := raster.NewTiled(img, raster.RGBA, opts.TileSize, opts.CacheTiles)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("texture loaded", "path", path, "size", src.Bounds().Size(), "mode", "tiled",
		"tile", opts.TileSize, "cache", opts.CacheTiles)
	return &Texture{Source: src, Path: path, closer: closer}, nil
}

// Load decodes path, trying the memory-mapped TIFF reader, then the
// streaming TIFF decoder, then every registered image codec. The closer
// must be called once the image is no longer read.
func Load(path string) (image.Image, io.Closer, error) {
	mapped, err := tiff.Open(path)
	if err == nil {
		return mapped, mapped, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, err
	}
	if !errors.Is(err, tiff.ErrInvalidHeader) {
		slog.Warn("failed to map TIFF", "path", path, "error", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	// The streaming decoder may read lazily, so f stays open on success.
	img, err := ectiff.Decode(f)
	if err == nil {
		return img, f, nil
	}
	slog.Debug("TIFF decoder declined", "path", path, "error", err)

	// fallback to image codecs
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, nil, err
	}
	img, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	slog.Debug("decoded with image codec", "path", path, "format", format)
	return img, nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Save encodes img by the extension of path: png, jpg/jpeg, tif/tiff or bmp.
func Save(path string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(path))
	var encode func(io.Writer, image.Image) error
	switch ext {
	case ".png":
		encode = (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode
	case ".jpg", ".jpeg":
		encode = func(w io.Writer, m image.Image) error {
			return jpeg.Encode(w, m, &jpeg.Options{Quality: 95})
		}
	case ".tif", ".tiff":
		encode = func(w io.Writer, m image.Image) error {
			return xtiff.Encode(w, m, &xtiff.Options{Compression: xtiff.Deflate})
		}
	case ".bmp":
		encode = bmp.Encode
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
