// Package tiff maps 8-bit striped and tiled TIFF files into memory and serves
// them as image.Image without decoding the whole file. Blocks (strips or
// tiles) are decompressed on first access and kept in an LRU cache.
package tiff

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/color"
	"io"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/exp/mmap"
)

// DefaultCacheBlocks is the number of decompressed blocks Open keeps.
const DefaultCacheBlocks = 200

// Image is a memory-mapped TIFF. It is safe for concurrent readers and must
// be closed when no longer used.
type Image struct {
	header       Header
	reader       *mmap.ReaderAt
	cache        *lru.Cache // blockIndex -> []byte
	blockW       int
	blockH       int
	blocksAcross int
	premul       bool
}

var _ image.Image = (*Image)(nil)

// Open maps path with the default block cache.
func Open(path string) (*Image, error) {
	return OpenCached(path, DefaultCacheBlocks)
}

// OpenCached maps path keeping at most cacheBlocks decompressed blocks.
// It returns ErrInvalidHeader for non-TIFF input and wraps ErrUnsupported
// for TIFF layouts it cannot serve.
func OpenCached(path string, cacheBlocks int) (*Image, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	size := int64(reader.Len())
	header, err := parseHeader(reader, size)
	if err == nil {
		err = header.check(size)
	}
	if err != nil {
		reader.Close()
		return nil, err
	}

	cache, err := lru.New(cacheBlocks)
	if err != nil {
		reader.Close()
		return nil, fmt.Errorf("block cache: %w", err)
	}

	w, h, _, _ := header.block()
	return &Image{
		header:       header,
		reader:       reader,
		cache:        cache,
		blockW:       w,
		blockH:       h,
		blocksAcross: (header.Width + w - 1) / w,
		premul:       header.alphaPremultiplied(),
	}, nil
}

func (t *Image) Header() Header {
	return t.header
}

func (t *Image) Close() error {
	return t.reader.Close()
}

func (t *Image) ColorModel() color.Model {
	if t.header.SamplesPerPixel == 4 && t.premul {
		return color.RGBAModel
	}
	return color.NRGBAModel
}

func (t *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.header.Width, t.header.Height)
}

func (t *Image) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(t.Bounds())) {
		return color.NRGBA{}
	}
	h := t.header

	bx, by := x/t.blockW, y/t.blockH
	block := t.block(by*t.blocksAcross + bx)

	spp := h.SamplesPerPixel
	off := ((y%t.blockH)*t.blockW + x%t.blockW) * spp
	if off+spp > len(block) {
		panic(fmt.Sprintf("tiff: block %d too short for pixel (%d,%d)", by*t.blocksAcross+bx, x, y))
	}
	px := block[off : off+spp]

	switch spp {
	case 1:
		return color.NRGBA{R: px[0], G: px[0], B: px[0], A: 255}
	case 3:
		return color.NRGBA{R: px[0], G: px[1], B: px[2], A: 255}
	default:
		if t.premul {
			return color.RGBA{R: px[0], G: px[1], B: px[2], A: px[3]}
		}
		return color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]}
	}
}

// Cached reports how many decompressed blocks are held.
func (t *Image) Cached() int {
	return t.cache.Len()
}

func (t *Image) block(index int) []byte {
	if val, ok := t.cache.Get(index); ok {
		return val.([]byte)
	}
	b, err := t.loadBlock(index)
	if err != nil {
		panic(fmt.Sprintf("tiff: %v", err))
	}
	t.cache.Add(index, b)
	return b
}

func (t *Image) loadBlock(index int) ([]byte, error) {
	_, _, offsets, counts := t.header.block()
	buf := make([]byte, counts[index])
	if _, err := t.reader.ReadAt(buf, int64(offsets[index])); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read block %d: %w", index, err)
	}

	switch t.header.Compression {
	case CompressionDeflate, CompressionDeflateOld:
		r, err := zlib.NewReader(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("inflate block %d: %w", index, err)
		}
		defer r.Close()
		// A block never inflates past its pixel area.
		limit := int64(t.blockW) * int64(t.blockH) * int64(t.header.SamplesPerPixel)
		out, err := io.ReadAll(io.LimitReader(r, limit))
		if err != nil {
			return nil, fmt.Errorf("inflate block %d: %w", index, err)
		}
		return out, nil
	}
	return buf, nil
}
