package raster

import (
	"fmt"
	"image"

	lru "github.com/hashicorp/golang-lru"

	"github.com/echoflaresat/polewarp/colors"
)

var opaqueBlack = colors.New(0, 0, 0, 1)

func pixelAt(img image.Image, x, y int) Pixel {
	return PixelOf(colors.FromStandardColor(img.At(x, y)))
}

// Tiled is a tile-based Source over an image.Image. Tiles are converted to
// float planes on first use and kept in an LRU cache, so large (for example
// memory-mapped) images are never converted as a whole.
type Tiled struct {
	img         image.Image
	origin      image.Point
	width       int
	height      int
	tileSize    int
	tilesAcross int
	channels    ChannelSet
	cache       *lru.Cache // tileIndex -> *Planar
}

// NewTiled wraps img. cacheTiles bounds the number of converted tiles held
// at once.
func NewTiled(img image.Image, channels ChannelSet, tileSize, cacheTiles int) (*Tiled, error) {
	if tileSize <= 0 {
		return nil, fmt.Errorf("tile size must be positive, got %d", tileSize)
	}
	cache, err := lru.New(cacheTiles)
	if err != nil {
		return nil, fmt.Errorf("tile cache: %w", err)
	}

	b := img.Bounds()
	return &Tiled{
		img:         img,
		origin:      b.Min,
		width:       b.Dx(),
		height:      b.Dy(),
		tileSize:    tileSize,
		tilesAcross: (b.Dx() + tileSize - 1) / tileSize,
		channels:    channels,
		cache:       cache,
	}, nil
}

func (t *Tiled) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.width, t.height)
}

func (t *Tiled) Channels() ChannelSet {
	return t.channels
}

func (t *Tiled) At(c Channel, x, y int) float32 {
	tileX := x / t.tileSize
	tileY := y / t.tileSize
	tile := t.tile(tileY*t.tilesAcross+tileX, tileX, tileY)
	return tile.At(c, x%t.tileSize, y%t.tileSize)
}

// Cached reports how many tiles are currently converted.
func (t *Tiled) Cached() int {
	return t.cache.Len()
}

func (t *Tiled) tile(index, tileX, tileY int) *Planar {
	if val, ok := t.cache.Get(index); ok {
		return val.(*Planar)
	}

	// Two readers may convert the same tile concurrently; both results are
	// identical and the cache keeps one of them.
	r := image.Rect(tileX*t.tileSize, tileY*t.tileSize, (tileX+1)*t.tileSize, (tileY+1)*t.tileSize).
		Intersect(t.Bounds())
	tile := NewPlanar(r.Dx(), r.Dy(), t.channels)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			tile.SetPixel(x-r.Min.X, y-r.Min.Y, pixelAt(t.img, t.origin.X+x, t.origin.Y+y))
		}
	}
	t.cache.Add(index, tile)
	return tile
}
