package raster

import "image"

// Source is a read-only, 2D addressable channel buffer. Bounds always start
// at the origin. At is only called with in-bounds coordinates and channels
// from Channels; implementations must be safe for concurrent readers.
type Source interface {
	Bounds() image.Rectangle
	Channels() ChannelSet
	At(c Channel, x, y int) float32
}

// Planar is a row-based Source: one contiguous float plane per channel.
type Planar struct {
	width, height int
	channels      ChannelSet
	planes        [NumChannels][]float32
}

// NewPlanar allocates a zeroed width×height buffer for the given channels.
func NewPlanar(width, height int, channels ChannelSet) *Planar {
	p := &Planar{width: width, height: height, channels: channels}
	for _, c := range channels.Channels() {
		p.planes[c] = make([]float32, width*height)
	}
	return p
}

// FromImage copies img into a Planar buffer holding all four channels.
// The image origin is moved to (0,0).
func FromImage(img image.Image, channels ChannelSet) *Planar {
	b := img.Bounds()
	p := NewPlanar(b.Dx(), b.Dy(), channels)
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			p.SetPixel(x, y, pixelAt(img, b.Min.X+x, b.Min.Y+y))
		}
	}
	return p
}

func (p *Planar) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

func (p *Planar) Channels() ChannelSet {
	return p.channels
}

func (p *Planar) At(c Channel, x, y int) float32 {
	return p.planes[c][y*p.width+x]
}

// Row returns the writable storage of row y for channel c, or nil when the
// channel is not held.
func (p *Planar) Row(c Channel, y int) []float32 {
	plane := p.planes[c]
	if plane == nil {
		return nil
	}
	return plane[y*p.width : (y+1)*p.width]
}

func (p *Planar) Set(c Channel, x, y int, v float32) {
	p.planes[c][y*p.width+x] = v
}

// SetPixel stores every held channel of px at (x, y).
func (p *Planar) SetPixel(x, y int, px Pixel) {
	i := y*p.width + x
	for c := Channel(0); c < NumChannels; c++ {
		if plane := p.planes[c]; plane != nil {
			plane[i] = px[c]
		}
	}
}

// Pixel gathers the held channels at (x, y).
func (p *Planar) Pixel(x, y int) Pixel {
	var px Pixel
	i := y*p.width + x
	for c := Channel(0); c < NumChannels; c++ {
		if plane := p.planes[c]; plane != nil {
			px[c] = plane[i]
		}
	}
	return px
}

// Image renders the buffer as 8-bit NRGBA. Missing color channels read as
// zero and a missing alpha as opaque.
func (p *Planar) Image() *image.NRGBA {
	img := image.NewNRGBA(p.Bounds())
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			img.SetNRGBA(x, y, p.Pixel(x, y).Color(p.channels, opaqueBlack).ToNRGBA())
		}
	}
	return img
}

// Image16 is Image with 16 bits per channel.
func (p *Planar) Image16() *image.NRGBA64 {
	img := image.NewNRGBA64(p.Bounds())
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			img.SetNRGBA64(x, y, p.Pixel(x, y).Color(p.channels, opaqueBlack).ToNRGBA64())
		}
	}
	return img
}
