package colors

import (
	"image/color"
)

// Color4 is a linear RGBA color with float64 components in [0,1].
// Values outside [0,1] are allowed while filtering; they are clamped when the
// color leaves the float domain.
type Color4 struct {
	R, G, B, A float64
}

func New(r, g, b, a float64) Color4 {
	return Color4{R: r, G: g, B: b, A: a}
}

// RGBA implements color.Color with pre-multiplied 16-bit values.
func (c Color4) RGBA() (r, g, b, a uint32) {
	cc := c.Clamp01()
	return uint32(cc.R * cc.A * 65535),
		uint32(cc.G * cc.A * 65535),
		uint32(cc.B * cc.A * 65535),
		uint32(cc.A * 65535)
}

func FromStandardColor(c color.Color) Color4 {
	// Fast path: already a Color4
	if c4, ok := c.(Color4); ok {
		return c4
	}

	r16, g16, b16, a16 := c.RGBA()
	if a16 == 0 {
		return Color4{}
	}

	// De-premultiply and normalize to [0,1]
	invA := float64(0xFFFF) / float64(a16)
	return Color4{
		R: float64(r16) * invA / 65535.0,
		G: float64(g16) * invA / 65535.0,
		B: float64(b16) * invA / 65535.0,
		A: float64(a16) / 65535.0,
	}
}

// Clamp01 clamps each component into [0,1].
func (c Color4) Clamp01() Color4 {
	return Color4{
		R: clamp01(c.R),
		G: clamp01(c.G),
		B: clamp01(c.B),
		A: clamp01(c.A),
	}
}

// ToNRGBA rounds the clamped components to 8 bits.
func (c Color4) ToNRGBA() color.NRGBA {
	return color.NRGBA{
		to8bit(c.R),
		to8bit(c.G),
		to8bit(c.B),
		to8bit(c.A),
	}
}

// ToNRGBA64 rounds the clamped components to 16 bits.
func (c Color4) ToNRGBA64() color.NRGBA64 {
	return color.NRGBA64{
		to16bit(c.R),
		to16bit(c.G),
		to16bit(c.B),
		to16bit(c.A),
	}
}

// --- helpers ---

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func to8bit(x float64) uint8 {
	return uint8(255.0*clamp01(x) + 0.5)
}

func to16bit(x float64) uint16 {
	return uint16(65535.0*clamp01(x) + 0.5)
}
