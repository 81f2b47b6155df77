package warp

import (
	"math"

	"github.com/echoflaresat/polewarp/sampler"
	"github.com/echoflaresat/polewarp/vectors"
)

// SamplePosition is the mapper's per-pixel output.
type SamplePosition = sampler.SamplePosition

var (
	footprintDu = vectors.Vec2{X: 1, Y: -1}
	footprintDv = vectors.Vec2{X: -1, Y: 1}
)

// rotation holds the per-warp constants, derived from a Config on entry and
// never stored between calls.
type rotation struct {
	width, height int
	yaw           float64
	cosPitch      float64
	sinPitch      float64
}

func newRotation(cfg Config) rotation {
	// The quarter-turn bias lines the unrotated frame up with the image
	// seam, so zero offsets leave every pixel in place.
	yaw := vectors.Radians(-(cfg.PoleOffsetX / float64(cfg.Width) * 360) + 90)
	pitch := vectors.Radians(cfg.PoleOffsetY / float64(cfg.Height) * 180)
	return rotation{
		width:    cfg.Width,
		height:   cfg.Height,
		yaw:      yaw,
		cosPitch: math.Cos(pitch),
		sinPitch: math.Sin(pitch),
	}
}

// angles returns the source longitude and latitude seen by output pixel
// (x, y).
func (r rotation) angles(x, y int) vectors.Angles {
	x %= r.width
	if x < 0 {
		x += r.width
	}
	uv := vectors.Vec2{
		X: (float64(x) + 0.5) / float64(r.width),
		Y: (float64(y) + 0.5) / float64(r.height),
	}

	a := vectors.AnglesFromUV(uv)
	a.Theta += r.yaw

	d := a.Direction().
		RotateX(r.cosPitch, r.sinPitch).
		QuarterTurn()
	return vectors.AnglesOf(d)
}

func (r rotation) position(x, y int) SamplePosition {
	uv := r.angles(x, y).UV()
	return SamplePosition{
		Target: vectors.Vec2{
			X: math.Floor(uv.X*float64(r.width)) + 0.5,
			Y: math.Floor(uv.Y*float64(r.height)) + 0.5,
		},
		Du: footprintDu,
		Dv: footprintDv,
		X:  x,
	}
}

// Map returns the source sample position for output pixel (x, y). The
// target is snapped to a source pixel centre; it is not clamped, so rows
// near the poles may land one pixel outside and rely on the edge policy.
// cfg must have a positive size.
func Map(x, y int, cfg Config) SamplePosition {
	return newRotation(cfg).position(x, y)
}

// MapAngles returns the rotated longitude in [0, 2π) and latitude in
// [-π/2, π/2] that Map converts to image space.
func MapAngles(x, y int, cfg Config) vectors.Angles {
	return newRotation(cfg).angles(x, y)
}
