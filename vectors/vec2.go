package vectors

import "math"

// Vec2 is a 2D vector, used for image-space positions and footprints.
type Vec2 struct {
	X, Y float64
}

// Abs returns v with both components made non-negative.
func (v Vec2) Abs() Vec2 {
	return Vec2{math.Abs(v.X), math.Abs(v.Y)}
}
