package vectors

import "math"

const twoPi = 2 * math.Pi

// Angles is a point on the sphere: Theta is longitude in [0, 2π) and Phi is
// latitude in [-π/2, π/2], both in radians.
type Angles struct {
	Theta, Phi float64
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// AnglesFromUV maps normalized lat/long image coordinates to angles.
// u=0..1 spans a full turn of longitude, v=0..1 spans latitude from -π/2
// at the top row to +π/2 at the bottom row.
func AnglesFromUV(uv Vec2) Angles {
	return Angles{
		Theta: uv.X * twoPi,
		Phi:   uv.Y*math.Pi - math.Pi/2,
	}
}

// UV is the inverse of AnglesFromUV.
func (a Angles) UV() Vec2 {
	return Vec2{
		X: a.Theta / twoPi,
		Y: (a.Phi + math.Pi/2) / math.Pi,
	}
}

// Direction returns the unit vector for a, with longitude measured in the
// X/Z plane and latitude along Y.
func (a Angles) Direction() Vec3 {
	cp := math.Cos(a.Phi)
	return Vec3{
		X: cp * math.Cos(a.Theta),
		Y: math.Sin(a.Phi),
		Z: cp * math.Sin(a.Theta),
	}
}

// AnglesOf converts a unit vector back to angles. The longitude branch cut
// sits on the z=0, x<0 half-plane edge: atan2 is used as-is for z>0 and
// shifted by a full turn otherwise, then folded into [0, 2π).
func AnglesOf(v Vec3) Angles {
	lon := math.Atan2(v.Z, v.X)
	if !(v.Z > 0) {
		lon += twoPi
	}
	if lon >= twoPi {
		lon -= twoPi
	}

	y := v.Y
	if y > 1 {
		y = 1
	} else if y < -1 {
		y = -1
	}
	return Angles{Theta: lon, Phi: math.Asin(y)}
}
