package vectors

// Vec3 is a simple 3D vector with float64 components.
type Vec3 struct {
	X, Y, Z float64
}

// RotateX turns v about the X axis: the Y/Z plane is rotated by the angle
// whose cosine and sine are c and s.
func (v Vec3) RotateX(c, s float64) Vec3 {
	return Vec3{
		X: v.X,
		Y: v.Y*c - v.Z*s,
		Z: v.Y*s + v.Z*c,
	}
}

// QuarterTurn swaps the frame so that Z becomes X and -X becomes Z.
// It reconciles the rotation frame with the lat/long image convention.
func (v Vec3) QuarterTurn() Vec3 {
	return Vec3{X: v.Z, Y: v.Y, Z: -v.X}
}
