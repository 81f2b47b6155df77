package vectors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func length(v Vec3) float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func TestAnglesRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		a    Angles
	}{
		{"origin", Angles{Theta: 0.25, Phi: 0}},
		{"north", Angles{Theta: 1.0, Phi: -1.2}},
		{"south", Angles{Theta: 4.0, Phi: 1.2}},
		{"seam", Angles{Theta: 2*math.Pi - 1e-3, Phi: 0.3}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := c.a.Direction()
			assert.InDelta(t, 1.0, length(d), 1e-12)

			got := AnglesOf(d)
			assert.InDelta(t, c.a.Theta, got.Theta, 1e-9)
			assert.InDelta(t, c.a.Phi, got.Phi, 1e-9)
		})
	}
}

func TestAnglesOfBranchCut(t *testing.T) {
	// z=0, x>0 is the seam: atan2 gives 0, the shifted value 2π folds to 0.
	a := AnglesOf(Vec3{X: 1})
	assert.Equal(t, 0.0, a.Theta)

	a = AnglesOf(Vec3{X: -1})
	assert.InDelta(t, math.Pi, a.Theta, 1e-15)

	a = AnglesOf(Vec3{X: 0, Y: 0, Z: -1})
	assert.InDelta(t, 1.5*math.Pi, a.Theta, 1e-15)
}

func TestAnglesOfClampsLatitude(t *testing.T) {
	a := AnglesOf(Vec3{Y: 1 + 1e-15})
	require.False(t, math.IsNaN(a.Phi))
	assert.Equal(t, math.Pi/2, a.Phi)

	a = AnglesOf(Vec3{Y: -1 - 1e-15})
	assert.Equal(t, -math.Pi/2, a.Phi)
}

func TestUVConversion(t *testing.T) {
	a := AnglesFromUV(Vec2{X: 0.5, Y: 0.5})
	assert.InDelta(t, math.Pi, a.Theta, 1e-15)
	assert.InDelta(t, 0.0, a.Phi, 1e-15)

	uv := Angles{Theta: math.Pi / 2, Phi: -math.Pi / 2}.UV()
	assert.InDelta(t, 0.25, uv.X, 1e-15)
	assert.InDelta(t, 0.0, uv.Y, 1e-15)
}

func TestRotateXAndQuarterTurn(t *testing.T) {
	v := Vec3{X: 0.2, Y: 0.3, Z: 0.4}

	r := v.RotateX(math.Cos(math.Pi/2), math.Sin(math.Pi/2))
	assert.InDelta(t, 0.2, r.X, 1e-15)
	assert.InDelta(t, -0.4, r.Y, 1e-15)
	assert.InDelta(t, 0.3, r.Z, 1e-15)
	assert.InDelta(t, length(v), length(r), 1e-15)

	q := v.QuarterTurn()
	assert.Equal(t, Vec3{X: 0.4, Y: 0.3, Z: -0.2}, q)
}

func TestRadians(t *testing.T) {
	assert.InDelta(t, math.Pi, Radians(180), 1e-15)
	assert.InDelta(t, math.Pi/2, Radians(90), 1e-15)
}
