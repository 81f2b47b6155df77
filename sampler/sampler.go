// Package sampler draws filtered samples from a raster.Source at fractional
// positions.
package sampler

import (
	"math"

	"github.com/echoflaresat/polewarp/raster"
	"github.com/echoflaresat/polewarp/vectors"
)

// SamplePosition is one output pixel's request: where to read in the source
// (pixel-centre coordinates), the footprint of a unit output step, and the
// output column the result belongs to.
type SamplePosition struct {
	Target vectors.Vec2
	Du, Dv vectors.Vec2
	X      int
}

// Extent is the per-axis kernel scale implied by the footprint, never below
// one source pixel.
func (p SamplePosition) Extent() vectors.Vec2 {
	du, dv := p.Du.Abs(), p.Dv.Abs()
	return vectors.Vec2{
		X: math.Max(1, math.Max(du.X, dv.X)),
		Y: math.Max(1, math.Max(du.Y, dv.Y)),
	}
}

// Sampler reads filtered pixels from one source. It keeps scratch buffers
// between calls and must not be shared between goroutines.
type Sampler struct {
	src      raster.Source
	channels []raster.Channel
	filter   Filter
	edge     EdgePolicy
	width    int
	height   int

	ix, iy []int
	wx, wy []float64
}

// New builds a Sampler for the requested channels. Channels the source
// lacks are written as zero.
func New(src raster.Source, channels raster.ChannelSet, filter Filter, edge EdgePolicy) *Sampler {
	b := src.Bounds()
	return &Sampler{
		src:      src,
		channels: (channels & src.Channels()).Channels(),
		filter:   filter,
		edge:     edge,
		width:    b.Dx(),
		height:   b.Dy(),
	}
}

// Sample fills px with the filtered value of every requested channel at pos.
func (s *Sampler) Sample(pos SamplePosition, px *raster.Pixel) {
	*px = raster.Pixel{}
	if s.width == 0 || s.height == 0 {
		return
	}

	if s.filter.Impulse() {
		x, okX := s.edgeX(int(math.Floor(pos.Target.X)))
		y, okY := s.edgeY(int(math.Floor(pos.Target.Y)))
		if okX && okY {
			for _, c := range s.channels {
				px[c] = s.src.At(c, x, y)
			}
		}
		return
	}

	ext := pos.Extent()
	s.ix, s.wx = taps(s.filter, pos.Target.X, ext.X, s.ix[:0], s.wx[:0])
	s.iy, s.wy = taps(s.filter, pos.Target.Y, ext.Y, s.iy[:0], s.wy[:0])

	var acc [raster.NumChannels]float64
	for j, yy := range s.iy {
		y, ok := s.edgeY(yy)
		if !ok {
			continue
		}
		for i, xx := range s.ix {
			x, ok := s.edgeX(xx)
			if !ok {
				continue
			}
			w := s.wx[i] * s.wy[j]
			for _, c := range s.channels {
				acc[c] += float64(s.src.At(c, x, y)) * w
			}
		}
	}
	for _, c := range s.channels {
		px[c] = float32(acc[c])
	}
}

// taps lists the source pixels under the kernel centred at center along one
// axis, with weights normalised to sum to one.
func taps(f Filter, center, scale float64, idx []int, wts []float64) ([]int, []float64) {
	radius := f.Support * scale
	lo := int(math.Ceil(center - 0.5 - radius))
	hi := int(math.Floor(center - 0.5 + radius))

	sum := 0.0
	for i := lo; i <= hi; i++ {
		w := f.Kernel((float64(i) + 0.5 - center) / scale)
		if w == 0 {
			continue
		}
		idx = append(idx, i)
		wts = append(wts, w)
		sum += w
	}
	if sum == 0 {
		return append(idx[:0], int(math.Floor(center))), append(wts[:0], 1)
	}
	for i := range wts {
		wts[i] /= sum
	}
	return idx, wts
}

// edgeX resolves a column under the edge policy; ok is false when the read
// falls outside and contributes nothing.
func (s *Sampler) edgeX(x int) (int, bool) {
	if x >= 0 && x < s.width {
		return x, true
	}
	switch s.edge {
	case Wrap:
		x %= s.width
		if x < 0 {
			x += s.width
		}
		return x, true
	case Black:
		return 0, false
	default:
		return clampInt(x, s.width), true
	}
}

func (s *Sampler) edgeY(y int) (int, bool) {
	if y >= 0 && y < s.height {
		return y, true
	}
	if s.edge == Black {
		return 0, false
	}
	return clampInt(y, s.height), true
}

func clampInt(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
