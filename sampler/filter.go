package sampler

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
)

var (
	ErrUnknownFilter = errors.New("unknown filter")
	ErrInvalidFilter = errors.New("invalid filter")
	ErrUnknownEdge   = errors.New("unknown edge policy")
)

// DefaultFilterName is used when a Filter is left zero.
const DefaultFilterName = "cubic"

// Filter is a named reconstruction kernel. Support is the kernel radius in
// source pixels at unit footprint; a zero support with no kernel samples the
// containing pixel.
type Filter struct {
	Name string
	imaging.ResampleFilter
}

var filters = map[string]imaging.ResampleFilter{
	"impulse":  imaging.NearestNeighbor,
	"box":      imaging.Box,
	"linear":   imaging.Linear,
	"hermite":  imaging.Hermite,
	"cubic":    imaging.CatmullRom,
	"mitchell": imaging.MitchellNetravali,
	"bspline":  imaging.BSpline,
	"gaussian": imaging.Gaussian,
	"lanczos":  imaging.Lanczos,
	"bartlett": imaging.Bartlett,
	"hann":     imaging.Hann,
	"hamming":  imaging.Hamming,
	"blackman": imaging.Blackman,
	"welch":    imaging.Welch,
	"cosine":   imaging.Cosine,
}

var aliases = map[string]string{
	"nearest":    "impulse",
	"tent":       "linear",
	"triangle":   "linear",
	"catmullrom": "cubic",
	"keys":       "cubic",
}

// FilterNames lists the accepted filter names.
func FilterNames() []string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseFilter looks a filter up by name, case-insensitively.
func ParseFilter(name string) (Filter, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	f, ok := filters[key]
	if !ok {
		return Filter{}, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFilter, name, strings.Join(FilterNames(), ", "))
	}
	return Filter{Name: key, ResampleFilter: f}, nil
}

// DefaultFilter returns the Catmull-Rom cubic.
func DefaultFilter() Filter {
	f, _ := ParseFilter(DefaultFilterName)
	return f
}

// Impulse reports whether f reads single pixels without weighting.
func (f Filter) Impulse() bool {
	return f.Support == 0 && f.Kernel == nil
}

// Initialize checks f and returns it ready for sampling. A zero Filter
// becomes DefaultFilter.
func (f Filter) Initialize() (Filter, error) {
	if f.Name == "" && f.Impulse() {
		return DefaultFilter(), nil
	}
	if f.Support < 0 {
		return Filter{}, fmt.Errorf("%w: %s has negative support %g", ErrInvalidFilter, f.Name, f.Support)
	}
	if f.Support > 0 && f.Kernel == nil {
		return Filter{}, fmt.Errorf("%w: %s has support %g but no kernel", ErrInvalidFilter, f.Name, f.Support)
	}
	if f.Support == 0 && f.Kernel != nil {
		return Filter{}, fmt.Errorf("%w: %s has a kernel but zero support", ErrInvalidFilter, f.Name)
	}
	if f.Name == "" {
		f.Name = "custom"
	}
	return f, nil
}

func (f Filter) String() string {
	return f.Name
}

// EdgePolicy decides what a read outside the source returns.
type EdgePolicy int

const (
	// Clamp extends the outermost source pixels.
	Clamp EdgePolicy = iota
	// Wrap repeats columns around the longitude seam and clamps rows.
	Wrap
	// Black reads zero outside the source.
	Black
)

var edgeNames = map[EdgePolicy]string{
	Clamp: "clamp",
	Wrap:  "wrap",
	Black: "black",
}

func (e EdgePolicy) String() string {
	if name, ok := edgeNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EdgePolicy(%d)", int(e))
}

func ParseEdge(name string) (EdgePolicy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for e, n := range edgeNames {
		if n == key {
			return e, nil
		}
	}
	return Clamp, fmt.Errorf("%w: %q (want clamp, wrap or black)", ErrUnknownEdge, name)
}
