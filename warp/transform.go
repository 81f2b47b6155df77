package warp

import (
	"context"
	"fmt"
	"image"
	"reflect"

	"github.com/echoflaresat/polewarp/raster"
	"github.com/echoflaresat/polewarp/sampler"
)

// Engine is what a host driver needs from a warp: a one-time validation,
// the input it must make available, and the per-span entry point.
type Engine interface {
	Validate() (Config, error)
	RequestInput(out image.Rectangle, channels raster.ChannelSet, count int) Request
	ProcessSpan(ctx context.Context, y, x, r int, channels raster.ChannelSet, out *raster.Row) error
}

// Request is the source region, channels and sample density a span needs.
type Request struct {
	Box      image.Rectangle
	Channels raster.ChannelSet
	Count    int
}

// Check reports whether src can serve the request.
func (r Request) Check(src raster.Source) error {
	if missing := src.Channels().Missing(r.Channels); missing != 0 {
		return fmt.Errorf("%w: %s", ErrMissingChannels, missing)
	}
	if !r.Box.In(src.Bounds()) {
		return fmt.Errorf("warp: request box %v exceeds source %v", r.Box, src.Bounds())
	}
	return nil
}

// Transform binds a Config to a source image. After Validate it is
// read-only, so spans may be processed from any number of goroutines.
type Transform struct {
	src       raster.Source
	cfg       Config
	valid     Config
	validated bool
}

var _ Engine = (*Transform)(nil)

// New builds and validates a Transform. The output has the source's size;
// cfg.Width and cfg.Height are overwritten from the source bounds.
func New(src raster.Source, cfg Config) (*Transform, error) {
	t := &Transform{src: src, cfg: cfg}
	if _, err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate initialises the filter and fixes the size from the source. It
// may be called again and yields the same result.
func (t *Transform) Validate() (Config, error) {
	if isNil(t.src) {
		return Config{}, ErrNoSource
	}
	b := t.src.Bounds()
	cfg := t.cfg
	cfg.Width, cfg.Height = b.Dx(), b.Dy()

	cfg, err := cfg.Validate()
	if err != nil {
		return Config{}, err
	}
	t.valid = cfg
	t.validated = true
	return cfg, nil
}

// Config returns the validated configuration.
func (t *Transform) Config() Config {
	return t.valid
}

// Source returns the image the transform reads from.
func (t *Transform) Source() raster.Source {
	return t.src
}

// RequestInput asks for the whole source whatever the output region:
// remapped longitude can reach any column and latitude any row. The
// sample count is doubled to leave room for the filter support.
func (t *Transform) RequestInput(out image.Rectangle, channels raster.ChannelSet, count int) Request {
	box := image.Rectangle{}
	if !isNil(t.src) {
		box = t.src.Bounds()
	}
	return Request{Box: box, Channels: channels, Count: count * 2}
}

// ProcessSpan fills columns [x, r) of output row y using a fresh Sampler.
func (t *Transform) ProcessSpan(ctx context.Context, y, x, r int, channels raster.ChannelSet, out *raster.Row) error {
	if !t.validated {
		return ErrNotValidated
	}
	s := sampler.New(t.src, channels, t.valid.Filter, t.valid.Edge)
	return ProcessSpan(ctx, y, x, r, channels, t.valid, s, out)
}

// isNil also catches a typed nil pointer stored in the interface.
func isNil(src raster.Source) bool {
	if src == nil {
		return true
	}
	v := reflect.ValueOf(src)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
