// Package warp moves the pole of an equirectangular image. It maps every
// output pixel to a source position on the rotated sphere and fills output
// scanline segments by resampling the source there.
package warp

import (
	"errors"
	"fmt"

	"github.com/echoflaresat/polewarp/sampler"
)

var (
	// ErrInvalidSize is returned when width or height is not positive.
	ErrInvalidSize = errors.New("warp: image size must be positive")
	// ErrNoSource is returned when validation has no source image.
	ErrNoSource = errors.New("warp: no source image")
	// ErrNoStorage is returned when the output row cannot hold the span.
	ErrNoStorage = errors.New("warp: output row has no storage for span")
	// ErrMissingChannels is returned when the source lacks requested channels.
	ErrMissingChannels = errors.New("warp: source lacks requested channels")
	// ErrNotValidated is returned when a Transform is used before Validate.
	ErrNotValidated = errors.New("warp: transform not validated")
)

// Config describes one warp. PoleOffsetX and PoleOffsetY are in source
// pixels: a full image width of PoleOffsetX turns the sphere once around
// the vertical axis, a full height of PoleOffsetY tilts it by 180°.
type Config struct {
	Width, Height int

	PoleOffsetX float64
	PoleOffsetY float64

	Filter sampler.Filter
	Edge   sampler.EdgePolicy
}

// Validate checks the size and initialises the filter.
func (c Config) Validate() (Config, error) {
	if c.Width <= 0 || c.Height <= 0 {
		return Config{}, fmt.Errorf("%w: %dx%d", ErrInvalidSize, c.Width, c.Height)
	}
	f, err := c.Filter.Initialize()
	if err != nil {
		return Config{}, err
	}
	c.Filter = f
	return c, nil
}
