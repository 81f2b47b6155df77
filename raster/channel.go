// Package raster holds the channel buffers the warp reads from and writes to.
package raster

import (
	"strings"

	"github.com/echoflaresat/polewarp/colors"
)

// Channel identifies one plane of an image.
type Channel uint8

const (
	Red Channel = iota
	Green
	Blue
	Alpha

	NumChannels = 4
)

var channelNames = [NumChannels]string{"red", "green", "blue", "alpha"}

func (c Channel) String() string {
	if int(c) < NumChannels {
		return channelNames[c]
	}
	return "unknown"
}

// ChannelSet is a bit set of channels.
type ChannelSet uint8

const (
	RGB  = ChannelSet(1<<Red | 1<<Green | 1<<Blue)
	RGBA = RGB | ChannelSet(1<<Alpha)
)

// Of builds a set from the given channels.
func Of(cs ...Channel) ChannelSet {
	var s ChannelSet
	for _, c := range cs {
		s |= 1 << c
	}
	return s
}

func (s ChannelSet) Has(c Channel) bool {
	return s&(1<<c) != 0
}

// Contains reports whether every channel of o is in s.
func (s ChannelSet) Contains(o ChannelSet) bool {
	return s&o == o
}

// Missing returns the channels of o that are not in s.
func (s ChannelSet) Missing(o ChannelSet) ChannelSet {
	return o &^ s
}

func (s ChannelSet) Len() int {
	n := 0
	for c := Channel(0); c < NumChannels; c++ {
		if s.Has(c) {
			n++
		}
	}
	return n
}

// Channels lists the members of s in ascending order.
func (s ChannelSet) Channels() []Channel {
	out := make([]Channel, 0, NumChannels)
	for c := Channel(0); c < NumChannels; c++ {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s ChannelSet) String() string {
	names := make([]string, 0, NumChannels)
	for _, c := range s.Channels() {
		names = append(names, c.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Pixel holds one value per channel.
type Pixel [NumChannels]float32

// PixelOf spreads a color over the four channels.
func PixelOf(c colors.Color4) Pixel {
	return Pixel{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
}

// Color reads the pixel back as a color. Channels outside s are taken from
// fallback.
func (p Pixel) Color(s ChannelSet, fallback colors.Color4) colors.Color4 {
	c := fallback
	if s.Has(Red) {
		c.R = float64(p[Red])
	}
	if s.Has(Green) {
		c.G = float64(p[Green])
	}
	if s.Has(Blue) {
		c.B = float64(p[Blue])
	}
	if s.Has(Alpha) {
		c.A = float64(p[Alpha])
	}
	return c
}
