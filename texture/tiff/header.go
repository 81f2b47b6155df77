package tiff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Header is the subset of the first IFD needed to address pixel blocks.
// Striped files are described as blocks Width wide and RowsPerStrip tall.
type Header struct {
	ByteOrder       binary.ByteOrder
	Width, Height   int
	SamplesPerPixel int
	BitsPerSample   []int
	Photometric     int
	Compression     int
	PlanarConfig    int
	ExtraSamples    []int

	// Strip layout
	RowsPerStrip    int
	StripOffsets    []int
	StripByteCounts []int

	// Tile layout
	TileWidth      int
	TileHeight     int
	TileOffsets    []int
	TileByteCounts []int
}

// https://www.loc.gov/preservation/digital/formats/content/tiff_tags.shtml
const (
	TagImageWidth                = 256
	TagImageLength               = 257
	TagBitsPerSample             = 258
	TagCompression               = 259
	TagPhotometricInterpretation = 262
	TagStripOffsets              = 273
	TagSamplesPerPixel           = 277
	TagRowsPerStrip              = 278
	TagStripByteCounts           = 279
	TagPlanarConfiguration       = 284
	TagTileWidth                 = 322
	TagTileLength                = 323
	TagTileOffsets               = 324
	TagTileByteCounts            = 325
	TagExtraSamples              = 338
)

const (
	CompressionNone       = 1
	CompressionDeflate    = 8
	CompressionDeflateOld = 32946

	PhotometricBlackIsZero = 1
	PhotometricRGB         = 2

	extraAssociatedAlpha = 1
)

// field types
const (
	typeByte  = 1
	typeShort = 3
	typeLong  = 4
)

var (
	// ErrInvalidHeader means the input is not a TIFF file at all.
	ErrInvalidHeader = errors.New("invalid TIFF header")
	// ErrUnsupported means a valid TIFF whose layout this reader cannot map.
	ErrUnsupported = errors.New("unsupported TIFF layout")
)

// Tiled reports whether pixels are stored in tiles rather than strips.
func (h Header) Tiled() bool {
	return len(h.TileOffsets) > 0
}

// block returns the block geometry and its offset/byte count tables.
func (h Header) block() (w, ht int, offsets, counts []int) {
	if h.Tiled() {
		return h.TileWidth, h.TileHeight, h.TileOffsets, h.TileByteCounts
	}
	return h.Width, h.RowsPerStrip, h.StripOffsets, h.StripByteCounts
}

// check rejects layouts other than 8-bit chunky gray, RGB and RGBA with no
// or deflate compression, and blocks that do not fit in size bytes.
func (h Header) check(size int64) error {
	if h.Width <= 0 || h.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrUnsupported, h.Width, h.Height)
	}
	switch h.Compression {
	case CompressionNone, CompressionDeflate, CompressionDeflateOld:
	default:
		return fmt.Errorf("%w: compression %d", ErrUnsupported, h.Compression)
	}
	if h.PlanarConfig != 1 {
		return fmt.Errorf("%w: planar configuration %d", ErrUnsupported, h.PlanarConfig)
	}
	switch h.Photometric {
	case PhotometricBlackIsZero:
		if h.SamplesPerPixel != 1 {
			return fmt.Errorf("%w: grayscale with %d samples", ErrUnsupported, h.SamplesPerPixel)
		}
	case PhotometricRGB:
		if h.SamplesPerPixel != 3 && h.SamplesPerPixel != 4 {
			return fmt.Errorf("%w: RGB with %d samples", ErrUnsupported, h.SamplesPerPixel)
		}
	default:
		return fmt.Errorf("%w: photometric %d", ErrUnsupported, h.Photometric)
	}
	if len(h.BitsPerSample) == 0 {
		return fmt.Errorf("%w: missing bits per sample", ErrUnsupported)
	}
	for _, b := range h.BitsPerSample {
		if b != 8 {
			return fmt.Errorf("%w: %v bits per sample", ErrUnsupported, h.BitsPerSample)
		}
	}

	w, ht, offsets, counts := h.block()
	if w <= 0 || ht <= 0 {
		return fmt.Errorf("%w: block size %dx%d", ErrUnsupported, w, ht)
	}
	across := (h.Width + w - 1) / w
	down := (h.Height + ht - 1) / ht
	if len(offsets) != across*down || len(counts) != len(offsets) {
		return fmt.Errorf("%w: %d offsets and %d byte counts for %d blocks",
			ErrUnsupported, len(offsets), len(counts), across*down)
	}
	for i := range offsets {
		if int64(offsets[i])+int64(counts[i]) > size {
			return fmt.Errorf("%w: block %d (%d bytes at %d) past end of file",
				ErrUnsupported, i, counts[i], offsets[i])
		}
	}
	return nil
}

// alphaPremultiplied reports whether the fourth sample is associated alpha.
func (h Header) alphaPremultiplied() bool {
	return len(h.ExtraSamples) > 0 && h.ExtraSamples[0] == extraAssociatedAlpha
}

type entry struct {
	tag, typ uint16
	count    uint32
	value    []byte // the raw 4-byte value/offset field
}

// parseHeader reads the first IFD of a file of the given size. Arrays that
// would extend past the end of the file are rejected before allocation.
func parseHeader(r io.ReaderAt, size int64) (Header, error) {
	read := func(offset int64, size int) ([]byte, error) {
		buf := make([]byte, size)
		_, err := r.ReadAt(buf, offset)
		return buf, err
	}

	head, err := read(0, 8)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Header{}, ErrInvalidHeader
		}
		return Header{}, err
	}

	var bo binary.ByteOrder
	switch string(head[0:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return Header{}, ErrInvalidHeader
	}
	if bo.Uint16(head[2:4]) != 42 {
		return Header{}, ErrInvalidHeader
	}
	ifdOffset := int64(bo.Uint32(head[4:8]))

	countRaw, err := read(ifdOffset, 2)
	if err != nil {
		return Header{}, fmt.Errorf("read IFD: %w", err)
	}
	numEntries := int(bo.Uint16(countRaw))
	if ifdOffset+2+int64(numEntries)*12 > size {
		return Header{}, fmt.Errorf("%w: IFD with %d entries past end of file", ErrUnsupported, numEntries)
	}
	entriesRaw, err := read(ifdOffset+2, numEntries*12)
	if err != nil {
		return Header{}, fmt.Errorf("read IFD entries: %w", err)
	}

	// ints decodes a BYTE, SHORT or LONG array stored inline or at an offset.
	ints := func(e entry) ([]int, error) {
		width := 0
		switch e.typ {
		case typeByte:
			width = 1
		case typeShort:
			width = 2
		case typeLong:
			width = 4
		default:
			return nil, fmt.Errorf("%w: tag %d has field type %d", ErrUnsupported, e.tag, e.typ)
		}
		raw := e.value
		n := int64(e.count) * int64(width)
		if n > 4 {
			off := int64(bo.Uint32(e.value))
			if off+n > size {
				return nil, fmt.Errorf("%w: tag %d with %d values past end of file", ErrUnsupported, e.tag, e.count)
			}
			if raw, err = read(off, int(n)); err != nil {
				return nil, fmt.Errorf("read tag %d: %w", e.tag, err)
			}
		}
		out := make([]int, e.count)
		for i := range out {
			switch width {
			case 1:
				out[i] = int(raw[i])
			case 2:
				out[i] = int(bo.Uint16(raw[i*2:]))
			case 4:
				out[i] = int(bo.Uint32(raw[i*4:]))
			}
		}
		return out, nil
	}
	one := func(e entry) (int, error) {
		v, err := ints(e)
		if err != nil {
			return 0, err
		}
		if len(v) == 0 {
			return 0, fmt.Errorf("%w: tag %d is empty", ErrUnsupported, e.tag)
		}
		return v[0], nil
	}

	hdr := Header{
		ByteOrder:       bo,
		SamplesPerPixel: 1,
		Photometric:     -1,
		Compression:     CompressionNone,
		PlanarConfig:    1,
	}
	for i := 0; i < numEntries; i++ {
		raw := entriesRaw[i*12 : (i+1)*12]
		e := entry{
			tag:   bo.Uint16(raw[0:2]),
			typ:   bo.Uint16(raw[2:4]),
			count: bo.Uint32(raw[4:8]),
			value: raw[8:12],
		}

		var err error
		switch e.tag {
		case TagImageWidth:
			hdr.Width, err = one(e)
		case TagImageLength:
			hdr.Height, err = one(e)
		case TagBitsPerSample:
			hdr.BitsPerSample, err = ints(e)
		case TagCompression:
			hdr.Compression, err = one(e)
		case TagPhotometricInterpretation:
			hdr.Photometric, err = one(e)
		case TagSamplesPerPixel:
			hdr.SamplesPerPixel, err = one(e)
		case TagPlanarConfiguration:
			hdr.PlanarConfig, err = one(e)
		case TagExtraSamples:
			hdr.ExtraSamples, err = ints(e)
		case TagRowsPerStrip:
			hdr.RowsPerStrip, err = one(e)
		case TagStripOffsets:
			hdr.StripOffsets, err = ints(e)
		case TagStripByteCounts:
			hdr.StripByteCounts, err = ints(e)
		case TagTileWidth:
			hdr.TileWidth, err = one(e)
		case TagTileLength:
			hdr.TileHeight, err = one(e)
		case TagTileOffsets:
			hdr.TileOffsets, err = ints(e)
		case TagTileByteCounts:
			hdr.TileByteCounts, err = ints(e)
		}
		if err != nil {
			return Header{}, err
		}
	}

	// RowsPerStrip defaults to 2^32-1, i.e. a single strip.
	if hdr.RowsPerStrip <= 0 || hdr.RowsPerStrip > hdr.Height {
		hdr.RowsPerStrip = hdr.Height
	}
	return hdr, nil
}
