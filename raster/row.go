package raster

// Row is the output buffer for one scanline segment [X, R). Storage is
// allocated per channel on request, and columns are addressed absolutely.
type Row struct {
	X, R int
	bufs [NumChannels][]float32
}

func NewRow(x, r int) *Row {
	return &Row{X: x, R: r}
}

// Writable returns storage for channel c, allocating it on first use.
func (r *Row) Writable(c Channel) []float32 {
	if r.bufs[c] == nil {
		r.bufs[c] = make([]float32, r.R-r.X)
	}
	return r.bufs[c]
}

// WritableAll allocates storage for every channel of s.
func (r *Row) WritableAll(s ChannelSet) {
	for _, c := range s.Channels() {
		r.Writable(c)
	}
}

// Has reports whether channel c has storage.
func (r *Row) Has(c Channel) bool {
	return r.bufs[c] != nil
}

// Covers reports whether columns [x, end) fall inside the row.
func (r *Row) Covers(x, end int) bool {
	return x >= r.X && end <= r.R && x <= end
}

// Set writes v at absolute column x.
func (r *Row) Set(c Channel, x int, v float32) {
	r.bufs[c][x-r.X] = v
}

// Get reads absolute column x.
func (r *Row) Get(c Channel, x int) float32 {
	return r.bufs[c][x-r.X]
}

// CopyTo stores the row into line y of dst for every channel both hold.
func (r *Row) CopyTo(dst *Planar, y int) {
	for c := Channel(0); c < NumChannels; c++ {
		if r.bufs[c] == nil {
			continue
		}
		if line := dst.Row(c, y); line != nil {
			copy(line[r.X:r.R], r.bufs[c])
		}
	}
}
