package crunch

// Point records where a bitmap landed in an atlas.
type Point struct {
	X, Y int

	// DupOf is the index of an earlier placement whose pixels this bitmap
	// reuses, or -1 if this placement contributes its own pixels.
	DupOf int

	// Rotated reports that the bitmap is stored rotated 90 degrees
	// clockwise.
	Rotated bool
}

// Packer accumulates the placements of a single atlas. Width and Height
// start at the configured maximum and shrink to the smallest power-of-two
// envelope of the used area once Pack returns.
type Packer struct {
	Width   int
	Height  int
	Pad     int
	Bitmaps []*Bitmap
	Points  []Point

	// dupLookup maps a content hash to the index of the latest fresh
	// placement with that hash. Hash collisions fall through to a fresh
	// placement via the pixel equality check, which then takes the entry.
	dupLookup map[uint64]int
}

// NewPacker creates a packer for one atlas of the given maximum dimensions
// and padding.
func NewPacker(width, height, pad int) *Packer {
	return &Packer{
		Width:     width,
		Height:    height,
		Pad:       pad,
		dupLookup: make(map[uint64]int),
	}
}

// Pack consumes bitmaps from the tail of the slice (largest first, given
// the caller sorts ascending by area) until the slice is empty or a bitmap
// no longer fits. Consumed bitmaps are removed from the slice. Afterwards
// the atlas dimensions are shrunk to the tightest power-of-two envelope of
// the placed content.
func (p *Packer) Pack(bitmaps *[]*Bitmap, opts Options) {
	mr := NewMaxRects(p.Width, p.Height)
	log := Logger()

	// Extents of placed content, excluding the pad gutter.
	ww, hh := 0, 0
	for len(*bitmaps) > 0 {
		b := (*bitmaps)[len(*bitmaps)-1]
		log.Debug("packing bitmap", "remaining", len(*bitmaps), "name", b.Name)

		if opts.Unique {
			if di, found := p.dupLookup[b.Hash]; found && b.Equals(p.Bitmaps[di]) {
				pt := p.Points[di]
				pt.DupOf = di
				p.Points = append(p.Points, pt)
				p.Bitmaps = append(p.Bitmaps, b)
				*bitmaps = (*bitmaps)[:len(*bitmaps)-1]
				continue
			}
		}

		rect, rotated, ok := mr.Insert(b.Width+p.Pad, b.Height+p.Pad, opts.Rotate)
		if !ok {
			break
		}

		if opts.Unique {
			p.dupLookup[b.Hash] = len(p.Points)
		}
		p.Points = append(p.Points, Point{X: rect.X, Y: rect.Y, DupOf: -1, Rotated: rotated})
		p.Bitmaps = append(p.Bitmaps, b)
		*bitmaps = (*bitmaps)[:len(*bitmaps)-1]

		if rect.X+rect.W-p.Pad > ww {
			ww = rect.X + rect.W - p.Pad
		}
		if rect.Y+rect.H-p.Pad > hh {
			hh = rect.Y + rect.H - p.Pad
		}
	}

	if ww > 0 {
		for p.Width/2 >= ww {
			p.Width /= 2
		}
	}
	if hh > 0 {
		for p.Height/2 >= hh {
			p.Height /= 2
		}
	}
}

// SavePNG composites every non-duplicate placement onto a fresh canvas and
// writes it to path. Duplicate placements contribute no pixels.
func (p *Packer) SavePNG(path string) error {
	canvas := NewPixmap(p.Width, p.Height)
	for i, b := range p.Bitmaps {
		pt := p.Points[i]
		if pt.DupOf >= 0 {
			continue
		}
		if pt.Rotated {
			canvas.BlitRotated(b.Data, pt.X, pt.Y)
		} else {
			canvas.Blit(b.Data, pt.X, pt.Y)
		}
	}
	return canvas.SavePNG(path)
}
