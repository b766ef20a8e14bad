package crunch

// Rect is an axis-aligned rectangle in atlas coordinates.
type Rect struct {
	X, Y int
	W, H int
}

// in reports whether r lies entirely within (or equals) outer.
func (r Rect) in(outer Rect) bool {
	return r.X >= outer.X && r.Y >= outer.Y &&
		r.X+r.W <= outer.X+outer.W && r.Y+r.H <= outer.Y+outer.H
}

// overlaps reports whether r and other share any area.
func (r Rect) overlaps(other Rect) bool {
	return r.X < other.X+other.W && r.X+r.W > other.X &&
		r.Y < other.Y+other.H && r.Y+r.H > other.Y
}

// MaxRects packs rectangles into a fixed bin by maintaining the set of
// maximal free rectangles (Jylänki's MaxRects scheme). Placement uses the
// Best Short Side Fit heuristic: of all free rectangles a candidate fits
// in, choose the one minimizing the smaller leftover dimension, breaking
// ties on the larger leftover dimension.
type MaxRects struct {
	width  int
	height int
	free   []Rect
}

// NewMaxRects creates a packer for a bin of the given dimensions.
func NewMaxRects(width, height int) *MaxRects {
	return &MaxRects{
		width:  width,
		height: height,
		free:   []Rect{{0, 0, width, height}},
	}
}

// Insert places a width x height rectangle into the bin. With allowRotate,
// the 90-degree rotated orientation competes under the same score; on a
// tie the candidate enumerated first wins, which within one free rectangle
// is the unrotated orientation. The returned rect carries the placed
// (post-rotation) dimensions, rotated reports the chosen orientation, and
// ok is false if the rectangle fits nowhere.
func (m *MaxRects) Insert(width, height int, allowRotate bool) (placed Rect, rotated, ok bool) {
	bestShort := int(^uint(0) >> 1)
	bestLong := bestShort

	score := func(fw, fh, w, h int) (int, int, bool) {
		if w > fw || h > fh {
			return 0, 0, false
		}
		lx, ly := fw-w, fh-h
		if lx < ly {
			return lx, ly, true
		}
		return ly, lx, true
	}

	for _, f := range m.free {
		if short, long, fits := score(f.W, f.H, width, height); fits {
			if short < bestShort || (short == bestShort && long < bestLong) {
				placed = Rect{X: f.X, Y: f.Y, W: width, H: height}
				bestShort, bestLong = short, long
				rotated = false
				ok = true
			}
		}
		if !allowRotate {
			continue
		}
		if short, long, fits := score(f.W, f.H, height, width); fits {
			if short < bestShort || (short == bestShort && long < bestLong) {
				placed = Rect{X: f.X, Y: f.Y, W: height, H: width}
				bestShort, bestLong = short, long
				rotated = true
				ok = true
			}
		}
	}

	if !ok {
		return Rect{}, false, false
	}
	m.place(placed)
	return placed, rotated, true
}

// place removes the used area from every overlapping free rectangle,
// keeping the up-to-four maximal remainders, then prunes the list.
func (m *MaxRects) place(used Rect) {
	next := make([]Rect, 0, len(m.free)+4)
	for _, f := range m.free {
		if !f.overlaps(used) {
			next = append(next, f)
			continue
		}
		if used.X > f.X {
			next = append(next, Rect{f.X, f.Y, used.X - f.X, f.H})
		}
		if used.X+used.W < f.X+f.W {
			next = append(next, Rect{used.X + used.W, f.Y, f.X + f.W - (used.X + used.W), f.H})
		}
		if used.Y > f.Y {
			next = append(next, Rect{f.X, f.Y, f.W, used.Y - f.Y})
		}
		if used.Y+used.H < f.Y+f.H {
			next = append(next, Rect{f.X, used.Y + used.H, f.W, f.Y + f.H - (used.Y + used.H)})
		}
	}
	m.free = next
	m.prune()
}

// prune drops every free rectangle contained in another, restoring the
// maximal-rectangle invariant. Quadratic, but the list stays small.
func (m *MaxRects) prune() {
	for i := 0; i < len(m.free); i++ {
		for j := i + 1; j < len(m.free); j++ {
			if m.free[i].in(m.free[j]) {
				m.free = append(m.free[:i], m.free[i+1:]...)
				i--
				break
			}
			if m.free[j].in(m.free[i]) {
				m.free = append(m.free[:j], m.free[j+1:]...)
				j--
			}
		}
	}
}

// FreeRects returns a copy of the current free-rectangle set.
func (m *MaxRects) FreeRects() []Rect {
	out := make([]Rect, len(m.free))
	copy(out, m.free)
	return out
}
