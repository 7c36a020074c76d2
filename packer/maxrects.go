package packer

import "image"

// bin tracks the free space of one page as a list of maximal free
// rectangles. Free rectangles may overlap each other but never overlap a
// placed rectangle.
type bin struct {
	size image.Point
	free []image.Rectangle
	used []image.Rectangle
}

func newBin(w, h int) *bin {
	return &bin{
		size: image.Pt(w, h),
		free: []image.Rectangle{image.Rect(0, 0, w, h)},
	}
}

// candidate is a possible position for a rectangle, scored by Best Short
// Side Fit.
type candidate struct {
	rect    image.Rectangle
	rotated bool
	short   int
	long    int
}

// better orders candidates: shorter leftover short side, then long side,
// then top-most, then left-most, then unrotated.
func (c candidate) better(o candidate) bool {
	switch {
	case c.short != o.short:
		return c.short < o.short
	case c.long != o.long:
		return c.long < o.long
	case c.rect.Min.Y != o.rect.Min.Y:
		return c.rect.Min.Y < o.rect.Min.Y
	case c.rect.Min.X != o.rect.Min.X:
		return c.rect.Min.X < o.rect.Min.X
	default:
		return !c.rotated && o.rotated
	}
}

// find returns the best position for a w×h rectangle, also trying it
// rotated (h×w) when allowed.
func (b *bin) find(w, h int, allowRotation bool) (candidate, bool) {
	var best candidate
	found := false
	try := func(f image.Rectangle, w, h int, rotated bool) {
		fw, fh := f.Dx(), f.Dy()
		if w > fw || h > fh {
			return
		}
		dw, dh := fw-w, fh-h
		c := candidate{
			rect:    image.Rect(f.Min.X, f.Min.Y, f.Min.X+w, f.Min.Y+h),
			rotated: rotated,
			short:   min(dw, dh),
			long:    max(dw, dh),
		}
		if !found || c.better(best) {
			best, found = c, true
		}
	}
	for _, f := range b.free {
		try(f, w, h, false)
		if allowRotation && w != h {
			try(f, h, w, true)
		}
	}
	return best, found
}

// place commits r, splitting every free rectangle it intersects into the
// maximal rectangles left around it.
func (b *bin) place(r image.Rectangle) {
	next := make([]image.Rectangle, 0, len(b.free)+4)
	for _, f := range b.free {
		if !f.Overlaps(r) {
			next = append(next, f)
			continue
		}
		if r.Min.X > f.Min.X {
			next = append(next, image.Rect(f.Min.X, f.Min.Y, r.Min.X, f.Max.Y))
		}
		if r.Max.X < f.Max.X {
			next = append(next, image.Rect(r.Max.X, f.Min.Y, f.Max.X, f.Max.Y))
		}
		if r.Min.Y > f.Min.Y {
			next = append(next, image.Rect(f.Min.X, f.Min.Y, f.Max.X, r.Min.Y))
		}
		if r.Max.Y < f.Max.Y {
			next = append(next, image.Rect(f.Min.X, r.Max.Y, f.Max.X, f.Max.Y))
		}
	}
	b.free = pruneContained(next)
	b.used = append(b.used, r)
}

// pruneContained drops free rectangles lying inside another one. Of two
// identical rectangles the first is kept.
func pruneContained(rects []image.Rectangle) []image.Rectangle {
	out := rects[:0:0]
	for i, r := range rects {
		contained := false
		for j, o := range rects {
			if i == j || !r.In(o) {
				continue
			}
			if r.Eq(o) && i < j {
				continue
			}
			contained = true
			break
		}
		if !contained {
			out = append(out, r)
		}
	}
	return out
}

// extent is the tight bounding box of everything placed, anchored at (0, 0).
func (b *bin) extent() image.Point {
	var p image.Point
	for _, r := range b.used {
		p.X = max(p.X, r.Max.X)
		p.Y = max(p.Y, r.Max.Y)
	}
	return p
}
