// Package packer assigns trimmed frames to positions on one or more atlas
// pages using a max-rects free space search.
//
// Each frame occupies a footprint: its content surrounded by the extrusion
// border and then the padding gutter on every side. Footprints never overlap
// and never leave their page. Given the same items and options, Pack always
// produces the same plan.
package packer

import (
	"fmt"
	"image"
	"sort"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Options controls page size and footprint geometry.
type Options struct {
	MaxWidth, MaxHeight int
	Padding             int
	Extrude             int
	PowerOfTwo          bool
	AllowRotation       bool
}

// Margin is the distance between a footprint edge and its content.
func (o Options) Margin() int { return o.Padding + o.Extrude }

func (o Options) footprint(w, h int) (int, int) {
	m := 2 * o.Margin()
	return w + m, h + m
}

// Item is one rectangle to pack.
type Item struct {
	Index         int
	Width, Height int
}

// Placement is the footprint of one item on a page. When Rotated is set the
// item is stored turned 90° clockwise, so Width and Height are those of the
// rotated footprint.
type Placement struct {
	Index   int
	Page    int
	X, Y    int
	Width   int
	Height  int
	Rotated bool
}

// Rect is the footprint rectangle on its page.
func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// Content is the rectangle the sprite's own pixels are drawn in: the
// footprint inset by margin on every side.
func (p Placement) Content(margin int) image.Rectangle {
	return p.Rect().Inset(margin)
}

// Page is one sealed atlas page.
type Page struct {
	Index         int
	Width, Height int
	Placements    []Placement
}

// Plan is the result of packing.
type Plan struct {
	Options Options
	Pages   []*Page
	// Placements[i] belongs to the i-th item passed to Pack.
	Placements []Placement
}

// OversizedFrameError reports an item whose footprint cannot fit a page in
// any allowed orientation.
type OversizedFrameError struct {
	Index               int
	Width, Height       int // footprint size
	MaxWidth, MaxHeight int
}

func (e *OversizedFrameError) Error() string {
	return fmt.Sprintf("frame %d footprint %dx%d exceeds page size %dx%d", e.Index, e.Width, e.Height, e.MaxWidth, e.MaxHeight)
}

// NextPowerOfTwo returns the smallest power of two >= n, and 1 for n <= 1.
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Pack places every item. Items are visited by descending footprint area,
// ties keeping input order. Only the most recent page accepts new items;
// when an item does not fit there the page is sealed and a new one opened.
func Pack(items []Item, opts Options) (*Plan, error) {
	if opts.MaxWidth <= 0 || opts.MaxHeight <= 0 {
		return nil, errors.Errorf("invalid page size %dx%d", opts.MaxWidth, opts.MaxHeight)
	}
	if opts.Padding < 0 || opts.Extrude < 0 {
		return nil, errors.Errorf("invalid padding %d or extrude %d", opts.Padding, opts.Extrude)
	}

	for _, it := range items {
		if it.Width <= 0 || it.Height <= 0 {
			return nil, errors.Errorf("item %d has invalid size %dx%d", it.Index, it.Width, it.Height)
		}
		w, h := opts.footprint(it.Width, it.Height)
		fits := w <= opts.MaxWidth && h <= opts.MaxHeight
		if !fits && opts.AllowRotation {
			fits = h <= opts.MaxWidth && w <= opts.MaxHeight
		}
		if !fits {
			return nil, &OversizedFrameError{Index: it.Index, Width: w, Height: h, MaxWidth: opts.MaxWidth, MaxHeight: opts.MaxHeight}
		}
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := items[order[a]], items[order[b]]
		wa, ha := opts.footprint(ia.Width, ia.Height)
		wb, hb := opts.footprint(ib.Width, ib.Height)
		return wa*ha > wb*hb
	})

	plan := &Plan{Options: opts, Placements: make([]Placement, len(items))}
	var cur *bin
	var curPage *Page
	seal := func() {
		if curPage == nil {
			return
		}
		ext := cur.extent()
		curPage.Width, curPage.Height = ext.X, ext.Y
		if opts.PowerOfTwo {
			curPage.Width, curPage.Height = NextPowerOfTwo(ext.X), NextPowerOfTwo(ext.Y)
		}
		glog.V(1).Infof("sealed page %d: %dx%d, %d placements", curPage.Index, curPage.Width, curPage.Height, len(curPage.Placements))
	}
	open := func() {
		cur = newBin(opts.MaxWidth, opts.MaxHeight)
		curPage = &Page{Index: len(plan.Pages)}
		plan.Pages = append(plan.Pages, curPage)
	}

	for _, i := range order {
		it := items[i]
		w, h := opts.footprint(it.Width, it.Height)
		if cur == nil {
			open()
		}
		c, ok := cur.find(w, h, opts.AllowRotation)
		if !ok {
			seal()
			open()
			if c, ok = cur.find(w, h, opts.AllowRotation); !ok {
				// Unreachable after the size check above.
				return nil, &OversizedFrameError{Index: it.Index, Width: w, Height: h, MaxWidth: opts.MaxWidth, MaxHeight: opts.MaxHeight}
			}
		}
		cur.place(c.rect)
		p := Placement{
			Index:   it.Index,
			Page:    curPage.Index,
			X:       c.rect.Min.X,
			Y:       c.rect.Min.Y,
			Width:   c.rect.Dx(),
			Height:  c.rect.Dy(),
			Rotated: c.rotated,
		}
		curPage.Placements = append(curPage.Placements, p)
		plan.Placements[i] = p
		glog.V(2).Infof("placed item %d at page %d %v rotated=%t", it.Index, p.Page, p.Rect(), p.Rotated)
	}
	seal()
	return plan, nil
}

// Utilization is the share of committed page area covered by sprite
// content, between 0 and 1.
func (p *Plan) Utilization() float64 {
	var used, total int
	m := p.Options.Margin()
	for _, pg := range p.Pages {
		total += pg.Width * pg.Height
		for _, pl := range pg.Placements {
			used += pl.Content(m).Dx() * pl.Content(m).Dy()
		}
	}
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total)
}

// Validate checks that every footprint lies inside its page and that no two
// footprints on a page overlap.
func (p *Plan) Validate() error {
	for _, pg := range p.Pages {
		bounds := image.Rect(0, 0, pg.Width, pg.Height)
		for i, a := range pg.Placements {
			if !a.Rect().In(bounds) {
				return errors.Errorf("page %d: placement of item %d at %v leaves page %v", pg.Index, a.Index, a.Rect(), bounds)
			}
			for _, b := range pg.Placements[i+1:] {
				if a.Rect().Overlaps(b.Rect()) {
					return errors.Errorf("page %d: items %d %v and %d %v overlap", pg.Index, a.Index, a.Rect(), b.Index, b.Rect())
				}
			}
		}
	}
	return nil
}
