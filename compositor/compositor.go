// Package compositor paints trimmed frames onto atlas pages according to a
// packing plan, and reads them back.
//
// Sprites are copied pixel for pixel; nothing is blended. Around each sprite
// the outermost rows and columns are repeated outwards (extrusion), so a
// texture sampler that bleeds past the sprite edge picks up the sprite's own
// border colour instead of a neighbour or the transparent gutter.
package compositor

import (
	"image"

	"github.com/golang/glog"

	"badc0de.net/pkg/spriteatlas/frames"
	"badc0de.net/pkg/spriteatlas/packer"
)

// SpriteFunc returns the trimmed buffer of the item with the given index.
type SpriteFunc func(index int) *image.NRGBA

// CompositePage renders one page of a plan. The page starts fully
// transparent; each sprite lands at its footprint origin plus margin, with
// its borders extruded by extrude pixels.
func CompositePage(page *packer.Page, sprite SpriteFunc, margin, extrude int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, page.Width, page.Height))
	for _, p := range page.Placements {
		src := sprite(p.Index)
		if src == nil {
			glog.Errorf("page %d: no sprite for item %d", page.Index, p.Index)
			continue
		}
		if p.Rotated {
			src = RotateCW(src)
		}
		content := p.Content(margin)
		if !content.Size().Eq(src.Bounds().Size()) {
			glog.Errorf("page %d: item %d is %v but its slot is %v", page.Index, p.Index, src.Bounds().Size(), content.Size())
		}
		frames.Blit(img, content.Min, src, src.Bounds())
		Extrude(img, content, extrude)
	}
	glog.V(1).Infof("composited page %d (%dx%d, %d sprites)", page.Index, page.Width, page.Height, len(page.Placements))
	return img
}

// Extrude repeats the edge pixels of the content rectangle n pixels
// outwards. Rows go first, then columns over the already extended rows,
// which fills each corner block with the matching corner pixel.
func Extrude(img *image.NRGBA, content image.Rectangle, n int) {
	if n <= 0 || content.Empty() {
		return
	}
	b := img.Bounds()
	row := func(from, to int) {
		if to < b.Min.Y || to >= b.Max.Y {
			return
		}
		r := image.Rect(content.Min.X, from, content.Max.X, from+1)
		frames.Blit(img, image.Pt(content.Min.X, to), img, r)
	}
	for k := 1; k <= n; k++ {
		row(content.Min.Y, content.Min.Y-k)
		row(content.Max.Y-1, content.Max.Y-1+k)
	}

	top := max(content.Min.Y-n, b.Min.Y)
	bottom := min(content.Max.Y+n, b.Max.Y)
	col := func(from, to int) {
		if to < b.Min.X || to >= b.Max.X {
			return
		}
		for y := top; y < bottom; y++ {
			so := img.PixOffset(from, y)
			do := img.PixOffset(to, y)
			copy(img.Pix[do:do+4], img.Pix[so:so+4])
		}
	}
	for k := 1; k <= n; k++ {
		col(content.Min.X, content.Min.X-k)
		col(content.Max.X-1, content.Max.X-1+k)
	}
}

// RotateCW returns src turned 90° clockwise: source pixel (x, y) of a W×H
// image lands at (H-1-y, x).
func RotateCW(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			so := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			do := dst.PixOffset(h-1-y, x)
			copy(dst.Pix[do:do+4], src.Pix[so:so+4])
		}
	}
	return dst
}

// RotateCCW undoes RotateCW.
func RotateCCW(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			so := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			do := dst.PixOffset(y, w-1-x)
			copy(dst.Pix[do:do+4], src.Pix[so:so+4])
		}
	}
	return dst
}

// Extract copies the content rectangle out of a page, turning rotated
// sprites back upright.
func Extract(page *image.NRGBA, content image.Rectangle, rotated bool) *image.NRGBA {
	out := image.NewNRGBA(image.Rectangle{Max: content.Size()})
	frames.Blit(out, image.Point{}, page, content)
	if rotated {
		return RotateCCW(out)
	}
	return out
}
