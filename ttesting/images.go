// Package ttesting contains helpers shared by tests: assertions and
// synthetic frame builders, so tests need no binary fixtures.
package ttesting

import (
	"image"
	"image/color"
	"image/gif"

	"github.com/bradfitz/iter"
)

// Transparent returns a fully transparent w×h frame.
func Transparent(w, h int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}

// Solid returns a w×h frame filled with c.
func Solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := Transparent(w, h)
	Fill(img, img.Bounds(), c)
	return img
}

// Sprite returns a transparent w×h frame with a unique opaque pattern (see
// Pattern) inside r.
func Sprite(w, h int, r image.Rectangle, seed int) *image.NRGBA {
	img := Transparent(w, h)
	r = r.Intersect(img.Bounds())
	for y := range iter.N(r.Dy()) {
		for x := range iter.N(r.Dx()) {
			img.SetNRGBA(r.Min.X+x, r.Min.Y+y, patternColor(x, y, seed))
		}
	}
	return img
}

// Pattern returns an opaque w×h frame in which neighbouring pixels differ,
// so misplaced or flipped copies are detected.
func Pattern(w, h int, seed int) *image.NRGBA {
	return Sprite(w, h, image.Rect(0, 0, w, h), seed)
}

// Fill sets every pixel of img inside r to c.
func Fill(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func patternColor(x, y, seed int) color.NRGBA {
	return color.NRGBA{
		R: uint8(x*7 + seed*31),
		G: uint8(y*13 + seed*17),
		B: uint8((x+y)*3 + seed),
		A: 0xff,
	}
}

// Palette is a small palette with a transparent first entry, for building GIFs.
var Palette = color.Palette{
	color.Transparent,
	color.NRGBA{0xff, 0x00, 0x00, 0xff},
	color.NRGBA{0x00, 0xff, 0x00, 0xff},
	color.NRGBA{0x00, 0x00, 0xff, 0xff},
	color.NRGBA{0xff, 0xff, 0xff, 0xff},
}

// Animation builds a GIF with one frame per rectangle: each frame covers
// the w×h screen, is transparent except for rects[i] drawn with palette
// entry 1+i%4, and is disposed to background.
func Animation(w, h int, rects ...image.Rectangle) *gif.GIF {
	g := &gif.GIF{Config: image.Config{Width: w, Height: h, ColorModel: Palette}}
	for i, r := range rects {
		pm := image.NewPaletted(image.Rect(0, 0, w, h), Palette)
		idx := uint8(1 + i%4)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				pm.SetColorIndex(x, y, idx)
			}
		}
		g.Image = append(g.Image, pm)
		g.Delay = append(g.Delay, 10)
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}
	return g
}
