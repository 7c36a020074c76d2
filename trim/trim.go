// Package trim crops animation frames to the smallest rectangle holding
// every visible pixel, remembering where the crop came from so the frame
// can be rebuilt at its original size.
package trim

import (
	"fmt"
	"image"

	"github.com/golang/glog"

	"badc0de.net/pkg/spriteatlas/frames"
)

// Frame is a trimmed copy of a frames.Frame.
type Frame struct {
	Name  string
	Index int

	// Image is the cropped buffer, with its origin at (0, 0).
	Image *image.NRGBA
	// Crop is the rectangle Image was taken from, in frame coordinates.
	Crop image.Rectangle
	// SourceSize is the size of the untrimmed frame.
	SourceSize image.Point
	// Placeholder marks a fully transparent frame replaced by a 1×1 pixel.
	Placeholder bool
}

// Trimmed reports whether the crop removed anything.
func (f *Frame) Trimmed() bool {
	return !f.Crop.Eq(image.Rectangle{Max: f.SourceSize})
}

// Size is the size of the cropped buffer.
func (f *Frame) Size() image.Point {
	return f.Crop.Size()
}

// EmptyFrameError reports a frame with no pixel buffer to trim.
type EmptyFrameError struct {
	Name          string
	Width, Height int
}

func (e *EmptyFrameError) Error() string {
	return fmt.Sprintf("frame %q has unusable size %dx%d", e.Name, e.Width, e.Height)
}

// Bounds returns the minimal rectangle containing every pixel of img with
// non-zero alpha, relative to img's origin. ok is false when all pixels are
// fully transparent.
func Bounds(img *image.NRGBA) (r image.Rectangle, ok bool) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	visible := func(x, y int) bool {
		return img.Pix[img.PixOffset(b.Min.X+x, b.Min.Y+y)+3] != 0
	}
	rowVisible := func(y int) bool {
		for x := 0; x < w; x++ {
			if visible(x, y) {
				return true
			}
		}
		return false
	}

	top := 0
	for top < h && !rowVisible(top) {
		top++
	}
	if top == h {
		return image.Rectangle{}, false
	}
	bottom := h
	for !rowVisible(bottom - 1) {
		bottom--
	}

	left, right := w, 0
	for y := top; y < bottom; y++ {
		for x := 0; x < left; x++ {
			if visible(x, y) {
				left = x
				break
			}
		}
		for x := w - 1; x >= right; x-- {
			if visible(x, y) {
				right = x + 1
				break
			}
		}
	}
	return image.Rect(left, top, right, bottom), true
}

// Trim crops f. With enabled false the crop is the whole frame. The input
// frame is never modified; the result always owns its buffer.
func Trim(f frames.Frame, enabled bool) (*Frame, error) {
	if f.Image == nil {
		return nil, &EmptyFrameError{Name: f.Name}
	}
	b := f.Image.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 || len(f.Image.Pix) < f.Image.PixOffset(b.Max.X-1, b.Max.Y-1)+4 {
		return nil, &EmptyFrameError{Name: f.Name, Width: b.Dx(), Height: b.Dy()}
	}

	t := &Frame{
		Name:       f.Name,
		Index:      f.Index,
		SourceSize: b.Size(),
	}
	if !enabled {
		t.Crop = image.Rectangle{Max: b.Size()}
		t.Image = frames.Clone(f.Image)
		return t, nil
	}

	crop, ok := Bounds(f.Image)
	if !ok {
		glog.V(2).Infof("frame %q is fully transparent, using a placeholder", f.Name)
		t.Crop = image.Rect(0, 0, 1, 1)
		t.Image = image.NewNRGBA(t.Crop)
		t.Placeholder = true
		return t, nil
	}
	t.Crop = crop
	t.Image = image.NewNRGBA(image.Rectangle{Max: crop.Size()})
	frames.Blit(t.Image, image.Point{}, f.Image, crop.Add(b.Min))
	glog.V(2).Infof("trimmed %q from %v to %v", f.Name, b.Size(), crop)
	return t, nil
}
