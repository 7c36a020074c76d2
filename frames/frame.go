package frames

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/pkg/errors"
)

// ErrNoFrames is returned (wrapped in a DecodeError) when a source yields no frames.
var ErrNoFrames = errors.New("no frames in animation")

// Frame is one decoded animation frame.
type Frame struct {
	Name  string
	Index int
	Image *image.NRGBA
}

// Size returns the frame dimensions, or a zero point if there is no buffer.
func (f Frame) Size() image.Point {
	if f.Image == nil {
		return image.Point{}
	}
	return f.Image.Bounds().Size()
}

// Source produces the frames of one animation in timeline order.
type Source interface {
	FrameCount() int
	Frame(i int) (image.Image, error)
	Close() error
}

// Namer is implemented by sources which know a natural name for each frame,
// such as the file name in an image sequence.
type Namer interface {
	FrameName(i int) string
}

// DecodeError reports an input that could not be turned into frames.
type DecodeError struct {
	Path  string
	Frame int // -1 when the error is not specific to one frame
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Frame < 0 {
		return fmt.Sprintf("decoding %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("decoding %s frame %d: %v", e.Path, e.Frame, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ToNRGBA returns img as an *image.NRGBA with its origin at (0, 0). The
// result never aliases img.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if src, ok := img.(*image.NRGBA); ok {
		Blit(dst, image.Point{}, src, b)
		return dst
	}
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Clone returns a deep copy of img, rebased to (0, 0).
func Clone(img *image.NRGBA) *image.NRGBA {
	return ToNRGBA(img)
}

// Blit copies the sr rectangle of src into dst with its top-left corner at
// dp. Pixels are copied verbatim, with no blending and no alpha conversion.
// The copy is clipped to both images.
func Blit(dst *image.NRGBA, dp image.Point, src *image.NRGBA, sr image.Rectangle) {
	sr = sr.Intersect(src.Bounds())
	dr := image.Rectangle{Min: dp, Max: dp.Add(sr.Size())}.Intersect(dst.Bounds())
	if dr.Empty() {
		return
	}
	sp := sr.Min.Add(dr.Min.Sub(dp))
	n := dr.Dx() * 4
	for y := 0; y < dr.Dy(); y++ {
		do := dst.PixOffset(dr.Min.X, dr.Min.Y+y)
		so := src.PixOffset(sp.X, sp.Y+y)
		copy(dst.Pix[do:do+n], src.Pix[so:so+n])
	}
}
