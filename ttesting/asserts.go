package ttesting

import (
	"bytes"
	"image"
	"testing"
)

func AssertEqualInt(t *testing.T, name string, got, want int) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %d; want %d", got, want)
		}
	})
}

func AssertEqualBool(t *testing.T, name string, got, want bool) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %t; want %t", got, want)
		}
	})
}

func AssertEqualPoint(t *testing.T, name string, got, want image.Point) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if !got.Eq(want) {
			t.Errorf("got %v; want %v", got, want)
		}
	})
}

func AssertEqualRect(t *testing.T, name string, got, want image.Rectangle) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if !got.Eq(want) {
			t.Errorf("got %v; want %v", got, want)
		}
	})
}

// AssertSameImage compares size and raw pixel data of two images. The
// first differing pixel is reported.
func AssertSameImage(t *testing.T, name string, got, want *image.NRGBA) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got == nil || want == nil {
			if got != want {
				t.Fatalf("got %v; want %v", got, want)
			}
			return
		}
		if !got.Bounds().Size().Eq(want.Bounds().Size()) {
			t.Fatalf("size: got %v; want %v", got.Bounds().Size(), want.Bounds().Size())
		}
		gb, wb := got.Bounds(), want.Bounds()
		for y := 0; y < wb.Dy(); y++ {
			gr := got.Pix[got.PixOffset(gb.Min.X, gb.Min.Y+y):][:wb.Dx()*4]
			wr := want.Pix[want.PixOffset(wb.Min.X, wb.Min.Y+y):][:wb.Dx()*4]
			if bytes.Equal(gr, wr) {
				continue
			}
			for x := 0; x < wb.Dx(); x++ {
				if !bytes.Equal(gr[x*4:x*4+4], wr[x*4:x*4+4]) {
					t.Fatalf("pixel (%d,%d): got %v; want %v", x, y, gr[x*4:x*4+4], wr[x*4:x*4+4])
				}
			}
		}
	})
}
