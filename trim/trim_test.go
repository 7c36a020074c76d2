package trim

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"

	"badc0de.net/pkg/spriteatlas/frames"
	"badc0de.net/pkg/spriteatlas/ttesting"
)

func TestBounds(t *testing.T) {
	for _, tc := range []struct {
		name   string
		img    *image.NRGBA
		want   image.Rectangle
		wantOK bool
	}{
		{"opaque", ttesting.Solid(4, 3, color.NRGBA{A: 0xff}), image.Rect(0, 0, 4, 3), true},
		{"inner", ttesting.Sprite(10, 8, image.Rect(2, 3, 5, 7), 1), image.Rect(2, 3, 5, 7), true},
		{"corner", ttesting.Sprite(10, 8, image.Rect(9, 7, 10, 8), 1), image.Rect(9, 7, 10, 8), true},
		{"transparent", ttesting.Transparent(6, 6), image.Rectangle{}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Bounds(tc.img)
			if ok != tc.wantOK || !got.Eq(tc.want) {
				t.Errorf("got %v, %t; want %v, %t", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestBoundsCountsFaintAlpha(t *testing.T) {
	img := ttesting.Transparent(5, 5)
	img.SetNRGBA(1, 1, color.NRGBA{0xff, 0xff, 0xff, 1})
	img.SetNRGBA(3, 2, color.NRGBA{0, 0, 0, 1})
	got, ok := Bounds(img)
	if !ok {
		t.Fatal("alpha 1 should count as visible")
	}
	ttesting.AssertEqualRect(t, "bounds", got, image.Rect(1, 1, 4, 3))
}

func TestTrim(t *testing.T) {
	src := ttesting.Sprite(10, 8, image.Rect(2, 3, 5, 7), 4)
	orig := frames.Clone(src)

	tf, err := Trim(frames.Frame{Name: "f", Index: 2, Image: src}, true)
	if err != nil {
		t.Fatalf("Trim: %v", err)
	}
	ttesting.AssertEqualRect(t, "crop", tf.Crop, image.Rect(2, 3, 5, 7))
	ttesting.AssertEqualPoint(t, "source size", tf.SourceSize, image.Pt(10, 8))
	ttesting.AssertEqualRect(t, "buffer bounds", tf.Image.Bounds(), image.Rect(0, 0, 3, 4))
	ttesting.AssertEqualBool(t, "trimmed", tf.Trimmed(), true)
	ttesting.AssertEqualInt(t, "index", tf.Index, 2)
	ttesting.AssertSameImage(t, "content", tf.Image, src.SubImage(image.Rect(2, 3, 5, 7)).(*image.NRGBA))
	ttesting.AssertSameImage(t, "input untouched", src, orig)

	tf.Image.Pix[0] = 0
	ttesting.AssertSameImage(t, "no aliasing", src, orig)
}

func TestTrimDisabled(t *testing.T) {
	src := ttesting.Sprite(6, 6, image.Rect(2, 2, 3, 3), 1)
	tf, err := Trim(frames.Frame{Name: "f", Image: src}, false)
	if err != nil {
		t.Fatalf("Trim: %v", err)
	}
	ttesting.AssertEqualRect(t, "crop", tf.Crop, image.Rect(0, 0, 6, 6))
	ttesting.AssertEqualBool(t, "trimmed", tf.Trimmed(), false)
	ttesting.AssertSameImage(t, "content", tf.Image, src)
}

func TestTrimTransparentFrame(t *testing.T) {
	tf, err := Trim(frames.Frame{Name: "blank", Image: ttesting.Transparent(7, 5)}, true)
	if err != nil {
		t.Fatalf("Trim: %v", err)
	}
	ttesting.AssertEqualBool(t, "placeholder", tf.Placeholder, true)
	ttesting.AssertEqualRect(t, "crop", tf.Crop, image.Rect(0, 0, 1, 1))
	ttesting.AssertEqualPoint(t, "source size", tf.SourceSize, image.Pt(7, 5))
	if _, _, _, a := tf.Image.At(0, 0).RGBA(); a != 0 {
		t.Errorf("placeholder pixel should be transparent")
	}
}

func TestTrimSubImageOrigin(t *testing.T) {
	full := ttesting.Sprite(10, 10, image.Rect(6, 6, 8, 8), 2)
	sub := full.SubImage(image.Rect(5, 5, 10, 10)).(*image.NRGBA)
	tf, err := Trim(frames.Frame{Name: "sub", Image: sub}, true)
	if err != nil {
		t.Fatalf("Trim: %v", err)
	}
	ttesting.AssertEqualRect(t, "crop", tf.Crop, image.Rect(1, 1, 3, 3))
	ttesting.AssertEqualPoint(t, "source size", tf.SourceSize, image.Pt(5, 5))
}

func TestTrimEmpty(t *testing.T) {
	for _, f := range []frames.Frame{
		{Name: "nil"},
		{Name: "zero", Image: image.NewNRGBA(image.Rect(0, 0, 0, 4))},
		{Name: "short", Image: &image.NRGBA{Rect: image.Rect(0, 0, 4, 4), Stride: 16, Pix: make([]byte, 8)}},
	} {
		_, err := Trim(f, true)
		var ee *EmptyFrameError
		if !errors.As(err, &ee) {
			t.Errorf("%s: got %v; want EmptyFrameError", f.Name, err)
		}
	}
}
