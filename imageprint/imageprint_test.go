package imageprint

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"badc0de.net/pkg/spriteatlas/ttesting"
)

func TestPrintNoColor(t *testing.T) {
	img := ttesting.Transparent(3, 2)
	img.SetNRGBA(0, 0, color.NRGBA{0xff, 0xff, 0xff, 0xff})
	img.SetNRGBA(1, 0, color.NRGBA{0x10, 0x10, 0x10, 0xff})
	img.SetNRGBA(2, 1, color.NRGBA{0x80, 0x80, 0x80, 0xff})

	var buf bytes.Buffer
	PrintNoColor(&buf, img, false)
	want := "##..  \n    ##\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestPrint24bitResetsEachRow(t *testing.T) {
	var buf bytes.Buffer
	Print24bit(&buf, ttesting.Solid(2, 3, color.NRGBA{1, 2, 3, 0xff}), true)
	rows := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	ttesting.AssertEqualInt(t, "rows", len(rows), 3)
	for _, r := range rows {
		if !strings.HasPrefix(r, "\x1b[48;2;1;2;3m") || !strings.HasSuffix(r, "\x1b[0m") {
			t.Errorf("unexpected row %q", r)
		}
	}
}

func TestFit(t *testing.T) {
	img := ttesting.Solid(200, 100, color.NRGBA{A: 0xff})

	got := Fit(img, TermSize{WSRow: 25, WSCol: 80}, false)
	ttesting.AssertEqualPoint(t, "cells", got.Bounds().Size(), image.Pt(40, 20))

	got = Fit(img, TermSize{WSRow: 25, WSCol: 80, WSXPixel: 800, WSYPixel: 600}, true)
	ttesting.AssertEqualPoint(t, "pixels", got.Bounds().Size(), image.Pt(200, 100))

	got = Fit(img, TermSize{}, false)
	ttesting.AssertEqualPoint(t, "unknown size", got.Bounds().Size(), image.Pt(200, 100))
}

func TestPreviewUnknownMode(t *testing.T) {
	var buf bytes.Buffer
	if err := Preview(&buf, ttesting.Transparent(1, 1), "x.png", Mode("sepia")); err == nil {
		t.Error("expected an error for an unknown mode")
	}
}
