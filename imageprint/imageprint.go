// Package imageprint previews atlas pages on a terminal.
//
// This package has an API with no stability guarantees.
package imageprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/png"
	"io"

	"github.com/gookit/color"
	"github.com/nfnt/resize"
)

// Mode picks a rendering technique.
type Mode string

const (
	// Auto uses inline graphics where the terminal supports them and
	// 24 bit colour blocks otherwise.
	Auto      Mode = "auto"
	TrueColor Mode = "24bit"
	Color256  Mode = "256"
	NoColor   Mode = "ascii"
	ITerm     Mode = "iterm"
)

func shade(w io.Writer, col ic.Color, escapesTrueColor, blanks, noColor bool) {
	cR, cG, cB, cA := col.RGBA()
	if cA == 0 {
		if noColor {
			fmt.Fprint(w, "  ")
		} else {
			fmt.Fprint(w, "\x1b[0m  ")
		}
		return
	}

	cell := "  "
	if !blanks {
		a := ((cR + cG + cB) / 3) >> 8
		switch {
		case a < 32:
			cell = ".."
		case a < 64:
			cell = "--"
		case a < 128:
			cell = "=="
		default:
			cell = "##"
		}
	}

	switch {
	case noColor:
		fmt.Fprint(w, cell)
	case escapesTrueColor:
		fmt.Fprintf(w, "\x1b[48;2;%d;%d;%dm%s\x1b[0m", uint8(cR>>8), uint8(cG>>8), uint8(cB>>8), cell)
	default:
		fmt.Fprint(w, color.RGB(uint8(cR>>8), uint8(cG>>8), uint8(cB>>8), true).Sprint(cell))
	}
}

func printCells(w io.Writer, i image.Image, trueColor, blanks, noColor bool) {
	b := i.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			shade(w, i.At(x, y), trueColor, blanks, noColor)
		}
		if !noColor {
			fmt.Fprint(w, "\x1b[0m")
		}
		fmt.Fprint(w, "\n")
	}
}

// Print256Color draws an image using 256color'd ascii art.
func Print256Color(w io.Writer, i image.Image, blanks bool) {
	printCells(w, i, false, blanks, false)
}

// Print24bit draws an image using 24bit color escape sequences by changing background.
func Print24bit(w io.Writer, i image.Image, blanks bool) {
	printCells(w, i, true, blanks, false)
}

// PrintNoColor draws an image without using color escape sequences. Only
// makes sense with blanks=false.
func PrintNoColor(w io.Writer, i image.Image, blanks bool) {
	printCells(w, i, false, blanks, true)
}

// PrintITerm draws an image using iTerm2's escape sequences.
//
// https://www.iterm2.com/documentation-images.html
func PrintITerm(w io.Writer, i image.Image, fn string) error {
	name := base64.StdEncoding.EncodeToString([]byte(fn))
	b := &bytes.Buffer{}
	bEnc := base64.NewEncoder(base64.StdEncoding, b)
	if err := png.Encode(bEnc, i); err != nil {
		return err
	}
	bEnc.Close()
	_, err := fmt.Fprintf(w, "\n\033]1337;File=name=%s;inline=1;size=%d;width=%dpx;height=%dpx:%s\a\n", name, b.Len(), i.Bounds().Dx(), i.Bounds().Dy(), b.String())
	return err
}

// Fit shrinks img to the terminal. Inline graphics are measured in pixels,
// character cells in columns (two per pixel) and rows. Images that already
// fit are returned unchanged.
func Fit(img image.Image, ts TermSize, pixels bool) image.Image {
	var maxW, maxH uint
	if pixels && ts.WSXPixel != 0 && ts.WSYPixel != 0 {
		maxW, maxH = ts.WSXPixel, ts.WSYPixel
	} else {
		maxW, maxH = ts.WSCol/2, ts.WSRow
	}
	if maxW == 0 || maxH == 0 {
		return img
	}
	return resize.Thumbnail(maxW, maxH, img, resize.Lanczos3)
}

// Preview prints img in the requested mode, shrunk to the terminal when its
// size is known. name labels inline images.
func Preview(w io.Writer, img image.Image, name string, mode Mode) error {
	ts, err := GetTermSize()
	if err != nil {
		ts = TermSize{WSRow: 25, WSCol: 80}
	}
	switch mode {
	case Auto, "":
		if PrintRasTerm(w, Fit(img, ts, true)) {
			return nil
		}
		Print24bit(w, Fit(img, ts, false), true)
	case ITerm:
		return PrintITerm(w, Fit(img, ts, true), name)
	case TrueColor:
		Print24bit(w, Fit(img, ts, false), true)
	case Color256:
		Print256Color(w, Fit(img, ts, false), true)
	case NoColor:
		PrintNoColor(w, Fit(img, ts, false), false)
	default:
		return fmt.Errorf("unknown preview mode %q", mode)
	}
	return nil
}
