// Package sheet describes where every frame landed in an atlas, and writes
// that description in the spritesheet formats game engines read.
package sheet

import (
	"fmt"
	"image"

	"github.com/pkg/errors"

	"badc0de.net/pkg/spriteatlas/compositor"
	"badc0de.net/pkg/spriteatlas/frames"
)

// App identifies the generator in exported documents.
const (
	App     = "spriteatlas"
	Version = "1.0"
)

// Mode selects how many documents describe a multi-page atlas.
type Mode string

const (
	// PerPage writes one document per page image.
	PerPage Mode = "per-page"
	// Single writes one document covering every page.
	Single Mode = "single"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == PerPage || m == Single
}

// Entry locates one frame.
type Entry struct {
	Name  string
	Index int // position in the animation
	Page  int

	// Frame is the content rectangle on the page, excluding padding and
	// extrusion. For rotated entries it is the rotated rectangle as
	// stored on the page.
	Frame   image.Rectangle
	Rotated bool
	Trimmed bool

	// SpriteSource is where the content sits inside the original frame.
	SpriteSource image.Rectangle
	SourceSize   image.Point
}

// Size is the upright size of the content.
func (e Entry) Size() image.Point {
	if e.Rotated {
		return image.Pt(e.Frame.Dy(), e.Frame.Dx())
	}
	return e.Frame.Size()
}

// Reconstruct rebuilds the full-size original frame from its atlas page.
func (e Entry) Reconstruct(page *image.NRGBA) *image.NRGBA {
	sprite := compositor.Extract(page, e.Frame, e.Rotated)
	out := image.NewNRGBA(image.Rectangle{Max: e.SourceSize})
	frames.Blit(out, e.SpriteSource.Min, sprite, sprite.Bounds())
	return out
}

// Page describes one atlas image.
type Page struct {
	Index  int
	Image  string
	Width  int
	Height int
}

// Sheet is one metadata document.
type Sheet struct {
	// Name is the document's file name without extension.
	Name string
	// Animation names the sequence the frames belong to.
	Animation string
	Pages     []Page
	Entries   []Entry
	// Related lists the file names of the other documents of a
	// multi-document atlas.
	Related []string
}

// MultiPage reports whether entries can refer to more than one page.
func (s *Sheet) MultiPage() bool { return len(s.Pages) > 1 }

// Names returns entry names in order.
func (s *Sheet) Names() []string {
	out := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Name
	}
	return out
}

// PageBase names the files of page idx out of count pages: the base name
// alone for a single page, base-idx otherwise.
func PageBase(base string, idx, count int) string {
	if count <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, idx)
}

// Build groups entries into documents. Entries keep their order within
// each document. ext is the document file extension, used to fill in
// Related.
func Build(base, ext string, pages []Page, entries []Entry, mode Mode) ([]*Sheet, error) {
	if !mode.Valid() {
		return nil, errors.Errorf("unknown sheet mode %q", mode)
	}
	if mode == Single || len(pages) <= 1 {
		return []*Sheet{{
			Name:      base,
			Animation: base,
			Pages:     pages,
			Entries:   entries,
		}}, nil
	}

	sheets := make([]*Sheet, len(pages))
	for i, p := range pages {
		sheets[i] = &Sheet{
			Name:      PageBase(base, p.Index, len(pages)),
			Animation: base,
			Pages:     []Page{p},
		}
	}
	for _, e := range entries {
		if e.Page < 0 || e.Page >= len(sheets) {
			return nil, errors.Errorf("entry %q refers to page %d of %d", e.Name, e.Page, len(pages))
		}
		sheets[e.Page].Entries = append(sheets[e.Page].Entries, e)
	}
	for i, s := range sheets {
		for j, o := range sheets {
			if i != j {
				s.Related = append(s.Related, o.Name+ext)
			}
		}
	}
	return sheets, nil
}
