package frames

import (
	"image"
	"image/draw"
	"image/gif"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// GIFSource holds the coalesced frames of an animated GIF.
//
// A GIF frame is only a patch over the previous state of the logical
// screen. GIFSource replays every patch together with its disposal method so
// each frame it returns is the full picture a viewer would show at that
// point of the timeline.
type GIFSource struct {
	path   string
	frames []*image.NRGBA
	delays []int
}

// OpenGIF reads and decodes the animated GIF at path.
func OpenGIF(path string) (*GIFSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Frame: -1, Err: errors.Wrap(err, "opening gif")}
	}
	defer f.Close()
	return NewGIFSource(f, path)
}

// NewGIFSource decodes an animated GIF from r. The path is only used in
// error messages and logs.
func NewGIFSource(r io.Reader, path string) (*GIFSource, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, &DecodeError{Path: path, Frame: -1, Err: err}
	}
	if len(g.Image) == 0 {
		return nil, &DecodeError{Path: path, Frame: -1, Err: ErrNoFrames}
	}

	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		for _, pm := range g.Image {
			screen = screen.Union(pm.Bounds())
		}
		screen = image.Rect(0, 0, screen.Max.X, screen.Max.Y)
	}

	s := &GIFSource{
		path:   path,
		frames: make([]*image.NRGBA, 0, len(g.Image)),
		delays: make([]int, 0, len(g.Image)),
	}
	canvas := image.NewNRGBA(screen)
	for i, pm := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var saved *image.NRGBA
		if disposal == gif.DisposalPrevious {
			saved = Clone(canvas)
		}

		draw.Draw(canvas, pm.Bounds(), pm, pm.Bounds().Min, draw.Over)
		s.frames = append(s.frames, Clone(canvas))
		if i < len(g.Delay) {
			s.delays = append(s.delays, g.Delay[i])
		} else {
			s.delays = append(s.delays, 0)
		}

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, pm.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = saved
		}
	}
	glog.V(1).Infof("decoded %s: %d frames, %dx%d", path, len(s.frames), screen.Dx(), screen.Dy())
	return s, nil
}

func (s *GIFSource) FrameCount() int { return len(s.frames) }

func (s *GIFSource) Frame(i int) (image.Image, error) {
	if i < 0 || i >= len(s.frames) {
		return nil, &DecodeError{Path: s.path, Frame: i, Err: errors.New("frame index out of range")}
	}
	return s.frames[i], nil
}

// Delay returns the display time of frame i in hundredths of a second.
func (s *GIFSource) Delay(i int) int {
	if i < 0 || i >= len(s.delays) {
		return 0
	}
	return s.delays[i]
}

func (s *GIFSource) Close() error {
	s.frames = nil
	return nil
}
