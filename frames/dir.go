package frames

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/pkg/errors"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsImageFile reports whether the file name has an extension DirSource can decode.
func IsImageFile(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// DirSource is an image sequence: one still image per frame. Frames are read
// lazily, in natural order of their file names, so "frame-10.png" follows
// "frame-9.png".
type DirSource struct {
	dir   string
	paths []string
}

// OpenDir lists the image files in dir.
func OpenDir(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &DecodeError{Path: dir, Frame: -1, Err: errors.Wrap(err, "listing frames")}
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsImageFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, &DecodeError{Path: dir, Frame: -1, Err: ErrNoFrames}
	}
	sort.SliceStable(paths, func(i, j int) bool {
		return NaturalLess(filepath.Base(paths[i]), filepath.Base(paths[j]))
	})
	return &DirSource{dir: dir, paths: paths}, nil
}

// NewImageSource treats a single still image as a one-frame animation.
func NewImageSource(path string) *DirSource {
	return &DirSource{dir: filepath.Dir(path), paths: []string{path}}
}

func (s *DirSource) FrameCount() int { return len(s.paths) }

func (s *DirSource) FrameName(i int) string {
	return filepath.Base(s.paths[i])
}

func (s *DirSource) Frame(i int) (image.Image, error) {
	if i < 0 || i >= len(s.paths) {
		return nil, &DecodeError{Path: s.dir, Frame: i, Err: errors.New("frame index out of range")}
	}
	f, err := os.Open(s.paths[i])
	if err != nil {
		return nil, &DecodeError{Path: s.paths[i], Frame: i, Err: err}
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: s.paths[i], Frame: i, Err: err}
	}
	return img, nil
}

func (s *DirSource) Close() error { return nil }

// Open picks a source for path: a directory is an image sequence, a .gif is
// an animation, and any other supported image is a single frame.
func Open(path string) (Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Frame: -1, Err: err}
	}
	if fi.IsDir() {
		s, err := OpenDir(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case ext == ".gif":
		s, err := OpenGIF(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case IsImageFile(path):
		return NewImageSource(path), nil
	default:
		return nil, &DecodeError{Path: path, Frame: -1, Err: errors.Errorf("unsupported file type %q", ext)}
	}
}

// NaturalLess compares strings so that runs of digits are ordered by their
// numeric value.
func NaturalLess(a, b string) bool {
	for a != "" && b != "" {
		da, db := isDigit(a[0]), isDigit(b[0])
		switch {
		case da && db:
			na, ra := splitDigits(a)
			nb, rb := splitDigits(b)
			ta, tb := strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0")
			if len(ta) != len(tb) {
				return len(ta) < len(tb)
			}
			if ta != tb {
				return ta < tb
			}
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			a, b = ra, rb
		case a[0] != b[0]:
			return a[0] < b[0]
		default:
			a, b = a[1:], b[1:]
		}
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func splitDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}
