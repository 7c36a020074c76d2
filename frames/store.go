package frames

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// DefaultNameFormat names frames the way the extracted frame files were
// historically named.
const DefaultNameFormat = "frame-%d.png"

// Store owns the frames of one pipeline run.
//
// An in-memory store keeps every buffer. A spilling store writes each frame
// as a PNG into a private temporary directory and decodes it again on
// demand, which bounds memory for long animations. Release must be called
// on every exit path; it is idempotent.
type Store struct {
	mu       sync.Mutex
	dir      string
	names    []string
	images   []*image.NRGBA
	released bool
}

// NewStore creates an empty store. With spill set, frame buffers are kept in
// a new directory under tempRoot (os.TempDir() when empty).
func NewStore(tempRoot string, spill bool) (*Store, error) {
	s := &Store{}
	if spill {
		dir, err := os.MkdirTemp(tempRoot, "spriteatlas-frames-")
		if err != nil {
			return nil, errors.Wrap(err, "creating frame spill directory")
		}
		s.dir = dir
		glog.V(1).Infof("spilling frames to %s", dir)
	}
	return s, nil
}

// Dir returns the spill directory, or "" for an in-memory store.
func (s *Store) Dir() string { return s.dir }

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.names)
}

// Add appends a frame. The store keeps its own copy of img.
func (s *Store) Add(name string, img image.Image) error {
	buf := ToNRGBA(img)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return errors.New("frame store already released")
	}
	idx := len(s.names)
	if s.dir != "" {
		if err := writePNG(s.spillPath(idx), buf); err != nil {
			return errors.Wrapf(err, "spilling frame %d", idx)
		}
		buf = nil
	}
	s.names = append(s.names, name)
	s.images = append(s.images, buf)
	return nil
}

// Frame returns frame i. The buffer belongs to the store for in-memory
// stores and must not be modified by the caller.
func (s *Store) Frame(i int) (Frame, error) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return Frame{}, errors.New("frame store already released")
	}
	if i < 0 || i >= len(s.names) {
		s.mu.Unlock()
		return Frame{}, errors.Errorf("frame %d out of range [0,%d)", i, len(s.names))
	}
	name, img := s.names[i], s.images[i]
	s.mu.Unlock()

	if img == nil {
		var err error
		if img, err = readPNG(s.spillPath(i)); err != nil {
			return Frame{}, errors.Wrapf(err, "reading spilled frame %d", i)
		}
	}
	return Frame{Name: name, Index: i, Image: img}, nil
}

// Release drops every buffer and removes the spill directory.
func (s *Store) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil
	}
	s.released = true
	s.images = nil
	if s.dir == "" {
		return nil
	}
	glog.V(1).Infof("removing frame spill directory %s", s.dir)
	return errors.Wrap(os.RemoveAll(s.dir), "removing frame spill directory")
}

func (s *Store) spillPath(i int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%06d.png", i))
}

func writePNG(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readPNG(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}
	return ToNRGBA(img), nil
}

// FrameName formats the name of frame i. An empty format uses the source's
// own names when it has them, and DefaultNameFormat otherwise.
func FrameName(src Source, format string, i int) string {
	if format == "" {
		if n, ok := src.(Namer); ok {
			return n.FrameName(i)
		}
		format = DefaultNameFormat
	}
	return fmt.Sprintf(format, i)
}

// Load copies every frame of src into the store, in timeline order.
func Load(ctx context.Context, src Source, store *Store, nameFormat string, path string) error {
	n := src.FrameCount()
	if n == 0 {
		return &DecodeError{Path: path, Frame: -1, Err: ErrNoFrames}
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := src.Frame(i)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				return err
			}
			return &DecodeError{Path: path, Frame: i, Err: err}
		}
		if err := store.Add(FrameName(src, nameFormat, i), img); err != nil {
			return err
		}
	}
	glog.V(1).Infof("loaded %d frames from %s", n, path)
	return nil
}
