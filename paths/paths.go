// Package paths resolves command line arguments into animation inputs and
// output locations.
package paths

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/spriteatlas/frames"
)

// ErrNoAnimations is returned when the arguments name no usable input.
var ErrNoAnimations = errors.New("no input files")

// IsAnimation reports whether a plain file is an animation input.
func IsAnimation(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".gif")
}

// Animations expands args into animation inputs, in argument order with
// duplicates removed.
//
// An argument may be a .gif file, a glob pattern, or a directory. A
// directory contributes the .gif files directly inside it; a directory with
// no .gif files but with still images is itself one animation (an image
// sequence). Plain files of other types are skipped with a warning. An
// input that cannot be read is kept, so it fails as its own job instead of
// taking the rest of the batch with it.
func Animations(args []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		matches := []string{arg}
		if strings.ContainsAny(arg, "*?[") {
			var err error
			if matches, err = filepath.Glob(arg); err != nil {
				return nil, errors.Wrapf(err, "expanding %q", arg)
			}
			if len(matches) == 0 {
				glog.Warningf("%q matched nothing", arg)
			}
		}
		for _, m := range matches {
			fi, err := os.Stat(m)
			if err != nil {
				glog.Warningf("reading input %q: %v", m, err)
				add(m)
				continue
			}
			if !fi.IsDir() {
				if IsAnimation(m) {
					add(m)
				} else {
					glog.Warningf("skipping %s: not a .gif file", m)
				}
				continue
			}
			gifs, stills, err := scanDir(m)
			if err != nil {
				glog.Warningf("%v", err)
				add(m)
				continue
			}
			switch {
			case len(gifs) > 0:
				for _, g := range gifs {
					add(g)
				}
			case stills > 0:
				add(m)
			default:
				glog.Warningf("skipping %s: no animations or frames inside", m)
			}
		}
	}
	if len(out) == 0 {
		return nil, ErrNoAnimations
	}
	return out, nil
}

func scanDir(dir string) (gifs []string, stills int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "listing %q", dir)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch {
		case IsAnimation(e.Name()):
			gifs = append(gifs, filepath.Join(dir, e.Name()))
		case frames.IsImageFile(e.Name()):
			stills++
		}
	}
	sort.Slice(gifs, func(i, j int) bool { return frames.NaturalLess(gifs[i], gifs[j]) })
	return gifs, stills, nil
}

// OutputDir is where results for input go: out when set, otherwise the
// directory containing input. An image sequence directory is treated like
// a file, so its outputs land next to it rather than inside it.
func OutputDir(input, out string) string {
	if out != "" {
		return out
	}
	return filepath.Dir(filepath.Clean(input))
}

// BaseName is the input's name without directory and extension.
func BaseName(input string) string {
	base := filepath.Base(filepath.Clean(input))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
