package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestAnimations(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "walk.gif"))
	touch(t, filepath.Join(root, "run.GIF"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "pack", "b10.gif"))
	touch(t, filepath.Join(root, "pack", "b9.gif"))
	touch(t, filepath.Join(root, "seq", "frame-1.png"))
	touch(t, filepath.Join(root, "seq", "frame-2.png"))

	got, err := Animations([]string{
		filepath.Join(root, "walk.gif"),
		filepath.Join(root, "notes.txt"),
		filepath.Join(root, "*.GIF"),
		filepath.Join(root, "pack"),
		filepath.Join(root, "seq"),
		filepath.Join(root, "walk.gif"),
	})
	if err != nil {
		t.Fatalf("Animations: %v", err)
	}
	var rel []string
	for _, p := range got {
		r, _ := filepath.Rel(root, p)
		rel = append(rel, r)
	}
	want := strings.Join([]string{"walk.gif", "run.GIF", "pack/b9.gif", "pack/b10.gif", "seq"}, " ")
	if strings.Join(rel, " ") != want {
		t.Errorf("got %v; want %s", rel, want)
	}
}

func TestAnimationsNone(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.txt"))
	if _, err := Animations([]string{filepath.Join(root, "a.txt")}); !errors.Is(err, ErrNoAnimations) {
		t.Errorf("got %v; want ErrNoAnimations", err)
	}
	if _, err := Animations(nil); !errors.Is(err, ErrNoAnimations) {
		t.Errorf("got %v; want ErrNoAnimations", err)
	}
}

func TestAnimationsKeepsUnreadableInputs(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "walk.gif")
	missing := filepath.Join(root, "missing.gif")
	touch(t, good)

	for _, tc := range []struct {
		name string
		args []string
		want []string
	}{
		{"missing last", []string{good, missing}, []string{good, missing}},
		{"missing first", []string{missing, good}, []string{missing, good}},
		{"only missing", []string{missing}, []string{missing}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Animations(tc.args)
			if err != nil {
				t.Fatalf("Animations: %v", err)
			}
			if strings.Join(got, " ") != strings.Join(tc.want, " ") {
				t.Errorf("got %v; want %v", got, tc.want)
			}
		})
	}
}

func TestOutputDir(t *testing.T) {
	for _, tc := range []struct{ in, out, want string }{
		{"anims/walk.gif", "", "anims"},
		{"walk.gif", "", "."},
		{"anims/walk.gif", "build", "build"},
		{"anims/seq/", "", "anims"},
	} {
		if got := OutputDir(tc.in, tc.out); got != tc.want {
			t.Errorf("OutputDir(%q, %q) = %q; want %q", tc.in, tc.out, got, tc.want)
		}
	}
}

func TestBaseName(t *testing.T) {
	for in, want := range map[string]string{
		"anims/walk.gif": "walk",
		"run.GIF":        "run",
		"anims/seq/":     "seq",
		"a.b.gif":        "a.b",
	} {
		if got := BaseName(in); got != want {
			t.Errorf("BaseName(%q) = %q; want %q", in, got, want)
		}
	}
}
