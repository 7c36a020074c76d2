package atlas

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"badc0de.net/pkg/spriteatlas/sheet"
	"badc0de.net/pkg/spriteatlas/ttesting"
)

func parseFlags(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return f.Config(fs)
}

func TestFlagsDefaults(t *testing.T) {
	cfg, err := parseFlags(t)
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("got %+v, want defaults %+v", cfg, DefaultConfig())
	}
}

func TestFlagsOverride(t *testing.T) {
	cfg, err := parseFlags(t, "-size=512", "-padding=0", "-rotate", "-single_sheet", "-format=plist", "-trim=false")
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	ttesting.AssertEqualInt(t, "width", cfg.PageWidth, 512)
	ttesting.AssertEqualInt(t, "height", cfg.PageHeight, 512)
	ttesting.AssertEqualInt(t, "padding", cfg.Padding, 0)
	ttesting.AssertEqualBool(t, "rotation", cfg.AllowRotation, true)
	ttesting.AssertEqualBool(t, "trim", cfg.Trim, false)
	ttesting.AssertEqualBool(t, "single sheet", cfg.SheetMode == sheet.Single, true)
	if cfg.Format != "plist" {
		t.Errorf("format = %q", cfg.Format)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.yaml")
	if err := os.WriteFile(path, []byte("page_width: 256\npage_height: 128\npadding: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := parseFlags(t, "-config="+path, "-padding=2")
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	ttesting.AssertEqualInt(t, "width from file", cfg.PageWidth, 256)
	ttesting.AssertEqualInt(t, "height from file", cfg.PageHeight, 128)
	ttesting.AssertEqualInt(t, "padding from flag", cfg.Padding, 2)
	ttesting.AssertEqualInt(t, "extrude default", cfg.Extrude, 1)
}

func TestFlagsInvalid(t *testing.T) {
	_, err := parseFlags(t, "-size=0")
	var ce *ConfigurationError
	if !errors.As(err, &ce) || ce.Field != "page size" {
		t.Errorf("got %v, want a page size ConfigurationError", err)
	}
}
