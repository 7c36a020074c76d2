package atlas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"badc0de.net/pkg/spriteatlas/sheet"
	"badc0de.net/pkg/spriteatlas/ttesting"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	ttesting.AssertEqualInt(t, "size", cfg.PageWidth, 1024)
	ttesting.AssertEqualInt(t, "extrude", cfg.Extrude, 1)
	ttesting.AssertEqualBool(t, "pot", cfg.PowerOfTwo, true)
	ttesting.AssertEqualBool(t, "trim", cfg.Trim, true)
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		field string
		mod   func(*Config)
	}{
		{"page size", func(c *Config) { c.PageWidth = 0 }},
		{"page size", func(c *Config) { c.PageHeight = -4 }},
		{"page size", func(c *Config) { c.PageWidth = MaxPageSize + 1 }},
		{"padding", func(c *Config) { c.Padding = -1 }},
		{"extrude", func(c *Config) { c.Extrude = -1 }},
		{"workers", func(c *Config) { c.Workers = -2 }},
		{"sheet mode", func(c *Config) { c.SheetMode = "both" }},
		{"format", func(c *Config) { c.Format = "csv" }},
		{"frame name format", func(c *Config) { c.FrameNameFormat = "frame.png" }},
		{"frame name format", func(c *Config) { c.FrameNameFormat = "%s-%d.png" }},
		{"frame name format", func(c *Config) { c.FrameNameFormat = "%d-%03d.png" }},
		{"frame name format", func(c *Config) { c.FrameNameFormat = "%%d.png" }},
		{"frame name format", func(c *Config) { c.FrameNameFormat = "%x.png" }},
	} {
		cfg := DefaultConfig()
		tc.mod(&cfg)
		err := cfg.Validate()
		var ce *ConfigurationError
		if !errors.As(err, &ce) {
			t.Errorf("%s: got %v; want ConfigurationError", tc.field, err)
			continue
		}
		if ce.Field != tc.field {
			t.Errorf("got field %q; want %q", ce.Field, tc.field)
		}
	}
}

func TestFrameNameFormats(t *testing.T) {
	for _, tc := range []struct {
		format string
		valid  bool
	}{
		{"frame-%d.png", true},
		{"frame-%03d.png", true},
		{"%-4d", true},
		{"%+d", true},
		{"100%%-%02d", true},
		{"frame.png", false},
		{"%s.png", false},
		{"%d-%d", false},
		{"%03d-%v", false},
	} {
		t.Run(tc.format, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.FrameNameFormat = tc.format
			err := cfg.Validate()
			ttesting.AssertEqualBool(t, "valid", err == nil, tc.valid)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "atlas.yaml")
	os.WriteFile(yml, []byte("page_width: 512\nallow_rotation: true\nsheet_mode: single\nformat: plist\n"), 0644)
	tml := filepath.Join(dir, "atlas.toml")
	os.WriteFile(tml, []byte("page_height = 256\npadding = 4\ntrim = false\n"), 0644)

	cfg, err := LoadConfigFile(yml, DefaultConfig())
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	ttesting.AssertEqualInt(t, "yaml width", cfg.PageWidth, 512)
	ttesting.AssertEqualInt(t, "yaml height kept", cfg.PageHeight, 1024)
	ttesting.AssertEqualBool(t, "yaml rotation", cfg.AllowRotation, true)
	if cfg.SheetMode != sheet.Single || cfg.Format != "plist" {
		t.Errorf("yaml: mode %q format %q", cfg.SheetMode, cfg.Format)
	}

	cfg, err = LoadConfigFile(tml, cfg)
	if err != nil {
		t.Fatalf("toml: %v", err)
	}
	ttesting.AssertEqualInt(t, "toml width kept", cfg.PageWidth, 512)
	ttesting.AssertEqualInt(t, "toml height", cfg.PageHeight, 256)
	ttesting.AssertEqualInt(t, "toml padding", cfg.Padding, 4)
	ttesting.AssertEqualBool(t, "toml trim", cfg.Trim, false)

	ini := filepath.Join(dir, "atlas.ini")
	os.WriteFile(ini, []byte("x=1"), 0644)
	var ce *ConfigurationError
	if _, err := LoadConfigFile(ini, DefaultConfig()); !errors.As(err, &ce) {
		t.Errorf("ini: got %v; want ConfigurationError", err)
	}
	if _, err := LoadConfigFile(filepath.Join(dir, "nope.yaml"), DefaultConfig()); err == nil {
		t.Errorf("missing file accepted")
	}
}
