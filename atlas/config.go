package atlas

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"badc0de.net/pkg/spriteatlas/frames"
	"badc0de.net/pkg/spriteatlas/packer"
	"badc0de.net/pkg/spriteatlas/sheet"
)

// frameVerb matches the integer verb of a frame name format, with optional
// flags and width as in "%03d".
var frameVerb = regexp.MustCompile(`%[-+ #0]*[0-9]*d`)

// MaxPageSize bounds page dimensions; larger textures are not loadable on
// common GPUs.
const MaxPageSize = 16384

// Config parameterizes one pipeline run. The zero value is not valid; start
// from DefaultConfig.
type Config struct {
	PageWidth     int  `yaml:"page_width" toml:"page_width"`
	PageHeight    int  `yaml:"page_height" toml:"page_height"`
	Padding       int  `yaml:"padding" toml:"padding"`
	Extrude       int  `yaml:"extrude" toml:"extrude"`
	PowerOfTwo    bool `yaml:"power_of_two" toml:"power_of_two"`
	AllowRotation bool `yaml:"allow_rotation" toml:"allow_rotation"`
	Trim          bool `yaml:"trim" toml:"trim"`

	// Format is a registered sheet format name.
	Format    string     `yaml:"format" toml:"format"`
	SheetMode sheet.Mode `yaml:"sheet_mode" toml:"sheet_mode"`

	// FrameNameFormat is a printf format with one integer verb ("%d" or a
	// padded form such as "%03d"), given the frame index. Empty uses the source's own frame names where it has them.
	FrameNameFormat string `yaml:"frame_name_format" toml:"frame_name_format"`

	// Workers bounds parallel trimming and compositing; 0 means GOMAXPROCS.
	Workers int `yaml:"workers" toml:"workers"`

	// SpillFrames keeps decoded frames on disk under TempDir instead of in
	// memory.
	SpillFrames bool   `yaml:"spill_frames" toml:"spill_frames"`
	TempDir     string `yaml:"temp_dir" toml:"temp_dir"`
}

// DefaultConfig returns the settings the command line tool starts from.
func DefaultConfig() Config {
	return Config{
		PageWidth:       1024,
		PageHeight:      1024,
		Padding:         1,
		Extrude:         1,
		PowerOfTwo:      true,
		Trim:            true,
		Format:          sheet.DefaultFormat,
		SheetMode:       sheet.PerPage,
		FrameNameFormat: frames.DefaultNameFormat,
	}
}

// ConfigurationError reports an invalid Config field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Validate checks every field and returns the first problem found as a
// *ConfigurationError.
func (c Config) Validate() error {
	switch {
	case c.PageWidth <= 0 || c.PageHeight <= 0:
		return &ConfigurationError{Field: "page size", Reason: fmt.Sprintf("%dx%d is not positive", c.PageWidth, c.PageHeight)}
	case c.PageWidth > MaxPageSize || c.PageHeight > MaxPageSize:
		return &ConfigurationError{Field: "page size", Reason: fmt.Sprintf("%dx%d exceeds %d", c.PageWidth, c.PageHeight, MaxPageSize)}
	case c.Padding < 0:
		return &ConfigurationError{Field: "padding", Reason: "must not be negative"}
	case c.Extrude < 0:
		return &ConfigurationError{Field: "extrude", Reason: "must not be negative"}
	case c.Workers < 0:
		return &ConfigurationError{Field: "workers", Reason: "must not be negative"}
	case !c.SheetMode.Valid():
		return &ConfigurationError{Field: "sheet mode", Reason: fmt.Sprintf("%q is not %q or %q", c.SheetMode, sheet.PerPage, sheet.Single)}
	}
	if _, err := sheet.Lookup(c.Format); err != nil {
		return &ConfigurationError{Field: "format", Reason: fmt.Sprintf("%q is not one of %s", c.Format, strings.Join(sheet.Formats(), ", "))}
	}
	if f := c.FrameNameFormat; f != "" && !validFrameNameFormat(f) {
		return &ConfigurationError{Field: "frame name format", Reason: fmt.Sprintf("%q must contain exactly one integer verb such as %%d and no other verbs", f)}
	}
	return nil
}

// PackOptions derives the packer settings.
func (c Config) PackOptions() packer.Options {
	return packer.Options{
		MaxWidth:      c.PageWidth,
		MaxHeight:     c.PageHeight,
		Padding:       c.Padding,
		Extrude:       c.Extrude,
		PowerOfTwo:    c.PowerOfTwo,
		AllowRotation: c.AllowRotation,
	}
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// LoadConfigFile overlays the settings in a YAML (.yaml, .yml) or TOML
// (.toml) file onto base. Keys missing from the file keep base's values.
func LoadConfigFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, errors.Wrap(err, "reading config file")
	}
	cfg := base
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return base, &ConfigurationError{Field: "config file", Reason: fmt.Sprintf("%s: %v", path, err)}
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return base, &ConfigurationError{Field: "config file", Reason: fmt.Sprintf("%s: %v", path, err)}
		}
	default:
		return base, &ConfigurationError{Field: "config file", Reason: fmt.Sprintf("%s: unsupported extension %q", path, ext)}
	}
	return cfg, nil
}

func validFrameNameFormat(f string) bool {
	f = strings.ReplaceAll(f, "%%", "")
	if len(frameVerb.FindAllString(f, -1)) != 1 {
		return false
	}
	return !strings.Contains(frameVerb.ReplaceAllString(f, ""), "%")
}
