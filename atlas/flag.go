package atlas

import (
	"flag"
	"strings"

	"badc0de.net/pkg/spriteatlas/sheet"
)

// Flags are the command line switches of the pipeline. Register them with
// RegisterFlags, parse, then resolve them into a Config.
type Flags struct {
	configPath  string
	size        int
	padding     int
	extrude     int
	pot         bool
	trim        bool
	rotate      bool
	format      string
	singleSheet bool
	frameNames  string
	workers     int
	spill       bool
	tempDir     string
}

// RegisterFlags defines the pipeline flags on fs, with DefaultConfig's
// values as defaults.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	d := DefaultConfig()
	f := &Flags{}
	fs.StringVar(&f.configPath, "config", "", "YAML (.yaml, .yml) or TOML (.toml) file with pipeline settings; flags given explicitly override it")
	fs.IntVar(&f.size, "size", d.PageWidth, "maximum width and height of an atlas page")
	fs.IntVar(&f.padding, "padding", d.Padding, "transparent pixels kept between sprites")
	fs.IntVar(&f.extrude, "extrude", d.Extrude, "pixels of each sprite's edge repeated around it")
	fs.BoolVar(&f.pot, "pot", d.PowerOfTwo, "round page dimensions up to powers of two")
	fs.BoolVar(&f.trim, "trim", d.Trim, "crop transparent borders off frames")
	fs.BoolVar(&f.rotate, "rotate", d.AllowRotation, "allow sprites to be rotated 90 degrees when that packs better")
	fs.StringVar(&f.format, "format", d.Format, "spritesheet format: "+strings.Join(sheet.Formats(), ", "))
	fs.BoolVar(&f.singleSheet, "single_sheet", d.SheetMode == sheet.Single, "write one spritesheet covering all pages instead of one per page")
	fs.StringVar(&f.frameNames, "frame_names", d.FrameNameFormat, "printf format naming frames by index; empty keeps the input's file names")
	fs.IntVar(&f.workers, "workers", d.Workers, "parallel trim and composite workers per animation; 0 means one per CPU")
	fs.BoolVar(&f.spill, "spill_frames", d.SpillFrames, "keep decoded frames in a temporary directory instead of memory")
	fs.StringVar(&f.tempDir, "temp_dir", d.TempDir, "where spilled frames go; empty means the system default")
	return f
}

// Config resolves parsed flags: defaults, then the config file if any, then
// every flag set explicitly on fs.
func (f *Flags) Config(fs *flag.FlagSet) (Config, error) {
	cfg := DefaultConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = LoadConfigFile(f.configPath, cfg); err != nil {
			return cfg, err
		}
	}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "size":
			cfg.PageWidth, cfg.PageHeight = f.size, f.size
		case "padding":
			cfg.Padding = f.padding
		case "extrude":
			cfg.Extrude = f.extrude
		case "pot":
			cfg.PowerOfTwo = f.pot
		case "trim":
			cfg.Trim = f.trim
		case "rotate":
			cfg.AllowRotation = f.rotate
		case "format":
			cfg.Format = f.format
		case "single_sheet":
			cfg.SheetMode = sheet.PerPage
			if f.singleSheet {
				cfg.SheetMode = sheet.Single
			}
		case "frame_names":
			cfg.FrameNameFormat = f.frameNames
		case "workers":
			cfg.Workers = f.workers
		case "spill_frames":
			cfg.SpillFrames = f.spill
		case "temp_dir":
			cfg.TempDir = f.tempDir
		}
	})
	return cfg, cfg.Validate()
}
