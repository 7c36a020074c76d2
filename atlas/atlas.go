// Package atlas runs the texture atlas pipeline for one animation: load
// frames, trim them, pack them onto pages, composite the pages, and describe
// the result in spritesheet documents.
//
// A pipeline run shares no mutable state with other runs, so any number of
// animations can be processed in parallel. Writing results to disk is left
// to the caller (see package sink).
package atlas

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"badc0de.net/pkg/spriteatlas/compositor"
	"badc0de.net/pkg/spriteatlas/frames"
	"badc0de.net/pkg/spriteatlas/packer"
	"badc0de.net/pkg/spriteatlas/sheet"
	"badc0de.net/pkg/spriteatlas/trim"
)

// PageImage is one composited atlas page.
type PageImage struct {
	Index int
	// Name is the PNG file name.
	Name  string
	Image *image.NRGBA
}

// Document is one exported spritesheet.
type Document struct {
	// Name is the file name, with extension.
	Name string
	Data []byte
}

// Stats summarizes a run for logs and reports.
type Stats struct {
	Frames      int
	Pages       int
	Placeholder int
	Utilization float64

	Load      time.Duration
	Trim      time.Duration
	Pack      time.Duration
	Composite time.Duration
	Export    time.Duration
}

// Result is everything a pipeline run produced.
type Result struct {
	Name    string
	Pages   []PageImage
	Sheets  []Document
	Entries []sheet.Entry
	Plan    *packer.Plan
	Stats   Stats
}

// Files lists the output file names: pages first, then sheets.
func (r *Result) Files() []string {
	var out []string
	for _, p := range r.Pages {
		out = append(out, p.Name)
	}
	for _, d := range r.Sheets {
		out = append(out, d.Name)
	}
	return out
}

// PageFileName returns the PNG file name of page idx out of count.
func PageFileName(base string, idx, count int) string {
	return sheet.PageBase(base, idx, count) + ".png"
}

// Run executes the pipeline over src. name is the base name of every output
// file. The frame store backing the run is released before Run returns,
// whatever the outcome.
func Run(ctx context.Context, cfg Config, name string, src frames.Source) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	exporter, err := sheet.Lookup(cfg.Format)
	if err != nil {
		return nil, err
	}

	store, err := frames.NewStore(cfg.TempDir, cfg.SpillFrames)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := store.Release(); rerr != nil {
			glog.Warningf("%s: releasing frames: %v", name, rerr)
		}
	}()

	res := &Result{Name: name}
	stage := func(d *time.Duration, what string) func() {
		start := time.Now()
		return func() {
			*d = time.Since(start)
			glog.V(1).Infof("%s: %s took %v", name, what, *d)
		}
	}

	done := stage(&res.Stats.Load, "load")
	if err := frames.Load(ctx, src, store, cfg.FrameNameFormat, name); err != nil {
		return nil, err
	}
	done()
	res.Stats.Frames = store.Len()

	done = stage(&res.Stats.Trim, "trim")
	trimmed, err := trimAll(ctx, cfg, store)
	if err != nil {
		return nil, err
	}
	done()
	if err := checkNames(trimmed); err != nil {
		return nil, err
	}

	done = stage(&res.Stats.Pack, "pack")
	items := make([]packer.Item, len(trimmed))
	for i, t := range trimmed {
		sz := t.Size()
		items[i] = packer.Item{Index: i, Width: sz.X, Height: sz.Y}
		if t.Placeholder {
			res.Stats.Placeholder++
		}
	}
	plan, err := packer.Pack(items, cfg.PackOptions())
	if err != nil {
		var oe *packer.OversizedFrameError
		if errors.As(err, &oe) {
			glog.Errorf("%s: frame %q does not fit a %dx%d page", name, trimmed[oe.Index].Name, cfg.PageWidth, cfg.PageHeight)
		}
		return nil, err
	}
	if glog.V(2) {
		if verr := plan.Validate(); verr != nil {
			return nil, errors.Wrap(verr, "packer produced an invalid plan")
		}
	}
	done()
	res.Plan = plan
	res.Stats.Pages = len(plan.Pages)
	res.Stats.Utilization = plan.Utilization()
	for _, p := range plan.Pages {
		if p.Width > cfg.PageWidth || p.Height > cfg.PageHeight {
			glog.Warningf("%s: page %d rounded up to %dx%d, past the configured %dx%d", name, p.Index, p.Width, p.Height, cfg.PageWidth, cfg.PageHeight)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done = stage(&res.Stats.Composite, "composite")
	if res.Pages, err = compositeAll(ctx, cfg, name, plan, trimmed); err != nil {
		return nil, err
	}
	done()

	done = stage(&res.Stats.Export, "export")
	res.Entries = entries(cfg, plan, trimmed)
	pages := make([]sheet.Page, len(res.Pages))
	for i, p := range res.Pages {
		pages[i] = sheet.Page{Index: p.Index, Image: p.Name, Width: plan.Pages[i].Width, Height: plan.Pages[i].Height}
	}
	sheets, err := sheet.Build(name, exporter.Ext(), pages, res.Entries, cfg.SheetMode)
	if err != nil {
		return nil, err
	}
	for _, s := range sheets {
		data, err := exporter.Export(s)
		if err != nil {
			return nil, errors.Wrapf(err, "exporting %s", s.Name)
		}
		res.Sheets = append(res.Sheets, Document{Name: s.Name + exporter.Ext(), Data: data})
	}
	done()

	glog.Infof("%s: packed %d frames onto %d page(s), %.1f%% used", name, res.Stats.Frames, res.Stats.Pages, 100*res.Stats.Utilization)
	return res, nil
}

func trimAll(ctx context.Context, cfg Config, store *frames.Store) ([]*trim.Frame, error) {
	out := make([]*trim.Frame, store.Len())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())
	for i := range out {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := store.Frame(i)
			if err != nil {
				return err
			}
			t, err := trim.Trim(f, cfg.Trim)
			if err != nil {
				return err
			}
			out[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func checkNames(trimmed []*trim.Frame) error {
	seen := make(map[string]int, len(trimmed))
	for i, t := range trimmed {
		if j, ok := seen[t.Name]; ok {
			return &ConfigurationError{Field: "frame name format", Reason: fmt.Sprintf("frames %d and %d are both named %q", j, i, t.Name)}
		}
		seen[t.Name] = i
	}
	return nil
}

func compositeAll(ctx context.Context, cfg Config, name string, plan *packer.Plan, trimmed []*trim.Frame) ([]PageImage, error) {
	out := make([]PageImage, len(plan.Pages))
	sprite := func(i int) *image.NRGBA { return trimmed[i].Image }
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())
	for i, p := range plan.Pages {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = PageImage{
				Index: p.Index,
				Name:  PageFileName(name, p.Index, len(plan.Pages)),
				Image: compositor.CompositePage(p, sprite, cfg.PackOptions().Margin(), cfg.Extrude),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func entries(cfg Config, plan *packer.Plan, trimmed []*trim.Frame) []sheet.Entry {
	margin := cfg.PackOptions().Margin()
	out := make([]sheet.Entry, len(trimmed))
	for i, t := range trimmed {
		p := plan.Placements[i]
		out[i] = sheet.Entry{
			Name:         t.Name,
			Index:        t.Index,
			Page:         p.Page,
			Frame:        p.Content(margin),
			Rotated:      p.Rotated,
			Trimmed:      t.Trimmed(),
			SpriteSource: t.Crop,
			SourceSize:   t.SourceSize,
		}
	}
	return out
}
