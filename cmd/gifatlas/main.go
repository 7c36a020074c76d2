// Command gifatlas packs the frames of animated GIFs (or directories of
// frame images) into texture atlas pages with spritesheet metadata.
//
//	gifatlas [flags] walk.gif run.gif sprites/*.gif
//
// Every animation is packed independently; by default its pages and sheets
// are written next to the input.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"

	"badc0de.net/pkg/spriteatlas/atlas"
	"badc0de.net/pkg/spriteatlas/frames"
	"badc0de.net/pkg/spriteatlas/imageprint"
	"badc0de.net/pkg/spriteatlas/paths"
	"badc0de.net/pkg/spriteatlas/sink"
)

var (
	outDir  = flag.String("out", "", "output directory; empty writes next to each input")
	preview = flag.String("preview", "", "print every page to the terminal: auto, 24bit, 256, ascii or iterm")

	pipelineFlags = atlas.RegisterFlags(flag.CommandLine)
)

func publish(ctx context.Context, job atlas.Job, res *atlas.Result) error {
	return sink.Publish(ctx, job.OutDir, res)
}

func report(r atlas.JobResult) {
	if r.Err != nil {
		fmt.Printf("%s: FAILED: %v\n", r.Job.Path, r.Err)
		return
	}
	s := r.Result.Stats
	fmt.Printf("%s: %d frames on %d page(s), %.1f%% used -> %s: %s\n",
		r.Job.Path, s.Frames, s.Pages, 100*s.Utilization, r.Job.OutDir, strings.Join(r.Result.Files(), ", "))

	if *preview == "" {
		return
	}
	for _, p := range r.Result.Pages {
		fmt.Println(p.Name)
		if err := imageprint.Preview(os.Stdout, p.Image, p.Name, imageprint.Mode(*preview)); err != nil {
			glog.Warningf("previewing %s: %v", p.Name, err)
		}
	}
}

func run() int {
	cfg, err := pipelineFlags.Config(flag.CommandLine)
	if err != nil {
		glog.Errorf("%v", err)
		return 1
	}

	inputs, err := paths.Animations(flag.Args())
	if err != nil {
		glog.Errorf("%v", err)
		return 1
	}

	jobs := make([]atlas.Job, len(inputs))
	outputs := make(map[string]string, len(inputs))
	for i, in := range inputs {
		jobs[i] = atlas.Job{
			Path:   in,
			Name:   paths.BaseName(in),
			OutDir: paths.OutputDir(in, *outDir),
			Config: cfg,
		}
		key := filepath.Join(jobs[i].OutDir, jobs[i].Name)
		if prev, ok := outputs[key]; ok {
			glog.Errorf("%s and %s would both write %s.*", prev, in, key)
			return 1
		}
		outputs[key] = in
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results := atlas.RunAll(ctx, jobs, frames.Open, publish)
	for _, r := range results {
		report(r)
	}
	if n := atlas.Failed(results); n > 0 {
		glog.Errorf("%d of %d animation(s) failed", n, len(results))
		return 1
	}
	return 0
}

func main() {
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	code := run()
	glog.Flush()
	os.Exit(code)
}
