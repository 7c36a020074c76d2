package atlas

import (
	"context"
	"runtime"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"badc0de.net/pkg/spriteatlas/frames"
)

// Job is one animation of a batch.
type Job struct {
	// Path is handed to the Opener.
	Path string
	// Name is the output base name.
	Name string
	// OutDir is where the Publisher should put the files.
	OutDir string
	Config Config
}

// JobResult is the outcome of one Job. Exactly one of Result and Err is set.
type JobResult struct {
	Job    Job
	Result *Result
	Err    error
}

// Opener turns a job path into a frame source.
type Opener func(path string) (frames.Source, error)

// Publisher stores a finished result, typically on disk.
type Publisher func(ctx context.Context, job Job, res *Result) error

// RunAll runs every job independently, in parallel. A failing job does not
// stop the others; results come back in job order. publish may be nil.
func RunAll(ctx context.Context, jobs []Job, open Opener, publish Publisher) []JobResult {
	results := make([]JobResult, len(jobs))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			res, err := RunJob(ctx, job, open, publish)
			if err != nil {
				glog.Errorf("%s: %v", job.Path, err)
			}
			results[i] = JobResult{Job: job, Result: res, Err: err}
			return nil
		})
	}
	g.Wait()
	return results
}

// RunJob opens, runs and optionally publishes a single job.
func RunJob(ctx context.Context, job Job, open Opener, publish Publisher) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := open(job.Path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	res, err := Run(ctx, job.Config, job.Name, src)
	if err != nil {
		return nil, err
	}
	if publish != nil {
		if err := publish(ctx, job, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Failed counts the results that carry an error.
func Failed(results []JobResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
