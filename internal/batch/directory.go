package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ironsheep/sprite-tools-mcp/internal/chromakey"
	"github.com/ironsheep/sprite-tools-mcp/internal/imaging"
	"github.com/segmentio/ksuid"
	"gonum.org/v1/gonum/stat"
)

// Options configure ProcessDirectory.
type Options struct {
	// OutputDir receives the keyed PNGs. Empty selects "<inputDir>_nobg".
	OutputDir string

	// Workers is the pool size. Zero or negative selects runtime.NumCPU().
	// The pool never exceeds the number of jobs.
	Workers int

	// Job holds the per-image settings. The zero value selects
	// chromakey.DefaultOptions().
	Job chromakey.Options

	// Progress, when set, is called once per finished job from the calling
	// goroutine, in completion order.
	Progress func(done, total int, r JobResult)
}

// Summary aggregates a directory run.
type Summary struct {
	RunID     string `json:"run_id"`
	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`
	Workers   int    `json:"workers"`

	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	// Warned counts successful jobs that raised at least one warning.
	Warned int `json:"warned"`

	// MeanRemovedPercent averages RemovedPercent over successful jobs.
	MeanRemovedPercent float64 `json:"mean_removed_percent"`

	// Cancelled is set when the context ended before every job started.
	Cancelled bool `json:"cancelled"`

	// Results are sorted by file name.
	Results  []JobResult   `json:"results"`
	Duration time.Duration `json:"-"`
}

// Failures returns the failed results in file name order.
func (s *Summary) Failures() []JobResult {
	var out []JobResult
	for _, r := range s.Results {
		if !r.OK {
			out = append(out, r)
		}
	}
	return out
}

// DefaultOutputDir returns "<inputDir>_nobg".
func DefaultOutputDir(inputDir string) string {
	return filepath.Clean(inputDir) + OutputSuffix
}

// ProcessDirectory removes the background from every frame in inputDir
// (non-recursive; see imaging.InputExts) and writes one PNG per frame into
// the output directory.
//
// Setup problems are returned as errors before any job runs: a missing input
// directory (ErrInputNotFound), invalid options, or an output directory that
// cannot be created. Per-frame failures are not errors; they are reported in
// the Summary. An empty directory yields an empty Summary.
//
// When ctx ends, no further jobs are handed to workers. Jobs already running
// finish; jobs never started are reported as failed with the context error.
func ProcessDirectory(ctx context.Context, inputDir string, o Options) (*Summary, error) {
	start := time.Now()

	if o.Job == (chromakey.Options{}) {
		o.Job = chromakey.DefaultOptions()
	}
	if err := o.Job.Validate(); err != nil {
		return nil, err
	}

	info, err := os.Stat(inputDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, inputDir)
		}
		return nil, fmt.Errorf("failed to stat input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInputNotFound, inputDir)
	}

	outDir := o.OutputDir
	if outDir == "" {
		outDir = DefaultOutputDir(inputDir)
	}
	if sameDir(inputDir, outDir) {
		return nil, fmt.Errorf("%w: output directory must differ from input directory", chromakey.ErrInvalidOptions)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths, err := imaging.ListFrames(inputDir)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:     ksuid.New().String(),
		InputDir:  inputDir,
		OutputDir: outDir,
		Total:     len(paths),
		Results:   make([]JobResult, 0, len(paths)),
	}
	if len(paths) == 0 {
		summary.Duration = time.Since(start)
		return summary, nil
	}

	jobs := planJobs(paths, outDir, o.Job)

	workers := o.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}
	summary.Workers = workers

	done := 0
	for r := range runPool(ctx, jobs, workers) {
		done++
		summary.Results = append(summary.Results, r)
		if o.Progress != nil {
			o.Progress(done, len(jobs), r)
		}
	}

	summary.finish()
	summary.Cancelled = ctx.Err() != nil && summary.hasUnstarted()
	summary.Duration = time.Since(start)
	return summary, nil
}

// runPool feeds jobs to a fixed set of workers and returns the channel of
// their results. The channel is closed once every job has a result.
func runPool(ctx context.Context, jobs []Job, workers int) <-chan JobResult {
	jobCh := make(chan Job)
	resCh := make(chan JobResult, len(jobs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				resCh <- run(j)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobCh)
		for i, j := range jobs {
			if ctx.Err() == nil {
				select {
				case jobCh <- j:
					continue
				case <-ctx.Done():
				}
			}
			for _, rest := range jobs[i:] {
				resCh <- notStarted(rest, ctx.Err())
			}
			return
		}
	}()

	go func() {
		wg.Wait()
		close(resCh)
	}()
	return resCh
}

// errNotStarted marks results of jobs skipped after cancellation.
var errNotStarted = errors.New("not started")

func notStarted(j Job, cause error) JobResult {
	r := JobResult{File: filepath.Base(j.Input), Input: j.Input, Output: j.Output}
	r.fail(fmt.Errorf("%w: %w", errNotStarted, cause))
	return r
}

func (s *Summary) hasUnstarted() bool {
	for _, r := range s.Results {
		if errors.Is(r.err, errNotStarted) {
			return true
		}
	}
	return false
}

// finish sorts the results and fills the counters.
func (s *Summary) finish() {
	sort.Slice(s.Results, func(i, j int) bool {
		return s.Results[i].File < s.Results[j].File
	})

	var removed []float64
	for _, r := range s.Results {
		if !r.OK {
			s.Failed++
			continue
		}
		s.Succeeded++
		if len(r.Warnings) > 0 {
			s.Warned++
		}
		removed = append(removed, r.RemovedPercent)
	}
	if len(removed) > 0 {
		s.MeanRemovedPercent = stat.Mean(removed, nil)
	}
}

// planJobs assigns each input an output path in outDir. Outputs are always
// "<stem>.png"; when an earlier input (in sorted order) already claimed that
// name, the full input name is kept instead ("walk.jpg" -> "walk.jpg.png"),
// with a numeric suffix as a last resort.
func planJobs(paths []string, outDir string, opts chromakey.Options) []Job {
	used := make(map[string]bool, len(paths))
	jobs := make([]Job, 0, len(paths))

	for _, p := range paths {
		name := filepath.Base(p)
		stem := strings.TrimSuffix(name, filepath.Ext(name))

		out := stem + ".png"
		if used[out] {
			out = name + ".png"
		}
		for n := 2; used[out]; n++ {
			out = stem + "_" + strconv.Itoa(n) + ".png"
		}
		used[out] = true

		jobs = append(jobs, Job{
			Input:   p,
			Output:  filepath.Join(outDir, out),
			Options: opts,
		})
	}
	return jobs
}

func sameDir(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}
