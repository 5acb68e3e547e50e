package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ironsheep/sprite-tools-mcp/internal/chromakey"
	"github.com/ironsheep/sprite-tools-mcp/internal/imaging"
)

// ErrInputNotFound is returned when an input file or directory does not
// exist or has the wrong type.
var ErrInputNotFound = errors.New("input not found")

// OutputSuffix is appended to the input stem (single file) or directory name
// (batch) to form the default output location.
const OutputSuffix = "_nobg"

// Job is one unit of batch work.
type Job struct {
	Input   string
	Output  string
	Options chromakey.Options
}

// JobResult is the outcome of one Job.
type JobResult struct {
	// File is the input's base name.
	File   string `json:"file"`
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`

	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`

	Warnings   []chromakey.Warning    `json:"warnings,omitempty"`
	Background chromakey.BackgroundSet `json:"background,omitempty"`
	Stats      chromakey.ErosionStats `json:"stats"`

	// RemovedPercent is the share of pixels made transparent, 0-100.
	RemovedPercent float64 `json:"removed_percent"`

	Cropped bool `json:"cropped"`
	Width   int  `json:"width"`
	Height  int  `json:"height"`

	Duration time.Duration `json:"-"`

	err error
}

// Err returns the error that failed the job, or nil.
func (r *JobResult) Err() error {
	return r.err
}

func (r *JobResult) fail(err error) {
	r.OK = false
	r.err = err
	r.Error = err.Error()
}

// DefaultOutputPath returns "<dir>/<stem>_nobg.png" for input.
func DefaultOutputPath(input string) string {
	dir, name := filepath.Split(input)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(dir, stem+OutputSuffix+".png")
}

// ProcessFile removes the background from one image and writes the result as
// PNG. An empty output selects DefaultOutputPath(input).
//
// A missing input returns ErrInputNotFound. Any other failure is returned
// together with a JobResult describing it.
func ProcessFile(input, output string, opts chromakey.Options) (*JobResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	info, err := os.Stat(input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, input)
		}
		return nil, fmt.Errorf("failed to stat input: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInputNotFound, input)
	}
	if output == "" {
		output = DefaultOutputPath(input)
	}

	res := run(Job{Input: input, Output: output, Options: opts})
	if !res.OK {
		return &res, res.err
	}
	return &res, nil
}

// run executes one job. Every failure, including a panic, is captured in
// the result.
func run(job Job) (res JobResult) {
	start := time.Now()
	res = JobResult{
		File:   filepath.Base(job.Input),
		Input:  job.Input,
		Output: job.Output,
	}
	defer func() {
		if p := recover(); p != nil {
			res.fail(fmt.Errorf("panic while processing %s: %v", res.File, p))
		}
		res.Duration = time.Since(start)
	}()

	img, err := imaging.LoadImage(job.Input)
	if err != nil {
		res.fail(err)
		return res
	}

	out, err := chromakey.Process(img, job.Options)
	if err != nil {
		res.fail(err)
		return res
	}

	if err := imaging.SavePNG(job.Output, out.Image); err != nil {
		res.fail(err)
		return res
	}

	b := out.Image.Bounds()
	res.OK = true
	res.Warnings = out.Warnings
	res.Background = out.Background
	res.Stats = out.Stats
	res.RemovedPercent = out.Stats.RemovedFraction() * 100
	res.Cropped = out.Cropped
	res.Width, res.Height = b.Dx(), b.Dy()
	return res
}
