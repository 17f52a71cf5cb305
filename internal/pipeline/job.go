package pipeline

import (
	"fmt"

	"github.com/local/pdfsheet/internal/colorfilter"
	"github.com/local/pdfsheet/internal/pagerange"
)

// Source is one input document and the pages to remove from it.
type Source struct {
	Path      string
	RangeSpec string
	Label     string
}

// NewSource builds a Source with its display label.
func NewSource(path, spec string) Source {
	spec = pagerange.Normalize(spec)
	return Source{Path: path, RangeSpec: spec, Label: pagerange.Label(path, spec)}
}

// PageTask is one page (1-based) of one source.
type PageTask struct {
	SourcePath string
	Page       int
}

// Job is a single run request. The caller owns it; the runner only reads it.
type Job struct {
	Sources    []Source
	Layout     int
	Invert     bool
	Monochrome bool
	// Thresholds for the monochrome filter; zero means the defaults.
	Thresholds colorfilter.Thresholds
	// ChunkSize bounds frames held in memory; zero means the default.
	ChunkSize int
	Output    string
	// RunID names the run in logs and the status mirror; empty means a new
	// UUID.
	RunID string
}

// Rasterize reports whether pages must go through the rasterizer.
func (j Job) Rasterize() bool { return j.Invert || j.Monochrome }

func (j Job) filter() colorfilter.Options {
	t := j.Thresholds
	if t == (colorfilter.Thresholds{}) {
		t = colorfilter.DefaultThresholds
	}
	return colorfilter.Options{Invert: j.Invert, Monochrome: j.Monochrome, Thresholds: t}
}

func (j Job) validate() error {
	if len(j.Sources) == 0 {
		return fmt.Errorf("%w: no source documents", ErrInvalidJob)
	}
	if j.Output == "" {
		return fmt.Errorf("%w: no output path", ErrInvalidJob)
	}
	return nil
}

// Tasks concatenates the keep-lists of every source, in source order.
func Tasks(sources []ResolvedSource) []PageTask {
	var tasks []PageTask
	for _, s := range sources {
		for _, p := range s.Pages {
			tasks = append(tasks, PageTask{SourcePath: s.LocalPath, Page: p})
		}
	}
	return tasks
}

// ResolvedSource is a Source after fetching and page selection.
type ResolvedSource struct {
	Source
	LocalPath  string
	TotalPages int
	Pages      []int
}
