// Package pipeline runs a job end to end: page selection, optional
// rasterization with color filtering, chunked assembly and N-up layout. It
// reports progress as an ordered event stream.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfsheet/internal/assemble"
	"github.com/local/pdfsheet/internal/colorfilter"
	"github.com/local/pdfsheet/internal/layout"
	"github.com/local/pdfsheet/internal/metrics"
	"github.com/local/pdfsheet/internal/pagerange"
	"github.com/local/pdfsheet/internal/pdfdoc"
	"github.com/local/pdfsheet/internal/raster"
	"github.com/local/pdfsheet/internal/storage"
	"github.com/local/pdfsheet/internal/store"
)

// Fetcher makes a source reference available as a local file inside dir.
type Fetcher interface {
	Fetch(ctx context.Context, ref, dir string) (string, error)
}

// Publisher moves the finished document to its destination.
type Publisher interface {
	Publish(ctx context.Context, local, dest string) error
}

// StatusStore mirrors run state outside the process.
type StatusStore interface {
	Set(ctx context.Context, runID string, st store.Status) error
}

type Dependencies struct {
	// Engine is required only for jobs that invert or filter.
	Engine       raster.Engine
	Fetcher      Fetcher
	Publisher    Publisher
	Status       StatusStore
	Materializer assemble.Materializer
	// WorkRoot holds per-run working directories; empty means os.TempDir.
	WorkRoot string
	DPI      int
}

type Runner struct {
	deps Dependencies
}

func New(deps Dependencies) *Runner {
	if deps.Fetcher == nil || deps.Publisher == nil {
		s := storage.New()
		if deps.Fetcher == nil {
			deps.Fetcher = s
		}
		if deps.Publisher == nil {
			deps.Publisher = s
		}
	}
	if deps.DPI <= 0 {
		deps.DPI = raster.DefaultDPI
	}
	if deps.Materializer == nil {
		deps.Materializer = assemble.PNGMaterializer{DPI: deps.DPI}
	}
	return &Runner{deps: deps}
}

// Start runs job on a new goroutine and returns its event stream. The channel
// is closed after the terminal event.
func (r *Runner) Start(ctx context.Context, job Job) <-chan Event {
	q := newEventQueue()
	go func() {
		defer q.Close()
		r.run(ctx, job, q.Push)
	}()
	return q.Events()
}

// Run executes job synchronously and returns its final state.
func (r *Runner) Run(ctx context.Context, job Job) (State, error) {
	st := r.run(ctx, job, func(Event) {})
	return st, st.Err
}

// run is the worker side of one run. Every path ends in exactly one terminal
// event.
type run struct {
	ctx   context.Context
	state State
	emit  func(Event)
	store StatusStore
	meta  map[string]interface{}
	log   zerolog.Logger
}

func (r *Runner) run(ctx context.Context, job Job, emit func(Event)) State {
	runID := job.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	rs := &run{
		ctx:   ctx,
		state: State{RunID: runID, Phase: Idle, Start: time.Now()},
		emit:  emit,
		store: r.deps.Status,
		meta: map[string]interface{}{
			"sources":    len(job.Sources),
			"layout":     job.Layout,
			"invert":     job.Invert,
			"monochrome": job.Monochrome,
		},
	}
	rs.log = log.With().Str("run_id", rs.state.RunID).Logger()
	rs.log.Info().Int("sources", len(job.Sources)).Int("layout", job.Layout).
		Bool("invert", job.Invert).Bool("monochrome", job.Monochrome).Msg("run started")
	metrics.RunStarted()

	err := r.safeExecute(rs, job)

	rs.state.End = time.Now()
	dur := rs.state.End.Sub(rs.state.Start)
	if err != nil {
		rs.state.Phase = Failed
		rs.state.Err = err
		rs.mirror(Message(err))
		rs.log.Error().Err(err).Dur("duration", dur).Msg("run failed")
		metrics.RunFinished("error", !job.Rasterize(), dur)
		emit(Error{Message: Message(err), Err: err})
		return rs.state
	}
	rs.state.Phase = Succeeded
	rs.state.Output = job.Output
	rs.mirror("Done")
	rs.log.Info().Str("output", job.Output).Int("pages", rs.state.Total).Dur("duration", dur).Msg("run succeeded")
	metrics.RunFinished("success", !job.Rasterize(), dur)
	emit(Success{OutputPath: job.Output})
	return rs.state
}

// safeExecute turns a panic inside the run into an ordinary failure so the
// terminal event is still sent.
func (r *Runner) safeExecute(rs *run, job Job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			rs.log.Error().Interface("panic", p).Str("stack", string(debug.Stack())).Msg("run panicked")
			err = fmt.Errorf("%w: %v", ErrUnexpected, p)
		}
	}()
	return r.execute(rs, job)
}

func (r *Runner) execute(rs *run, job Job) error {
	if err := job.validate(); err != nil {
		return err
	}
	if !layout.Supported(job.Layout) {
		return fmt.Errorf("%w: %d pages per sheet (expected 1-4)", ErrLayoutUnsupported, job.Layout)
	}
	if job.Rasterize() {
		if err := r.checkEngine(); err != nil {
			return err
		}
	}

	dir, err := createWorkDir(r.deps.WorkRoot, shortID(rs.state.RunID))
	if err != nil {
		return fmt.Errorf("create working directory: %w", err)
	}
	defer removeWorkDir(dir)
	rs.log.Debug().Str("dir", dir).Msg("working directory created")

	rs.phase(Selecting, "Selecting pages...")
	sources, err := r.selectPages(rs.ctx, job.Sources, dir)
	if err != nil {
		return err
	}
	tasks := Tasks(sources)
	if len(tasks) == 0 {
		return fmt.Errorf("%w: every page of every source was removed", ErrEmptySelection)
	}
	rs.state.Total = len(tasks)

	intermediate := filepath.Join(dir, "intermediate.pdf")
	if job.Rasterize() {
		err = r.rasterize(rs, job, tasks, dir, intermediate)
	} else {
		err = r.collect(rs, sources, dir, intermediate)
	}
	if err != nil {
		return err
	}

	rs.phase(LayingOut, layoutLabel(job.Layout))
	result := filepath.Join(dir, "output.pdf")
	if err := layout.Apply(intermediate, result, job.Layout); err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	rs.status("Saving output...")
	if err := r.deps.Publisher.Publish(rs.ctx, result, job.Output); err != nil {
		return fmt.Errorf("save output %s: %w", job.Output, err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func layoutLabel(n int) string {
	if n == 1 {
		return "Writing output..."
	}
	return fmt.Sprintf("Applying %d pages per sheet layout...", n)
}

func (r *Runner) selectPages(ctx context.Context, sources []Source, dir string) ([]ResolvedSource, error) {
	out := make([]ResolvedSource, 0, len(sources))
	for _, src := range sources {
		if src.Label == "" {
			src.Label = pagerange.Label(src.Path, src.RangeSpec)
		}
		local, err := r.deps.Fetcher.Fetch(ctx, src.Path, dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrSourceRead, src.Path, err)
		}
		if err := pdfdoc.Detect(local); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrSourceRead, src.Path, err)
		}
		total, err := pdfdoc.PageCount(local)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrSourceRead, src.Path, err)
		}
		pages, err := pagerange.Resolve(total, src.RangeSpec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Label, err)
		}
		log.Debug().Str("source", src.Label).Int("total", total).Int("kept", len(pages)).Msg("pages selected")
		out = append(out, ResolvedSource{Source: src, LocalPath: local, TotalPages: total, Pages: pages})
	}
	return out, nil
}

func (r *Runner) collect(rs *run, sources []ResolvedSource, dir, out string) error {
	rs.phase(Assembling, "Collecting pages...")
	sel := make([]assemble.Selection, len(sources))
	for i, s := range sources {
		sel[i] = assemble.Selection{Path: s.LocalPath, Pages: s.Pages}
	}
	if err := assemble.Collect(sel, dir, out); err != nil {
		return err
	}
	metrics.IncPages(true, rs.state.Total)
	rs.progress(rs.state.Total)
	return nil
}

func (r *Runner) checkEngine() error {
	if r.deps.Engine == nil {
		return fmt.Errorf("%w: no rasterizer configured", ErrEngineUnavailable)
	}
	return r.deps.Engine.Check()
}

func (r *Runner) rasterize(rs *run, job Job, tasks []PageTask, dir, out string) error {
	eng := r.deps.Engine

	rs.phase(Rasterizing, fmt.Sprintf("Rasterizing %d pages with %s...", len(tasks), eng.Name()))
	rs.progress(0)

	filter := job.filter()
	asm := assemble.New(dir, job.ChunkSize, r.deps.Materializer)
	asm.OnChunk = func(n int) {
		metrics.IncChunk()
		rs.log.Debug().Int("frames", n).Int("chunk", len(asm.Chunks())).Msg("chunk flushed")
	}

	var docs sourceDocs
	for i, t := range tasks {
		doc, err := docs.get(t.SourcePath)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSourceRead, t.SourcePath, err)
		}

		single := filepath.Join(dir, fmt.Sprintf("page_%05d.pdf", i+1))
		if err := doc.ExtractPage(t.Page, single); err != nil {
			return fmt.Errorf("%w: %v", ErrSourceRead, err)
		}

		began := time.Now()
		img, err := eng.Rasterize(rs.ctx, single)
		_ = os.Remove(single)
		if err != nil {
			metrics.ObserveRaster(eng.Name(), "error", time.Since(began))
			return fmt.Errorf("page %d of %s: %w", t.Page, filepath.Base(t.SourcePath), err)
		}
		metrics.ObserveRaster(eng.Name(), "success", time.Since(began))

		if err := asm.Add(colorfilter.Apply(img, filter)); err != nil {
			return err
		}
		rs.progress(i + 1)
	}

	rs.phase(Assembling, "Merging chunks...")
	if err := asm.Finish(out); err != nil {
		return err
	}
	metrics.IncPages(false, len(tasks))
	return nil
}

func (rs *run) phase(p Phase, text string) {
	rs.state.Phase = p
	rs.log.Debug().Str("phase", p.String()).Msg(text)
	rs.status(text)
}

func (rs *run) status(text string) {
	rs.emit(Status{Text: text})
	rs.mirror(text)
}

func (rs *run) progress(current int) {
	rs.state.Current = current
	rs.emit(Progress{Current: current, Total: rs.state.Total, Start: rs.state.Start})
	rs.mirror(fmt.Sprintf("Processing page %d of %d", current, rs.state.Total))
}

func (rs *run) mirror(message string) {
	if rs.store == nil {
		return
	}
	st := store.Status{
		Phase:    rs.state.Phase.String(),
		Current:  rs.state.Current,
		Total:    rs.state.Total,
		Message:  message,
		Output:   rs.state.Output,
		Start:    &rs.state.Start,
		Metadata: rs.meta,
	}
	if rs.state.Phase.Done() {
		end := rs.state.End
		st.End = &end
	}
	if err := rs.store.Set(rs.ctx, rs.state.RunID, st); err != nil {
		rs.log.Debug().Err(err).Msg("status mirror update failed")
	}
}

// sourceDocs keeps only the current source open. Tasks arrive grouped by
// source, so switching paths releases the previous document.
type sourceDocs struct {
	cur *pdfdoc.Doc
}

func (s *sourceDocs) get(path string) (*pdfdoc.Doc, error) {
	if s.cur != nil && s.cur.Path == path {
		return s.cur, nil
	}
	s.cur = nil
	d, err := pdfdoc.Open(path)
	if err != nil {
		return nil, err
	}
	s.cur = d
	return d, nil
}
