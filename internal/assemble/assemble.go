// Package assemble turns processed page frames, or untouched source pages,
// into a single intermediate PDF.
package assemble

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/local/pdfsheet/internal/pdfdoc"
	"github.com/local/pdfsheet/internal/raster"
	"github.com/rs/zerolog/log"
)

// DefaultChunkSize bounds how many frames are held in memory before they are
// written out as one chunk.
const DefaultChunkSize = 20

// ErrAssemblyFailure is returned when no intermediate document can be
// produced.
var ErrAssemblyFailure = errors.New("assembly failed")

// Materializer writes an ordered batch of frames as one PDF at path.
type Materializer interface {
	Materialize(frames []image.Image, path string) error
}

// Merger concatenates chunk documents in order.
type Merger interface {
	Merge(parts []string, out string) error
}

// PNGMaterializer encodes every frame as a PNG and imports them as pages.
type PNGMaterializer struct {
	DPI int
}

func (m PNGMaterializer) Materialize(frames []image.Image, path string) error {
	dir := path + ".frames"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	files := make([]string, len(frames))
	for i, img := range frames {
		files[i] = filepath.Join(dir, fmt.Sprintf("frame_%04d.png", i))
		if err := writePNG(files[i], img); err != nil {
			return fmt.Errorf("encode frame %d: %w", i, err)
		}
	}
	dpi := m.DPI
	if dpi <= 0 {
		dpi = raster.DefaultDPI
	}
	return pdfdoc.ImagesToPDF(files, path, dpi)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type pdfMerger struct{}

func (pdfMerger) Merge(parts []string, out string) error { return pdfdoc.Merge(parts, out) }

// Assembler accumulates frames and flushes them in chunks of ChunkSize.
type Assembler struct {
	dir       string
	chunkSize int
	mat       Materializer
	merger    Merger

	batch  []image.Image
	chunks []string
	frames int

	// OnChunk, when set, is called after each chunk is written with the
	// chunk's frame count.
	OnChunk func(size int)
}

// New creates an Assembler writing chunk files into dir.
func New(dir string, chunkSize int, mat Materializer) *Assembler {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if mat == nil {
		mat = PNGMaterializer{DPI: raster.DefaultDPI}
	}
	return &Assembler{dir: dir, chunkSize: chunkSize, mat: mat, merger: pdfMerger{}}
}

// WithMerger replaces the chunk merger.
func (a *Assembler) WithMerger(m Merger) *Assembler {
	a.merger = m
	return a
}

// Add appends a frame, writing a chunk once the batch is full.
func (a *Assembler) Add(frame image.Image) error {
	a.batch = append(a.batch, frame)
	a.frames++
	if len(a.batch) >= a.chunkSize {
		return a.flush()
	}
	return nil
}

// Chunks returns the chunk files written so far, in order.
func (a *Assembler) Chunks() []string { return a.chunks }

func (a *Assembler) flush() error {
	if len(a.batch) == 0 {
		return nil
	}
	path := filepath.Join(a.dir, fmt.Sprintf("chunk_%04d.pdf", len(a.chunks)))
	if err := a.mat.Materialize(a.batch, path); err != nil {
		return fmt.Errorf("%w: chunk %d: %v", ErrAssemblyFailure, len(a.chunks), err)
	}
	log.Debug().Int("chunk", len(a.chunks)).Int("frames", len(a.batch)).Msg("chunk written")
	if a.OnChunk != nil {
		a.OnChunk(len(a.batch))
	}
	a.chunks = append(a.chunks, path)
	// drop references so the frames can be collected
	clear(a.batch)
	a.batch = a.batch[:0]
	return nil
}

// Finish flushes the remaining frames and merges all chunks into out.
func (a *Assembler) Finish(out string) error {
	if err := a.flush(); err != nil {
		return err
	}
	if a.frames == 0 || len(a.chunks) == 0 {
		return fmt.Errorf("%w: no frames were produced", ErrAssemblyFailure)
	}
	if err := a.merger.Merge(a.chunks, out); err != nil {
		return fmt.Errorf("%w: %v", ErrAssemblyFailure, err)
	}
	return nil
}
