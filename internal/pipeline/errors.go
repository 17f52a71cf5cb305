package pipeline

import (
	"errors"

	"github.com/local/pdfsheet/internal/assemble"
	"github.com/local/pdfsheet/internal/layout"
	"github.com/local/pdfsheet/internal/pagerange"
	"github.com/local/pdfsheet/internal/raster"
)

var (
	// ErrSourceRead: a source is missing, unreadable, not a PDF, or its page
	// count is unavailable.
	ErrSourceRead = errors.New("source read failure")
	// ErrEmptySelection: no page is left after selection across all sources.
	ErrEmptySelection = errors.New("selection is empty")
	// ErrInvalidJob: the job has no sources or no destination.
	ErrInvalidJob = errors.New("invalid job")
	// ErrUnexpected: the run panicked.
	ErrUnexpected = errors.New("unexpected failure")

	ErrInvalidRangeSpec  = pagerange.ErrInvalidRangeSpec
	ErrEngineUnavailable = raster.ErrEngineUnavailable
	ErrLayoutUnsupported = layout.ErrLayoutUnsupported
	ErrAssemblyFailure   = assemble.ErrAssemblyFailure
)

// Message renders err for the terminal Error event. Rasterizer failures are
// reported with the engine diagnostic verbatim.
func Message(err error) string {
	var rerr *raster.Error
	if errors.As(err, &rerr) {
		return rerr.Error()
	}
	return err.Error()
}
