package assemble

import (
	"fmt"
	"path/filepath"

	"github.com/local/pdfsheet/internal/pdfdoc"
	"github.com/rs/zerolog/log"
)

// Selection is the ascending list of pages kept from one source.
type Selection struct {
	Path  string
	Pages []int
}

// Collect copies the selected pages of every source, in order, into out
// without rasterizing them.
func Collect(sel []Selection, dir, out string) error {
	var parts []string
	for i, s := range sel {
		if len(s.Pages) == 0 {
			continue
		}
		part := filepath.Join(dir, fmt.Sprintf("part_%04d.pdf", i))
		if err := pdfdoc.Select(s.Path, part, s.Pages); err != nil {
			return fmt.Errorf("%w: %v", ErrAssemblyFailure, err)
		}
		log.Debug().Str("source", filepath.Base(s.Path)).Int("pages", len(s.Pages)).Msg("pages collected")
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return fmt.Errorf("%w: nothing selected", ErrAssemblyFailure)
	}
	if err := pdfdoc.Merge(parts, out); err != nil {
		return fmt.Errorf("%w: %v", ErrAssemblyFailure, err)
	}
	return nil
}
