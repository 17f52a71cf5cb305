// Package layout places the pages of an intermediate document onto N-up
// sheets.
package layout

import (
	"errors"
	"fmt"

	"github.com/local/pdfsheet/internal/pdfdoc"
	"github.com/rs/zerolog/log"
)

// Reference page size (A4 in points) every sheet is derived from.
const (
	RefWidth  = 595.2
	RefHeight = 841.8
)

// ErrLayoutUnsupported is returned for a pages-per-sheet value outside 1..4.
var ErrLayoutUnsupported = errors.New("unsupported layout")

// Slot is a rectangle on a sheet in PDF user space (origin bottom left).
type Slot struct {
	X, Y          float64
	Width, Height float64
}

// Sheet is one output page and the slots pages are placed into, in fill order.
type Sheet struct {
	Width, Height float64
	Slots         []Slot
}

// Supported reports whether n pages per sheet can be laid out.
func Supported(n int) bool { return n >= 1 && n <= 4 }

// Plan returns the sheet geometry for n pages per sheet. N=1 has no geometry
// because the document is copied unchanged.
func Plan(n int) (Sheet, error) {
	w, h := RefWidth, RefHeight
	switch n {
	case 1:
		return Sheet{Width: w, Height: h, Slots: []Slot{{0, 0, w, h}}}, nil
	case 2:
		// landscape, side by side
		return Sheet{Width: h, Height: w, Slots: []Slot{
			{0, 0, h / 2, w},
			{h / 2, 0, h / 2, w},
		}}, nil
	case 3:
		return Sheet{Width: w, Height: h, Slots: []Slot{
			{0, h * 2 / 3, w, h / 3},
			{0, h / 3, w, h / 3},
			{0, 0, w, h / 3},
		}}, nil
	case 4:
		return Sheet{Width: w, Height: h, Slots: []Slot{
			{0, h * 3 / 4, w, h / 4},
			{0, h / 2, w, h / 4},
			{0, h / 4, w, h / 4},
			{0, 0, w, h / 4},
		}}, nil
	}
	return Sheet{}, fmt.Errorf("%w: %d pages per sheet (expected 1-4)", ErrLayoutUnsupported, n)
}

// Place fits a page of size w x h into slot, preserving aspect ratio and
// centering it. ok is false for a page with no area.
func Place(slot Slot, w, h float64) (scale, tx, ty float64, ok bool) {
	if w <= 0 || h <= 0 {
		return 0, 0, 0, false
	}
	scale = min(slot.Width/w, slot.Height/h)
	tx = slot.X + (slot.Width-w*scale)/2
	ty = slot.Y + (slot.Height-h*scale)/2
	return scale, tx, ty, true
}

// Paginate groups pages 1..count into sheets of n. The last group may be
// short; its remaining slots stay blank.
func Paginate(count, n int) [][]int {
	if count <= 0 || n <= 0 {
		return nil
	}
	groups := make([][]int, 0, (count+n-1)/n)
	for start := 1; start <= count; start += n {
		end := min(start+n-1, count)
		g := make([]int, 0, end-start+1)
		for p := start; p <= end; p++ {
			g = append(g, p)
		}
		groups = append(groups, g)
	}
	return groups
}

// Sheets computes the placements for every sheet given the page sizes of the
// intermediate document. The returned leads are the first page of each group.
func Sheets(dims []pdfdoc.Dim, n int) ([]pdfdoc.SheetSpec, []int, error) {
	plan, err := Plan(n)
	if err != nil {
		return nil, nil, err
	}
	groups := Paginate(len(dims), n)
	specs := make([]pdfdoc.SheetSpec, 0, len(groups))
	leads := make([]int, 0, len(groups))
	for _, g := range groups {
		spec := pdfdoc.SheetSpec{Width: plan.Width, Height: plan.Height}
		for j, page := range g {
			d := dims[page-1]
			scale, tx, ty, ok := Place(plan.Slots[j], d.Width, d.Height)
			if !ok {
				log.Warn().Int("page", page).Float64("width", d.Width).Float64("height", d.Height).Msg("skipping page with zero size")
				continue
			}
			spec.Placements = append(spec.Placements, pdfdoc.Placement{Page: page, Scale: scale, TX: tx, TY: ty})
		}
		specs = append(specs, spec)
		leads = append(leads, g[0])
	}
	return specs, leads, nil
}

// Apply writes the n-up rendition of in to out.
func Apply(in, out string, n int) error {
	if !Supported(n) {
		return fmt.Errorf("%w: %d pages per sheet (expected 1-4)", ErrLayoutUnsupported, n)
	}
	if n == 1 {
		return pdfdoc.Copy(in, out)
	}
	dims, err := pdfdoc.PageDims(in)
	if err != nil {
		return err
	}
	specs, leads, err := Sheets(dims, n)
	if err != nil {
		return err
	}
	log.Debug().Int("pages", len(dims)).Int("per_sheet", n).Int("sheets", len(specs)).Msg("laying out sheets")
	return pdfdoc.Compose(in, out, specs, leads)
}
