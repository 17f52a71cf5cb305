package layout

import (
	"path/filepath"
	"testing"

	"github.com/local/pdfsheet/internal/pdfdoc"
	"github.com/local/pdfsheet/internal/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_SlotCountMatchesN(t *testing.T) {
	for n := 1; n <= 4; n++ {
		sheet, err := Plan(n)
		require.NoError(t, err)
		assert.Len(t, sheet.Slots, n)
	}
}

func TestPlan_Geometry(t *testing.T) {
	two, _ := Plan(2)
	assert.Equal(t, RefHeight, two.Width, "two-up sheets are landscape")
	assert.Equal(t, RefWidth, two.Height)
	assert.Equal(t, Slot{0, 0, RefHeight / 2, RefWidth}, two.Slots[0])
	assert.Equal(t, Slot{RefHeight / 2, 0, RefHeight / 2, RefWidth}, two.Slots[1])

	four, _ := Plan(4)
	assert.Equal(t, RefWidth, four.Width)
	assert.InDelta(t, RefHeight*3/4, four.Slots[0].Y, 1e-9, "first slot is at the top")
	assert.Equal(t, 0.0, four.Slots[3].Y)
	for _, s := range four.Slots {
		assert.InDelta(t, RefHeight/4, s.Height, 1e-9)
	}

	three, _ := Plan(3)
	assert.InDelta(t, RefHeight*2/3, three.Slots[0].Y, 1e-9)
}

func TestPlan_Unsupported(t *testing.T) {
	for _, n := range []int{0, 5, -1} {
		_, err := Plan(n)
		assert.ErrorIs(t, err, ErrLayoutUnsupported)
		assert.ErrorIs(t, Apply("in.pdf", "out.pdf", n), ErrLayoutUnsupported)
	}
}

func TestPlace(t *testing.T) {
	slot := Slot{X: 0, Y: 100, Width: 200, Height: 100}

	scale, tx, ty, ok := Place(slot, 100, 100)
	require.True(t, ok)
	assert.Equal(t, 1.0, scale)
	assert.Equal(t, 50.0, tx)
	assert.Equal(t, 100.0, ty)

	// A page larger than the slot shrinks uniformly.
	scale, tx, ty, ok = Place(slot, 400, 100)
	require.True(t, ok)
	assert.Equal(t, 0.5, scale)
	assert.Equal(t, 0.0, tx)
	assert.Equal(t, 125.0, ty)

	_, _, _, ok = Place(slot, 0, 100)
	assert.False(t, ok)
	_, _, _, ok = Place(slot, 100, 0)
	assert.False(t, ok)
}

func TestPaginate(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2, 3, 4}, {5, 6, 7, 8}, {9}}, Paginate(9, 4))
	assert.Equal(t, [][]int{{1, 2}}, Paginate(2, 2))
	assert.Nil(t, Paginate(0, 4))
}

func TestSheets_NineOnFour(t *testing.T) {
	dims := make([]pdfdoc.Dim, 9)
	for i := range dims {
		dims[i] = pdfdoc.Dim{Width: RefWidth, Height: RefHeight}
	}
	specs, leads, err := Sheets(dims, 4)
	require.NoError(t, err)
	require.Len(t, specs, 3)
	assert.Equal(t, []int{1, 5, 9}, leads)
	assert.Len(t, specs[0].Placements, 4)
	assert.Len(t, specs[2].Placements, 1, "last sheet keeps slots 2-4 blank")
	assert.Equal(t, 9, specs[2].Placements[0].Page)

	// Slot 1 is the top quarter of the sheet.
	assert.Greater(t, specs[2].Placements[0].TY, RefHeight*3/4-1e-9)
}

func TestSheets_ZeroWidthLeavesBlankSlot(t *testing.T) {
	dims := []pdfdoc.Dim{{Width: 100, Height: 100}, {Width: 0, Height: 100}, {Width: 100, Height: 100}}
	specs, leads, err := Sheets(dims, 4)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, []int{1}, leads)
	pages := []int{}
	for _, p := range specs[0].Placements {
		pages = append(pages, p.Page)
	}
	assert.Equal(t, []int{1, 3}, pages)
	// Page 3 still lands in the third slot.
	assert.InDelta(t, RefHeight/4, specs[0].Placements[1].TY, 1e-9)
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	in := pdftest.Pages(t, dir, "in.pdf", 9, pdftest.A4)

	out := filepath.Join(dir, "four.pdf")
	require.NoError(t, Apply(in, out, 4))
	dims := pdftest.Dims(t, out)
	require.Len(t, dims, 3)
	for _, d := range dims {
		assert.Equal(t, pdftest.Size{Width: 595, Height: 842}, d)
	}

	out2 := filepath.Join(dir, "two.pdf")
	require.NoError(t, Apply(in, out2, 2))
	dims = pdftest.Dims(t, out2)
	require.Len(t, dims, 5)
	assert.Equal(t, pdftest.Size{Width: 842, Height: 595}, dims[0])

	out1 := filepath.Join(dir, "one.pdf")
	require.NoError(t, Apply(in, out1, 1))
	assert.Equal(t, 9, pdftest.PageCount(t, out1))
}

func TestSheets_RotatedPageFitsSlot(t *testing.T) {
	dir := t.TempDir()
	in := pdftest.Pages(t, dir, "letter.pdf", 4, pdftest.Size{Width: 612, Height: 792})
	pdftest.Rotate(t, in, 90, "1")

	dims, err := pdfdoc.PageDims(in)
	require.NoError(t, err)
	specs, _, err := Sheets(dims, 4)
	require.NoError(t, err)
	require.Len(t, specs, 1)

	plan, err := Plan(4)
	require.NoError(t, err)
	for i, pl := range specs[0].Placements {
		slot := plan.Slots[i]
		assert.LessOrEqual(t, pl.Scale*792, slot.Height+1e-9, "page %d overflows its slot", pl.Page)
		assert.LessOrEqual(t, pl.Scale*612, slot.Width+1e-9, "page %d overflows its slot", pl.Page)
		assert.GreaterOrEqual(t, pl.TY, slot.Y-1e-9)
	}

	out := filepath.Join(dir, "four.pdf")
	require.NoError(t, Apply(in, out, 4))
	assert.Equal(t, []pdftest.Size{{Width: 595, Height: 842}}, pdftest.Dims(t, out))
}
