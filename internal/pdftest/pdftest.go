// Package pdftest builds small synthetic PDFs for tests. Every page is a
// solid color image imported at 72 DPI, so a page's size in points equals the
// pixel size of its image.
package pdftest

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/require"

	"github.com/local/pdfsheet/internal/pdfdoc"
)

// Size is a page size in points.
type Size struct {
	Width, Height int
}

// A4 is the closest whole-point approximation of an A4 page.
var A4 = Size{Width: 595, Height: 842}

// palette cycles so neighbouring pages are distinguishable.
var palette = []color.RGBA{
	{R: 200, G: 30, B: 30, A: 255},
	{R: 30, G: 160, B: 30, A: 255},
	{R: 30, G: 30, B: 200, A: 255},
	{R: 20, G: 20, B: 20, A: 255},
	{R: 240, G: 240, B: 240, A: 255},
}

// Color returns the fill color used for page i (1-based).
func Color(i int) color.RGBA { return palette[(i-1)%len(palette)] }

// Build writes dir/name with one page per size.
func Build(t testing.TB, dir, name string, sizes ...Size) string {
	t.Helper()
	require.NotEmpty(t, sizes, "a PDF needs at least one page")

	imgDir := filepath.Join(dir, name+".pages")
	require.NoError(t, os.MkdirAll(imgDir, 0o755))
	files := make([]string, len(sizes))
	for i, s := range sizes {
		files[i] = filepath.Join(imgDir, fmt.Sprintf("p%03d.png", i+1))
		writeSolid(t, files[i], s, Color(i+1))
	}

	out := filepath.Join(dir, name)
	require.NoError(t, pdfdoc.ImagesToPDF(files, out, 72))
	require.NoError(t, os.RemoveAll(imgDir))
	return out
}

// Pages writes dir/name with n pages of the given size.
func Pages(t testing.TB, dir, name string, n int, size Size) string {
	t.Helper()
	sizes := make([]Size, n)
	for i := range sizes {
		sizes[i] = size
	}
	return Build(t, dir, name, sizes...)
}

// Solid returns an opaque image of size s filled with c.
func Solid(s Size, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writeSolid(t testing.TB, path string, s Size, c color.Color) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, Solid(s, c)))
}

// PageCount returns the page count of path, failing the test on error.
func PageCount(t testing.TB, path string) int {
	t.Helper()
	n, err := pdfdoc.PageCount(path)
	require.NoError(t, err)
	return n
}

// Dims returns the page sizes of path rounded to whole points.
func Dims(t testing.TB, path string) []Size {
	t.Helper()
	dims, err := pdfdoc.PageDims(path)
	require.NoError(t, err)
	out := make([]Size, len(dims))
	for i, d := range dims {
		out[i] = Size{Width: int(d.Width + 0.5), Height: int(d.Height + 0.5)}
	}
	return out
}

// Rotate sets /Rotate on the given pages of path in place.
func Rotate(t testing.TB, path string, degrees int, pages ...string) {
	t.Helper()
	require.NoError(t, api.RotateFile(path, "", degrees, pages, nil))
}

// Contents returns the decoded content stream of every page of path.
func Contents(t testing.TB, path string) [][]byte {
	t.Helper()
	ctx, err := api.ReadContextFile(path)
	require.NoError(t, err)
	require.NoError(t, api.ValidateContext(ctx))
	require.NoError(t, ctx.EnsurePageCount())
	out := make([][]byte, ctx.PageCount)
	for p := 1; p <= ctx.PageCount; p++ {
		d, _, _, err := ctx.PageDict(p, false)
		require.NoError(t, err)
		out[p-1], err = ctx.PageContent(d)
		require.NoError(t, err)
	}
	return out
}
