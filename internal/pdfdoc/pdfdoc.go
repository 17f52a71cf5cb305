// Package pdfdoc wraps the pdfcpu container operations the pipeline needs:
// page counts and sizes, page extraction and selection, merging, image import
// and sheet composition.
package pdfdoc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog/log"
)

// ErrNotPDF is returned by Detect for files whose magic bytes are not a PDF.
var ErrNotPDF = errors.New("not a PDF document")

func config() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Detect checks the file type by magic bytes, not by filename.
func Detect(path string) error {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}
	if !mtype.Is("application/pdf") {
		return fmt.Errorf("%w: %s is %s", ErrNotPDF, filepath.Base(path), mtype.String())
	}
	return nil
}

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("pdf page count failed: %w", err)
	}
	return n, nil
}

// Dim is a page size in PDF points.
type Dim struct {
	Width, Height float64
}

// PageDims returns the media box size of every page, in page order. /Rotate
// is ignored so that the sizes match what Compose draws.
func PageDims(path string) ([]Dim, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("pdf page dimensions failed: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("pdf page dimensions failed: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("pdf page dimensions failed: %w", err)
	}
	out := make([]Dim, 0, ctx.PageCount)
	for p := 1; p <= ctx.PageCount; p++ {
		_, _, inh, err := ctx.PageDict(p, false)
		if err != nil {
			return nil, fmt.Errorf("pdf page dimensions failed: page %d: %w", p, err)
		}
		if inh == nil || inh.MediaBox == nil {
			out = append(out, Dim{})
			continue
		}
		out = append(out, Dim{Width: inh.MediaBox.Width(), Height: inh.MediaBox.Height()})
	}
	return out, nil
}

// Doc is an opened source kept in memory so that many single pages can be
// extracted without re-reading the file.
type Doc struct {
	Path string
	ctx  *model.Context
}

// Open reads and validates the PDF at path.
func Open(path string) (*Doc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ctx, err := api.ReadValidateAndOptimize(f, config())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, err
	}
	return &Doc{Path: path, ctx: ctx}, nil
}

// PageCount returns the number of pages of the opened document.
func (d *Doc) PageCount() int { return d.ctx.PageCount }

// ExtractPage writes page (1-based) as a standalone one-page PDF to out.
func (d *Doc) ExtractPage(page int, out string) error {
	if page < 1 || page > d.ctx.PageCount {
		return fmt.Errorf("page %d out of range (document has %d pages)", page, d.ctx.PageCount)
	}
	single, err := pdfcpu.ExtractPages(d.ctx, []int{page}, false)
	if err != nil {
		return fmt.Errorf("extract page %d: %w", page, err)
	}
	if err := api.WriteContextFile(single, out); err != nil {
		return fmt.Errorf("write page %d: %w", page, err)
	}
	return nil
}

// Select writes the given pages of in, in ascending order, to out.
func Select(in, out string, pages []int) error {
	if len(pages) == 0 {
		return errors.New("no pages selected")
	}
	if err := api.TrimFile(in, out, Runs(pages), config()); err != nil {
		return fmt.Errorf("select pages from %s: %w", filepath.Base(in), err)
	}
	return nil
}

// Remove writes in without the given pages to out.
func Remove(in, out string, pages []int) error {
	if len(pages) == 0 {
		return Copy(in, out)
	}
	if err := api.RemovePagesFile(in, out, Runs(pages), config()); err != nil {
		return fmt.Errorf("remove pages from %s: %w", filepath.Base(in), err)
	}
	return nil
}

// Runs compresses an ascending page list into pdfcpu page selection
// expressions, one per contiguous run ("1-3", "5").
func Runs(pages []int) []string {
	var out []string
	for i := 0; i < len(pages); {
		j := i
		for j+1 < len(pages) && pages[j+1] == pages[j]+1 {
			j++
		}
		if i == j {
			out = append(out, strconv.Itoa(pages[i]))
		} else {
			out = append(out, strconv.Itoa(pages[i])+"-"+strconv.Itoa(pages[j]))
		}
		i = j + 1
	}
	return out
}

// Merge concatenates inFiles in order into out. A single input is copied.
func Merge(inFiles []string, out string) error {
	switch len(inFiles) {
	case 0:
		return errors.New("no PDF parts to merge")
	case 1:
		return Copy(inFiles[0], out)
	}
	if err := api.MergeCreateFile(inFiles, out, false, config()); err != nil {
		return fmt.Errorf("merge %d parts: %w", len(inFiles), err)
	}
	log.Debug().Int("parts", len(inFiles)).Str("out", filepath.Base(out)).Msg("merged PDF parts")
	return nil
}

// ImagesToPDF creates out with one page per image file. Each page takes the
// image's size at dpi, so a 200 DPI render of an A4 page becomes an A4 page.
func ImagesToPDF(imgFiles []string, out string, dpi int) error {
	if len(imgFiles) == 0 {
		return errors.New("no images to import")
	}
	imp, err := api.Import(fmt.Sprintf("pos:full, dpi:%d", dpi), types.POINTS)
	if err != nil {
		return fmt.Errorf("image import config: %w", err)
	}
	if err := api.ImportImagesFile(imgFiles, out, imp, config()); err != nil {
		return fmt.Errorf("import %d images: %w", len(imgFiles), err)
	}
	return nil
}

// Copy duplicates src to dst byte for byte.
func Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
