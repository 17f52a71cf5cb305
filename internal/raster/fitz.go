package raster

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"
)

// Fitz renders in-process through go-fitz (bundled MuPDF). It has no external
// executable, so Check always succeeds.
type Fitz struct {
	DPI int
}

// NewFitz creates an in-process engine rendering at dpi.
func NewFitz(dpi int) *Fitz {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Fitz{DPI: dpi}
}

func (f *Fitz) Name() string { return "go-fitz" }

func (f *Fitz) Check() error { return nil }

func (f *Fitz) Rasterize(ctx context.Context, pdfPath string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, &Error{Engine: f.Name(), Input: pdfPath, Diagnostic: fmt.Sprintf("failed to open PDF: %v", err), Err: err}
	}
	defer doc.Close()

	// go-fitz uses 0-based indexing
	img, err := doc.ImageDPI(0, float64(f.DPI))
	if err != nil {
		return nil, &Error{Engine: f.Name(), Input: pdfPath, Diagnostic: fmt.Sprintf("failed to render page: %v", err), Err: err}
	}
	log.Debug().Str("engine", "fitz").Int("width", img.Bounds().Dx()).Int("height", img.Bounds().Dy()).Msg("rendered page")
	return img, nil
}
