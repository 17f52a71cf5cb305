package raster

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Mutool renders pages with MuPDF's command line tool.
type Mutool struct {
	Path string
	DPI  int

	runner   CommandRunner
	lookPath func(string) (string, error)
	resolved string
}

func (m *Mutool) Name() string { return "MuPDF" }

// Check verifies mutool is available.
func (m *Mutool) Check() error {
	if m.resolved != "" {
		return nil
	}
	name := m.Path
	if name == "" {
		name = "mutool"
	}
	if fileExists(name) {
		m.resolved = name
		return nil
	}
	p, err := m.lookPath(name)
	if err != nil {
		return fmt.Errorf("%w: %s not found in PATH", ErrEngineUnavailable, name)
	}
	m.resolved = p
	return nil
}

func (m *Mutool) Args(in, out string) []string {
	return []string{"draw", "-q", "-r", strconv.Itoa(m.DPI), "-c", "rgb", "-o", out, in, "1"}
}

func (m *Mutool) Rasterize(ctx context.Context, pdfPath string) (image.Image, error) {
	if err := m.Check(); err != nil {
		return nil, err
	}
	out := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".png"
	_ = os.Remove(out)
	defer os.Remove(out)

	stdout, stderr, err := m.runner.Run(ctx, m.resolved, m.Args(pdfPath, out)...)
	if err != nil {
		return nil, &Error{Engine: m.Name(), Input: pdfPath, Diagnostic: diagnostic(stdout, stderr, err), Err: err}
	}
	img, err := decodePNG(out)
	if err != nil {
		return nil, &Error{Engine: m.Name(), Input: pdfPath, Diagnostic: diagnostic(stdout, stderr, err), Err: err}
	}
	log.Debug().Str("engine", "mutool").Str("input", filepath.Base(pdfPath)).Msg("rendered page")
	return img, nil
}
