package raster

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
)

// Ghostscript renders pages with the gs png16m device (24-bit RGB).
type Ghostscript struct {
	// Path is an explicit executable; empty means discover it.
	Path string
	DPI  int

	runner   CommandRunner
	lookPath func(string) (string, error)
	resolved string
}

// Name identifies the engine in diagnostics.
func (g *Ghostscript) Name() string { return "Ghostscript" }

// ghostscriptNames lists executable names to look for on this platform.
func ghostscriptNames() []string {
	if runtime.GOOS == "windows" {
		return []string{"gswin64c.exe", "gswin32c.exe"}
	}
	return []string{"gs"}
}

// Check resolves the executable: explicit Path, then a bundled gs_bin
// directory next to the running binary, then PATH.
func (g *Ghostscript) Check() error {
	if g.resolved != "" {
		return nil
	}
	if g.Path != "" {
		if fileExists(g.Path) {
			g.resolved = g.Path
			return nil
		}
		if p, err := g.lookPath(g.Path); err == nil {
			g.resolved = p
			return nil
		}
		return fmt.Errorf("%w: ghostscript not found at %s", ErrEngineUnavailable, g.Path)
	}
	if exe, err := os.Executable(); err == nil {
		for _, name := range ghostscriptNames() {
			bundled := filepath.Join(filepath.Dir(exe), "gs_bin", name)
			if fileExists(bundled) {
				g.resolved = bundled
				return nil
			}
		}
	}
	for _, name := range ghostscriptNames() {
		if p, err := g.lookPath(name); err == nil {
			g.resolved = p
			return nil
		}
	}
	return fmt.Errorf("%w: ghostscript (%s) not found in PATH", ErrEngineUnavailable, strings.Join(ghostscriptNames(), ", "))
}

// Args returns the gs command line for one page.
func (g *Ghostscript) Args(in, out string) []string {
	return []string{
		"-dQUIET", "-dSAFER", "-dBATCH", "-dNOPAUSE",
		"-sDEVICE=png16m",
		fmt.Sprintf("-r%d", g.DPI),
		"-o" + out,
		in,
	}
}

// Rasterize renders pdfPath to a sibling PNG, decodes it and removes the file.
func (g *Ghostscript) Rasterize(ctx context.Context, pdfPath string) (image.Image, error) {
	if err := g.Check(); err != nil {
		return nil, err
	}
	out := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".png"
	_ = os.Remove(out)
	defer os.Remove(out)

	stdout, stderr, err := g.runner.Run(ctx, g.resolved, g.Args(pdfPath, out)...)
	if err != nil {
		return nil, &Error{Engine: g.Name(), Input: pdfPath, Diagnostic: diagnostic(stdout, stderr, err), Err: err}
	}
	img, err := decodePNG(out)
	if err != nil {
		return nil, &Error{Engine: g.Name(), Input: pdfPath, Diagnostic: diagnostic(stdout, stderr, err), Err: err}
	}
	log.Debug().Str("engine", "gs").Str("input", filepath.Base(pdfPath)).
		Int("width", img.Bounds().Dx()).Int("height", img.Bounds().Dy()).Msg("rendered page")
	return img, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("output image not produced: %w", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode rendered page: %w", err)
	}
	return img, nil
}
