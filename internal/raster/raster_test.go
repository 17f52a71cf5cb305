package raster

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls  [][]string
	stdout string
	stderr string
	err    error
	// write controls whether a PNG is written to the -o target.
	write bool
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.write {
		for _, a := range args {
			if strings.HasPrefix(a, "-o") && len(a) > 2 {
				writePNG(a[2:])
			}
		}
	}
	return []byte(f.stdout), []byte(f.stderr), f.err
}

func writePNG(path string) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()
	_ = png.Encode(f, img)
}

func newTestGS(r CommandRunner) *Ghostscript {
	return &Ghostscript{
		Path:     "",
		DPI:      DefaultDPI,
		runner:   r,
		lookPath: func(name string) (string, error) { return "/usr/bin/" + name, nil },
	}
}

func inputPDF(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "single_page.pdf")
	require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4\n"), 0o644))
	return p
}

func TestGhostscript_Args(t *testing.T) {
	g := newTestGS(&fakeRunner{})
	args := g.Args("in.pdf", "out.png")
	assert.Contains(t, args, "-sDEVICE=png16m")
	assert.Contains(t, args, "-r200")
	assert.Contains(t, args, "-dSAFER")
	assert.Contains(t, args, "-oout.png")
	assert.Equal(t, "in.pdf", args[len(args)-1])
}

func TestGhostscript_RasterizeSuccess(t *testing.T) {
	r := &fakeRunner{write: true}
	g := newTestGS(r)
	in := inputPDF(t)

	img, err := g.Rasterize(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	require.Len(t, r.calls, 1)
	assert.True(t, strings.HasSuffix(r.calls[0][0], "gs"))
	_, statErr := os.Stat(strings.TrimSuffix(in, ".pdf") + ".png")
	assert.True(t, os.IsNotExist(statErr), "rendered PNG should be removed")
}

func TestGhostscript_NonZeroExitUsesStderr(t *testing.T) {
	r := &fakeRunner{stderr: "Error: /syntaxerror in --token--", stdout: "ignored", err: errors.New("exit status 1")}
	g := newTestGS(r)

	_, err := g.Rasterize(context.Background(), inputPDF(t))
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "Error: /syntaxerror in --token--", rerr.Diagnostic)
	assert.Contains(t, err.Error(), "Ghostscript failed")
}

func TestGhostscript_NonZeroExitFallsBackToStdout(t *testing.T) {
	r := &fakeRunner{stdout: "Unrecoverable error", err: errors.New("exit status 1")}
	_, err := newTestGS(r).Rasterize(context.Background(), inputPDF(t))
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "Unrecoverable error", rerr.Diagnostic)
}

func TestGhostscript_MissingOutput(t *testing.T) {
	r := &fakeRunner{write: false}
	_, err := newTestGS(r).Rasterize(context.Background(), inputPDF(t))
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, rerr.Diagnostic, "output image not produced")
}

func TestGhostscript_CheckUnavailable(t *testing.T) {
	g := newTestGS(&fakeRunner{})
	g.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	err := g.Check()
	assert.ErrorIs(t, err, ErrEngineUnavailable)

	_, err = g.Rasterize(context.Background(), "x.pdf")
	assert.ErrorIs(t, err, ErrEngineUnavailable)
}

func TestGhostscript_CheckExplicitPath(t *testing.T) {
	exe := filepath.Join(t.TempDir(), "gs-custom")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	g := newTestGS(&fakeRunner{})
	g.Path = exe
	require.NoError(t, g.Check())
	assert.Equal(t, exe, g.resolved)
}

func TestMutool_Args(t *testing.T) {
	m := &Mutool{DPI: 200, runner: &fakeRunner{}, lookPath: exec.LookPath}
	assert.Equal(t, []string{"draw", "-q", "-r", "200", "-c", "rgb", "-o", "p.png", "p.pdf", "1"}, m.Args("p.pdf", "p.png"))
}

func TestMutool_Failure(t *testing.T) {
	m := &Mutool{DPI: 200, runner: &fakeRunner{stderr: "error: cannot open document", err: errors.New("exit status 1")},
		lookPath: func(string) (string, error) { return "/usr/bin/mutool", nil }}
	_, err := m.Rasterize(context.Background(), inputPDF(t))
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "MuPDF", rerr.Engine)
	assert.Equal(t, "error: cannot open document", rerr.Diagnostic)
}

func TestNew(t *testing.T) {
	for engine, want := range map[string]string{"": "Ghostscript", "gs": "Ghostscript", "mutool": "MuPDF", "fitz": "go-fitz"} {
		e, err := New(Options{Engine: engine})
		require.NoError(t, err)
		assert.Equal(t, want, e.Name())
	}
	_, err := New(Options{Engine: "poppler"})
	assert.Error(t, err)
}

func TestDiagnostic(t *testing.T) {
	assert.Equal(t, "No error output.", diagnostic(nil, nil, nil))
	assert.Equal(t, "boom", diagnostic(nil, []byte(" \n"), errors.New("boom")))
}
