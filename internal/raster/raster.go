// Package raster turns single-page PDFs into bitmaps through an external
// rendering engine.
//
// Every call renders exactly one page and blocks until the engine exits. A page
// that fails to render fails only its own call; callers decide whether that
// aborts the surrounding run.
package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strings"
)

// DefaultDPI is the output resolution used for every page.
const DefaultDPI = 200

// ErrEngineUnavailable is returned by Check when the engine cannot be found.
var ErrEngineUnavailable = errors.New("rasterizer engine unavailable")

// Rasterizer renders the single page of a one-page PDF.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath string) (image.Image, error)
}

// Engine is a Rasterizer that can verify its own availability up front.
type Engine interface {
	Rasterizer
	Name() string
	Check() error
}

// Error reports a failed render. Diagnostic holds the engine's error stream,
// or its standard output when the error stream was empty.
type Error struct {
	Engine     string
	Input      string
	Diagnostic string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed:\n\n%s", e.Engine, e.Diagnostic)
}

func (e *Error) Unwrap() error { return e.Err }

// CommandRunner executes an external program and returns its captured output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	hideWindow(cmd)
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// diagnostic picks the stream to report for a failed command.
func diagnostic(stdout, stderr []byte, err error) string {
	if s := strings.TrimSpace(string(stderr)); s != "" {
		return s
	}
	if s := strings.TrimSpace(string(stdout)); s != "" {
		return s
	}
	if err != nil {
		return err.Error()
	}
	return "No error output."
}

// Options configures New.
type Options struct {
	// Engine is one of "gs" (default), "mutool" or "fitz".
	Engine     string
	GSPath     string
	MutoolPath string
	DPI        int
	Runner     CommandRunner
}

// New builds the engine selected by opts. Executable resolution happens in
// Check, not here.
func New(opts Options) (Engine, error) {
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	switch strings.ToLower(opts.Engine) {
	case "", "gs", "ghostscript":
		return &Ghostscript{Path: opts.GSPath, DPI: opts.DPI, runner: opts.Runner, lookPath: exec.LookPath}, nil
	case "mutool", "mupdf":
		return &Mutool{Path: opts.MutoolPath, DPI: opts.DPI, runner: opts.Runner, lookPath: exec.LookPath}, nil
	case "fitz", "go-fitz":
		return NewFitz(opts.DPI), nil
	default:
		return nil, fmt.Errorf("unknown rasterizer engine %q", opts.Engine)
	}
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
