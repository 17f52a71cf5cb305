// Package ui renders pipeline events on the terminal.
package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/local/pdfsheet/internal/pipeline"
)

// ProgressBar shows page progress and the current phase.
type ProgressBar struct {
	bar *progressbar.ProgressBar
	out io.Writer
}

// NewProgressBar creates a bar writing to out. The total is set by the first
// progress event.
func NewProgressBar(out io.Writer) *ProgressBar {
	bar := progressbar.NewOptions64(
		-1,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Starting..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &ProgressBar{bar: bar, out: out}
}

// Handle updates the bar for one event.
func (p *ProgressBar) Handle(ev pipeline.Event) {
	switch e := ev.(type) {
	case pipeline.Status:
		p.bar.Describe(e.Text)
	case pipeline.Progress:
		if int64(e.Total) != p.bar.GetMax64() {
			p.bar.ChangeMax64(int64(e.Total))
		}
		_ = p.bar.Set64(int64(e.Current))
		p.bar.Describe(TimeLabel(e, time.Now()))
	}
}

// Finish completes the bar and moves to a new line.
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
	fmt.Fprintln(p.out)
}

// TimeLabel renders "Elapsed: MM:SS  |  ETA: MM:SS" for p at now.
func TimeLabel(p pipeline.Progress, now time.Time) string {
	eta := "--:--"
	if d, ok := p.ETA(now); ok {
		eta = clock(d)
	}
	return fmt.Sprintf("Elapsed: %s  |  ETA: %s", clock(p.Elapsed(now)), eta)
}

func clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int(d.Round(time.Second) / time.Second)
	if s >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", s/3600, s/60%60, s%60)
	}
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
