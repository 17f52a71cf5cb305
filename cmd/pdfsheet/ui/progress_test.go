package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/local/pdfsheet/internal/pipeline"
)

func TestTimeLabel(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start.Add(65 * time.Second)

	assert.Equal(t, "Elapsed: 01:05  |  ETA: --:--", TimeLabel(pipeline.Progress{Current: 0, Total: 4, Start: start}, now))
	assert.Equal(t, "Elapsed: 01:05  |  ETA: 03:15", TimeLabel(pipeline.Progress{Current: 1, Total: 4, Start: start}, now))
	assert.Equal(t, "1:00:00", clock(time.Hour))
}

func TestProgressBar_Handle(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressBar(&buf)
	p.Handle(pipeline.Status{Text: "Selecting pages..."})
	p.Handle(pipeline.Progress{Current: 2, Total: 8, Start: time.Now()})
	assert.Equal(t, int64(8), p.bar.GetMax64())
	p.Finish()
	assert.NotEmpty(t, buf.String())
}
