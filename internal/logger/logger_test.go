package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/axiomhq/axiom-go/axiom/ingest"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSONToConsoleAndFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "pdfsheet.log")
	require.NoError(t, Init(Options{Level: "debug", File: file, MaxSizeMB: 1, Console: &buf}))
	defer Close()

	log.Info().Str("run_id", "r1").Msg("run started")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "run started", line["message"])
	assert.Equal(t, "pdfsheet", line["service"])
	assert.Equal(t, "r1", line["run_id"])

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "run started")
}

func TestInit_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Level: "warn", Console: &buf}))
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestAxiomEvent(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	_, ok := axiomEvent([]byte(`{"level":"debug","message":"x"}`), now)
	assert.False(t, ok)

	ev, ok := axiomEvent([]byte(`{"level":"error","message":"boom"}`), now)
	require.True(t, ok)
	assert.Equal(t, "pdfsheet", ev["service"])
	assert.Equal(t, now, ev[ingest.TimestampField])

	ev, ok = axiomEvent([]byte("not json"), now)
	require.True(t, ok)
	assert.Equal(t, "not json", ev["message"])
}
