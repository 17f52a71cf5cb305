package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/pdfsheet/internal/colorfilter"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"RASTER_ENGINE", "RASTER_DPI", "CHUNK_SIZE", "POLL_INTERVAL", "MONO_PRESET", "REDIS_URL", "MONO_NEAR_WHITE_THRESHOLD"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	assert.Equal(t, "gs", cfg.Raster.Engine)
	assert.Equal(t, 200, cfg.Raster.DPI)
	assert.Equal(t, 20, cfg.Pipeline.ChunkSize)
	assert.Equal(t, 100*time.Millisecond, cfg.Pipeline.PollInterval)
	assert.Empty(t, cfg.Status.RedisURL)

	th, err := cfg.Filter.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, colorfilter.DefaultThresholds, th)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("RASTER_ENGINE", "mutool")
	t.Setenv("CHUNK_SIZE", "0")
	t.Setenv("POLL_INTERVAL", "250ms")
	t.Setenv("MONO_PRESET", "classic")
	t.Setenv("MONO_NEAR_WHITE_THRESHOLD", "200")
	t.Setenv("LOG_PRETTY", "yes")

	cfg := FromEnv()
	assert.Equal(t, "mutool", cfg.Raster.Engine)
	assert.Equal(t, 20, cfg.Pipeline.ChunkSize, "non-positive chunk size falls back")
	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.PollInterval)
	assert.True(t, cfg.Logging.Pretty)

	th, err := cfg.Filter.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, colorfilter.Thresholds{Saturation: 50, LightText: 128, NearWhite: 200}, th)
}

func TestFilterThresholds_Invalid(t *testing.T) {
	_, err := FilterConfig{Preset: "sepia", SaturationThreshold: -1, LightTextThreshold: -1, NearWhiteThreshold: -1}.Thresholds()
	assert.Error(t, err)

	_, err = FilterConfig{Preset: "latest", SaturationThreshold: 300, LightTextThreshold: -1, NearWhiteThreshold: -1}.Thresholds()
	assert.ErrorContains(t, err, "MONO_SATURATION_THRESHOLD")
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 7, parseInt(" 7 ", 1))
	assert.Equal(t, 1, parseInt("x", 1))
	assert.False(t, parseBool("off"))
	assert.Equal(t, time.Second, parseDuration("bogus", time.Second))
}
