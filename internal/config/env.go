package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// RasterConfig selects and locates the rasterizer.
type RasterConfig struct {
	Engine     string // "gs"|"mutool"|"fitz"
	GSPath     string
	MutoolPath string
	DPI        int
}

// FilterConfig holds the adaptive monochrome thresholds.
type FilterConfig struct {
	Preset              string
	SaturationThreshold int
	LightTextThreshold  int
	NearWhiteThreshold  int
}

// PipelineConfig defines run behavior.
type PipelineConfig struct {
	ChunkSize    int
	WorkDir      string
	PollInterval time.Duration
	StaleWorkDir time.Duration
}

// StatusConfig configures the optional Redis status mirror.
type StatusConfig struct {
	RedisURL string
	TTL      time.Duration
}

// MetricsConfig configures the optional Prometheus endpoint.
type MetricsConfig struct {
	Addr string
}

// Config is the top-level configuration.
type Config struct {
	Logging  LoggingConfig
	Axiom    AxiomConfig
	Raster   RasterConfig
	Filter   FilterConfig
	Pipeline PipelineConfig
	Status   StatusConfig
	Metrics  MetricsConfig
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", ""),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_pdfsheet",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Raster = RasterConfig{
		Engine:     getEnv("RASTER_ENGINE", "gs"),
		GSPath:     getEnv("GS_PATH", ""),
		MutoolPath: getEnv("MUTOOL_PATH", ""),
		DPI:        parseInt(getEnv("RASTER_DPI", "200"), 200),
	}

	cfg.Filter = FilterConfig{
		Preset:              getEnv("MONO_PRESET", "latest"),
		SaturationThreshold: parseInt(getEnv("MONO_SATURATION_THRESHOLD", ""), -1),
		LightTextThreshold:  parseInt(getEnv("MONO_LIGHT_TEXT_THRESHOLD", ""), -1),
		NearWhiteThreshold:  parseInt(getEnv("MONO_NEAR_WHITE_THRESHOLD", ""), -1),
	}

	cfg.Pipeline = PipelineConfig{
		ChunkSize:    parseInt(getEnv("CHUNK_SIZE", "20"), 20),
		WorkDir:      getEnv("WORK_DIR", ""),
		PollInterval: parseDuration(getEnv("POLL_INTERVAL", "100ms"), 100*time.Millisecond),
		StaleWorkDir: parseDuration(getEnv("STALE_WORK_DIR_AGE", "24h"), 24*time.Hour),
	}
	if cfg.Pipeline.ChunkSize <= 0 {
		cfg.Pipeline.ChunkSize = 20
	}

	cfg.Status = StatusConfig{
		RedisURL: getEnv("REDIS_URL", ""),
		TTL:      parseDuration(getEnv("STATUS_TTL", "24h"), 24*time.Hour),
	}

	cfg.Metrics = MetricsConfig{Addr: getEnv("METRICS_ADDR", "")}

	return cfg
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "dev" || env == "development" || env == "local" {
		return "true"
	}
	return "false"
}
