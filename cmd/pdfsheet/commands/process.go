package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/local/pdfsheet/cmd/pdfsheet/ui"
	"github.com/local/pdfsheet/internal/metrics"
	"github.com/local/pdfsheet/internal/pipeline"
	"github.com/local/pdfsheet/internal/raster"
	"github.com/local/pdfsheet/internal/store"
)

var (
	processOutput     string
	processLayout     int
	processInvert     bool
	processMonochrome bool
	processPreset     string
	processChunkSize  int
	processEngine     string
	processDPI        int
	processNoProgress bool
)

var processCmd = &cobra.Command{
	Use:   "process -o OUTPUT SRC[@PAGES]...",
	Short: "Build one output PDF from the given sources",
	Long: `Build one output PDF from the given sources, in argument order.

Each source may carry an @PAGES suffix naming pages to remove, for example
report.pdf@1,5-7 drops page 1 and pages 5 to 7. Sources may be local paths,
file://, http(s):// or s3://bucket/key references; the output may be a local
path or an s3:// reference.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processOutput, "output", "o", "", "output PDF path or s3:// URL (required)")
	processCmd.Flags().IntVarP(&processLayout, "layout", "n", 1, "pages per sheet (1-4)")
	processCmd.Flags().BoolVar(&processInvert, "invert", false, "invert page colors")
	processCmd.Flags().BoolVar(&processMonochrome, "monochrome", false, "apply the adaptive black and white filter")
	processCmd.Flags().StringVar(&processPreset, "preset", "", "monochrome threshold preset (latest, classic); overrides MONO_PRESET")
	processCmd.Flags().IntVar(&processChunkSize, "chunk-size", 0, "frames per intermediate chunk; overrides CHUNK_SIZE")
	processCmd.Flags().StringVar(&processEngine, "engine", "", "rasterizer engine (gs, mutool, fitz); overrides RASTER_ENGINE")
	processCmd.Flags().IntVar(&processDPI, "dpi", 0, "rasterization resolution; overrides RASTER_DPI")
	processCmd.Flags().BoolVar(&processNoProgress, "no-progress", false, "do not draw a progress bar")
	processCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	sources, err := parseSources(args)
	if err != nil {
		return err
	}

	if processPreset != "" {
		cfg.Filter.Preset = processPreset
	}
	if processChunkSize > 0 {
		cfg.Pipeline.ChunkSize = processChunkSize
	}
	if processEngine != "" {
		cfg.Raster.Engine = processEngine
	}
	if processDPI > 0 {
		cfg.Raster.DPI = processDPI
	}
	thresholds, err := cfg.Filter.Thresholds()
	if err != nil {
		return err
	}

	job := pipeline.Job{
		Sources:    sources,
		Layout:     processLayout,
		Invert:     processInvert,
		Monochrome: processMonochrome,
		Thresholds: thresholds,
		ChunkSize:  cfg.Pipeline.ChunkSize,
		Output:     processOutput,
	}

	deps := pipeline.Dependencies{WorkRoot: cfg.Pipeline.WorkDir, DPI: cfg.Raster.DPI}
	if job.Rasterize() {
		deps.Engine, err = newEngine()
		if err != nil {
			return err
		}
	}
	if cfg.Status.RedisURL != "" {
		rs, err := store.NewRedisStatus(cfg.Status.RedisURL, cfg.Status.TTL)
		if err != nil {
			log.Warn().Err(err).Msg("redis status mirror disabled")
		} else {
			defer rs.Close()
			deps.Status = rs
			job.RunID = uuid.NewString()
			fmt.Fprintf(cmd.ErrOrStderr(), "run %s (pdfsheet status %s)\n", job.RunID, job.RunID)
		}
	}
	if cfg.Metrics.Addr != "" {
		serveMetrics(cfg.Metrics.Addr)
	}
	if n := pipeline.CleanupStale(cfg.Pipeline.WorkDir, cfg.Pipeline.StaleWorkDir); n > 0 {
		log.Info().Int("removed", n).Msg("removed stale working directories")
	}

	events := pipeline.New(deps).Start(context.Background(), job)

	var handle func(pipeline.Event)
	var bar *ui.ProgressBar
	if !processNoProgress {
		bar = ui.NewProgressBar(os.Stderr)
		handle = bar.Handle
	}
	term := pipeline.Drain(events, cfg.Pipeline.PollInterval, handle)
	if bar != nil {
		bar.Finish()
	}

	switch e := term.(type) {
	case pipeline.Success:
		fmt.Fprintln(cmd.OutOrStdout(), e.OutputPath)
		return nil
	case pipeline.Error:
		return errors.New(e.Message)
	}
	return errors.New("run ended without a result")
}

func newEngine() (raster.Engine, error) {
	eng, err := raster.New(raster.Options{
		Engine:     cfg.Raster.Engine,
		GSPath:     cfg.Raster.GSPath,
		MutoolPath: cfg.Raster.MutoolPath,
		DPI:        cfg.Raster.DPI,
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("engine", eng.Name()).Int("dpi", cfg.Raster.DPI).Msg("rasterizer selected")
	return eng, nil
}

func serveMetrics(addr string) {
	metrics.Init()
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	log.Info().Str("addr", addr).Msg("serving /metrics")
}
