package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfsheet",
			Name:      "runs_total",
			Help:      "Total pipeline runs by result (success, error) and path (fast, raster)",
		},
		[]string{"result", "path"},
	)

	runDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pdfsheet",
			Name:      "run_duration_seconds",
			Help:      "Duration of pipeline runs by result",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"result"},
	)

	pagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfsheet",
			Name:      "pages_processed_total",
			Help:      "Total pages processed by path (fast, raster)",
		},
		[]string{"path"},
	)

	rasterLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pdfsheet",
			Name:      "raster_duration_seconds",
			Help:      "Duration of single page rasterization by engine and result",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"engine", "result"},
	)

	chunksWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdfsheet",
			Name:      "chunks_written_total",
			Help:      "Total intermediate chunk documents written",
		},
	)

	runInProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pdfsheet",
			Name:      "run_in_progress",
			Help:      "1 while a pipeline run is active",
		},
	)
)

// Init registers collectors.
func Init() {
	prometheus.MustRegister(runsTotal, runDuration, pagesProcessed, rasterLatency, chunksWritten, runInProgress)
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func RunStarted() { runInProgress.Set(1) }

func RunFinished(result string, fast bool, dur time.Duration) {
	runInProgress.Set(0)
	runsTotal.WithLabelValues(result, pathLabel(fast)).Inc()
	runDuration.WithLabelValues(result).Observe(dur.Seconds())
}

func IncPages(fast bool, n int) { pagesProcessed.WithLabelValues(pathLabel(fast)).Add(float64(n)) }

func ObserveRaster(engine, result string, dur time.Duration) {
	rasterLatency.WithLabelValues(engine, result).Observe(dur.Seconds())
}

func IncChunk() { chunksWritten.Inc() }

func pathLabel(fast bool) string {
	if fast {
		return "fast"
	}
	return "raster"
}
