package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"MarketScanner/internal/model"
)

// Recorder exports scan and provider metrics on its own registry.
type Recorder struct {
	reg          *prometheus.Registry
	fetches      *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	scans        prometheus.Counter
	scanDuration prometheus.Histogram
	signals      *prometheus.GaugeVec
	failures     prometheus.Gauge
	lastScan     prometheus.Gauge
}

// New creates a recorder with a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		reg: reg,
		fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scanner_provider_requests_total",
				Help: "Provider calls by source and outcome",
			},
			[]string{"source", "status"},
		),
		fetchLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scanner_provider_request_duration_seconds",
				Help:    "Duration of provider calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		scans: factory.NewCounter(prometheus.CounterOpts{
			Name: "scanner_runs_total",
			Help: "Completed scans",
		}),
		scanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanner_run_duration_seconds",
			Help:    "Wall time of a full scan",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		signals: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scanner_signals",
				Help: "Rows per category in the last scan",
			},
			[]string{"category"},
		),
		failures: factory.NewGauge(prometheus.GaugeOpts{
			Name: "scanner_source_failures",
			Help: "Skipped provider calls in the last scan",
		}),
		lastScan: factory.NewGauge(prometheus.GaugeOpts{
			Name: "scanner_last_run_timestamp_seconds",
			Help: "Unix time of the last completed scan",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// RecordFetch counts one provider call.
func (r *Recorder) RecordFetch(source string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.fetches.WithLabelValues(source, status).Inc()
	r.fetchLatency.WithLabelValues(source).Observe(elapsed.Seconds())
}

// RecordScan publishes the shape of a finished bundle.
func (r *Recorder) RecordScan(b *model.ScanBundle) {
	r.scans.Inc()
	r.scanDuration.Observe(b.Duration.Seconds())
	r.lastScan.Set(float64(b.ScanTime.Unix()))
	r.failures.Set(float64(len(b.Failures)))

	r.signals.WithLabelValues("momentum").Set(float64(len(b.Momentum)))
	r.signals.WithLabelValues("technicals").Set(float64(len(b.Technicals)))
	r.signals.WithLabelValues("options").Set(float64(len(b.Options)))
	r.signals.WithLabelValues("news").Set(float64(len(b.News)))
	r.signals.WithLabelValues("premarket").Set(float64(len(b.Premarket)))
	r.signals.WithLabelValues("earnings").Set(float64(len(b.Earnings)))
	r.signals.WithLabelValues("macro").Set(float64(len(b.MacroEvents)))
	r.signals.WithLabelValues("sector_earnings").Set(float64(len(b.SectorEarnings)))
}
