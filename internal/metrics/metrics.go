// Package metrics counts what a batch run did and writes it out in the
// Prometheus text format for the node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"img2text/internal/ocr"
)

type Collector struct {
	reg *prometheus.Registry

	imagesTotal        *prometheus.CounterVec
	extractionDuration prometheus.Histogram
	saveFailures       prometheus.Counter
	lastRun            prometheus.Gauge
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Collector{
		reg: reg,
		imagesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "img2text_images_total",
				Help: "Images processed, by outcome",
			},
			[]string{"status"}, // success, not_found, call_failed
		),
		extractionDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "img2text_extraction_duration_seconds",
				Help:    "Time spent loading one image and calling the vision model",
				Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 25, 50, 100},
			},
		),
		saveFailures: f.NewCounter(
			prometheus.CounterOpts{
				Name: "img2text_document_save_failures_total",
				Help: "Output documents that could not be written",
			},
		),
		lastRun: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "img2text_last_run_timestamp_seconds",
				Help: "Unix time the last run finished saving its document",
			},
		),
	}
}

func (c *Collector) ObserveResult(status ocr.Status, took time.Duration) {
	c.imagesTotal.WithLabelValues(status.String()).Inc()
	c.extractionDuration.Observe(took.Seconds())
}

func (c *Collector) ObserveSave(err error) {
	if err != nil {
		c.saveFailures.Inc()
	}
	c.lastRun.SetToCurrentTime()
}

// Gatherer exposes the underlying registry.
func (c *Collector) Gatherer() prometheus.Gatherer { return c.reg }

// WriteTextfile atomically writes all metrics to path.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.reg)
}
