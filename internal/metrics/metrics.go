// Package metrics records one batch run's counters on a private registry
// and dumps them for the node exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cropstats"

type Recorder struct {
	registry *prometheus.Registry

	rows        *prometheus.CounterVec
	artifacts   *prometheus.CounterVec
	bytes       *prometheus.CounterVec
	flags       prometheus.Counter
	stages      *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		// outcome is "accepted" or a skip reason
		rows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Raw table rows by pipeline and outcome",
		}, []string{"pipeline", "outcome"}),
		artifacts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_written_total",
			Help:      "JSON artifacts published",
		}, []string{"pipeline"}),
		bytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_bytes_total",
			Help:      "Bytes of JSON artifacts published",
		}, []string{"pipeline"}),
		flags: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grain",
			Name:      "implausible_within_total",
			Help:      "Transitions whose within-crop effect exceeds the average yield change plus margin",
		}),
		stages: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time per pipeline stage",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}, []string{"pipeline", "stage"}),
		lastSuccess: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last completed run",
		}, []string{"pipeline"}),
	}
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) Rows(pipeline, outcome string, n int) {
	if n > 0 {
		r.rows.WithLabelValues(pipeline, outcome).Add(float64(n))
	}
}

func (r *Recorder) Artifact(pipeline string, size int) {
	r.artifacts.WithLabelValues(pipeline).Inc()
	r.bytes.WithLabelValues(pipeline).Add(float64(size))
}

func (r *Recorder) ImplausibleWithin(n int) {
	r.flags.Add(float64(n))
}

// Stage starts timing a stage. Call the returned func when it ends.
func (r *Recorder) Stage(pipeline, stage string) func() {
	timer := prometheus.NewTimer(r.stages.WithLabelValues(pipeline, stage))
	return func() { timer.ObserveDuration() }
}

func (r *Recorder) Success(pipeline string, at time.Time) {
	r.lastSuccess.WithLabelValues(pipeline).Set(float64(at.Unix()))
}

// WriteFile writes every metric in the text exposition format. The file is
// replaced atomically.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}
