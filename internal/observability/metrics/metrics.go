// Package metrics provides Prometheus metrics for a validation run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "species_validator"

// Metrics holds all Prometheus metrics for one run. Each instance owns its
// registry so a run can be exported without process-wide collectors.
type Metrics struct {
	registry *prometheus.Registry

	// File metrics
	FilesChecked prometheus.Counter
	FilesInvalid prometheus.Counter

	// Violation metrics
	Violations *prometheus.CounterVec

	// Run metrics
	RunDuration       prometheus.Gauge
	RunSuccess        prometheus.Gauge
	LastRunTime       prometheus.Gauge
	OperationalErrors prometheus.Counter

	// Event publish metrics
	PublishTotal  *prometheus.CounterVec
	PublishErrors *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		FilesChecked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_checked_total",
			Help:      "Number of species files validated",
		}),
		FilesInvalid: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_invalid_total",
			Help:      "Number of species files with at least one violation",
		}),

		Violations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violations_total",
			Help:      "Schema violations by keyword",
		}, []string{"keyword"}),

		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last validation run",
		}),
		RunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_success",
			Help:      "1 if every species file conformed to the schema, 0 otherwise",
		}),
		LastRunTime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last validation run finished",
		}),
		OperationalErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operational_errors_total",
			Help:      "Runs aborted by an unreadable schema or data file",
		}),

		PublishTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Result events handed to the publisher",
		}, []string{"event_type"}),
		PublishErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_publish_errors_total",
			Help:      "Result events that failed to publish",
		}, []string{"event_type"}),
	}
}

// RecordFile records one validated file and its violations.
func (m *Metrics) RecordFile(keywords []string) {
	m.FilesChecked.Inc()
	if len(keywords) == 0 {
		return
	}
	m.FilesInvalid.Inc()
	for _, kw := range keywords {
		if kw == "" {
			kw = "unknown"
		}
		m.Violations.WithLabelValues(kw).Inc()
	}
}

// RecordRun records the outcome of a completed run.
func (m *Metrics) RecordRun(success bool, durationSeconds float64, finishedUnix float64) {
	m.RunDuration.Set(durationSeconds)
	m.LastRunTime.Set(finishedUnix)
	if success {
		m.RunSuccess.Set(1)
	} else {
		m.RunSuccess.Set(0)
	}
}

// RecordOperationalError records a run aborted by an operational failure.
func (m *Metrics) RecordOperationalError() {
	m.OperationalErrors.Inc()
	m.RunSuccess.Set(0)
}

// RecordPublish records a result event publish attempt.
func (m *Metrics) RecordPublish(eventType string, err error) {
	m.PublishTotal.WithLabelValues(eventType).Inc()
	if err != nil {
		m.PublishErrors.WithLabelValues(eventType).Inc()
	}
}

// WriteTextfile writes the current metrics in the text exposition format,
// for the node exporter textfile collector. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
