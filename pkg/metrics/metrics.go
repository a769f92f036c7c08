// Package metrics provides the Prometheus collectors of the bridge.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Push outcomes.
const (
	ResultLaunched = "launched"
	ResultFailed   = "failed"
)

// Metrics contains all Prometheus metrics exported by the service.
type Metrics struct {
	PushTotal         *prometheus.CounterVec // by result
	MappingTotal      *prometheus.CounterVec // by mapping rule
	LaunchErrors      *prometheus.CounterVec // by reason
	AuditErrors       prometheus.Counter
	PushDuration      prometheus.Histogram
	ExecutablePresent prometheus.Gauge

	registry *prometheus.Registry
}

// New creates the metrics and registers them on registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register fnplayer metrics: %w", err)
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.PushTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fnplayer_push_requests_total",
			Help: "Total number of push requests partitioned by outcome.",
		},
		[]string{"result"},
	)
	m.MappingTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fnplayer_path_mappings_total",
			Help: "Total number of web path mappings partitioned by the rule that matched.",
		},
		[]string{"rule"},
	)
	m.LaunchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fnplayer_launch_errors_total",
			Help: "Total number of failed player launches partitioned by reason.",
		},
		[]string{"reason"},
	)
	m.AuditErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fnplayer_audit_write_errors_total",
			Help: "Total number of audit records that could not be written.",
		},
	)
	m.PushDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fnplayer_push_duration_seconds",
			Help:    "Time taken to handle a push, including process creation.",
			Buckets: prometheus.DefBuckets,
		},
	)
	m.ExecutablePresent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fnplayer_player_executable_present",
			Help: "1 if the configured player executable exists, 0 otherwise.",
		},
	)
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.PushTotal.Describe(ch)
	m.MappingTotal.Describe(ch)
	m.LaunchErrors.Describe(ch)
	m.AuditErrors.Describe(ch)
	m.PushDuration.Describe(ch)
	m.ExecutablePresent.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.PushTotal.Collect(ch)
	m.MappingTotal.Collect(ch)
	m.LaunchErrors.Collect(ch)
	m.AuditErrors.Collect(ch)
	m.PushDuration.Collect(ch)
	m.ExecutablePresent.Collect(ch)
}

// Registry returns the registry the metrics were registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
