package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the collector service. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Reports        *prometheus.CounterVec
	Registrations  prometheus.Counter
	Deletions      prometheus.Counter
	IngestDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Reports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetwatch_reports_total",
			Help: "Agent reports received, by entry point and outcome",
		}, []string{"source", "result"}),
		Registrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "fleetwatch_registrations_total",
			Help: "Successful host registrations",
		}),
		Deletions: factory.NewCounter(prometheus.CounterOpts{
			Name: "fleetwatch_deletions_total",
			Help: "Host deletions",
		}),
		IngestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleetwatch_ingest_duration_seconds",
			Help:    "Time spent validating and storing one report",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) ObserveReport(source, result string, took time.Duration) {
	if m == nil {
		return
	}
	m.Reports.WithLabelValues(source, result).Inc()
	m.IngestDuration.Observe(took.Seconds())
}

func (m *Metrics) IncRegistrations() {
	if m == nil {
		return
	}
	m.Registrations.Inc()
}

func (m *Metrics) IncDeletions() {
	if m == nil {
		return
	}
	m.Deletions.Inc()
}
