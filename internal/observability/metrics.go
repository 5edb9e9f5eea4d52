package observability

import "github.com/prometheus/client_golang/prometheus"

const namespace = "disruption_monitor"

// Metrics holds the Prometheus instruments for the refresh machinery.
type Metrics struct {
	RefreshTotal      *prometheus.CounterVec // labels: postal_code, outcome={success,network_error,unexpected_error}
	RefreshDuration   prometheus.Histogram
	DroppedTriggers   prometheus.Counter
	RecordsParsed     *prometheus.CounterVec // label: section
	ActiveDisruptions *prometheus.GaugeVec   // labels: postal_code, section
}

// NewMetrics creates and registers all instruments with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RefreshTotal,
		m.RefreshDuration,
		m.DroppedTriggers,
		m.RecordsParsed,
		m.ActiveDisruptions,
	)
	return m
}

// NewMetricsForTesting creates unregistered instruments so parallel tests do
// not trip "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Refresh attempts by location and outcome.",
		}, []string{"postal_code", "outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of one fetch-parse-aggregate cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		DroppedTriggers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_triggers_total",
			Help:      "Refresh triggers dropped because a fetch was already in flight.",
		}),
		RecordsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_parsed_total",
			Help:      "Disruption records extracted from the page by section.",
		}, []string{"section"}),
		ActiveDisruptions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_disruptions",
			Help:      "Disruptions in the latest snapshot by location and section.",
		}, []string{"postal_code", "section"}),
	}
}
