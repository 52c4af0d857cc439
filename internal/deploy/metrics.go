package deploy

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Deploy paths used as metric labels.
const (
	PathRemote = "remote"
	PathDirect = "direct"
)

// Metrics counts deploy attempts. Each instance owns its registry so the CLI
// can dump one run to a node-exporter textfile.
type Metrics struct {
	registry  *prometheus.Registry
	attempts  prometheus.Counter
	rejected  prometheus.Counter
	fallbacks prometheus.Counter
	outcomes  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics registers the deploy metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokenforge",
			Subsystem: "deploy",
			Name:      "attempts_total",
			Help:      "Deploy attempts that passed the single-flight guard.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokenforge",
			Subsystem: "deploy",
			Name:      "rejected_in_progress_total",
			Help:      "Deploy calls rejected because another attempt was running.",
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tokenforge",
			Subsystem: "deploy",
			Name:      "fallbacks_total",
			Help:      "Attempts that switched to a direct deploy.",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenforge",
			Subsystem: "deploy",
			Name:      "outcomes_total",
			Help:      "Terminal deploy outcomes by path and failure kind.",
		}, []string{"path", "outcome", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tokenforge",
			Subsystem: "deploy",
			Name:      "duration_seconds",
			Help:      "Time from attempt start to terminal state.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"path", "outcome"}),
	}
	m.registry.MustRegister(m.attempts, m.rejected, m.fallbacks, m.outcomes, m.duration)
	return m
}

// Registry exposes the registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes the current values in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observe(path string, success bool, kind string, seconds float64) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.outcomes.WithLabelValues(path, outcome, kind).Inc()
	m.duration.WithLabelValues(path, outcome).Observe(seconds)
}
