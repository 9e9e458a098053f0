package policy

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts final authorization verdicts. Register it with a
// prometheus registry and pass it to NewEvaluator.
type Metrics struct {
	verdicts *prometheus.CounterVec
}

// NewMetrics creates the verdict counters.
func NewMetrics() *Metrics {
	return &Metrics{
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "s3authz",
			Subsystem: "policy",
			Name:      "verdicts_total",
			Help:      "Final authorization verdicts by type.",
		}, []string{"verdict", "implicit"}),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.verdicts.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.verdicts.Collect(ch)
}

func (m *Metrics) observe(res Result) {
	m.verdicts.WithLabelValues(string(res.Verdict), strconv.FormatBool(res.Implicit)).Inc()
}
