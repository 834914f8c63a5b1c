package readmodel

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts cache hits and misses per logical query key.
type Metrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blogward",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Read model cache hits by query key.",
		}, []string{"query"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blogward",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Read model cache misses by query key.",
		}, []string{"query"}),
	}

	reg.MustRegister(m.hits, m.misses)

	return m
}

func (m *Metrics) hit(key QueryKey) {
	m.hits.WithLabelValues(string(key)).Inc()
}

func (m *Metrics) miss(key QueryKey) {
	m.misses.WithLabelValues(string(key)).Inc()
}
