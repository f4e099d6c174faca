package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every prometheus collector the server exposes, labeled only
// by lane and outcome per spec.md §4.G — never by address, index, or any
// other value that could leak which entry a client queried.
type Metrics struct {
	QueriesTotal   *prometheus.CounterVec
	QueryDuration  *prometheus.HistogramVec
	ReloadsTotal   *prometheus.CounterVec
	Subscriptions  prometheus.Gauge
}

// NewMetrics registers every collector against reg (pass
// prometheus.DefaultRegisterer in production, a fresh registry in tests).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pir_queries_total",
			Help: "Total PIR queries handled, by lane and outcome.",
		}, []string{"lane", "outcome"}),
		QueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pir_query_duration_seconds",
			Help:    "PIR query handling latency, by lane.",
			Buckets: prometheus.DefBuckets,
		}, []string{"lane"}),
		ReloadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pir_reloads_total",
			Help: "Total snapshot reloads, by outcome.",
		}, []string{"outcome"}),
		Subscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pir_index_subscriptions",
			Help: "Current number of open /index/subscribe websocket connections.",
		}),
	}
}
