// Package obs wires the collection and database operations to Prometheus
// metrics.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every series a Database emits when metrics are enabled.
type Metrics struct {
	VectorInserts prometheus.Counter
	VectorUpserts prometheus.Counter
	VectorDeletes prometheus.Counter
	SearchQueries prometheus.Counter
	SearchErrors  prometheus.Counter
	SearchLatency prometheus.Histogram
}

// NewMetrics registers and returns a fresh set of metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		VectorInserts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "surgedb_vector_inserts_total",
			Help: "Total vector insertions across all collections",
		}),
		VectorUpserts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "surgedb_vector_upserts_total",
			Help: "Total vector upserts across all collections",
		}),
		VectorDeletes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "surgedb_vector_deletes_total",
			Help: "Total vector deletions across all collections",
		}),
		SearchQueries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "surgedb_search_queries_total",
			Help: "Total search queries across all collections",
		}),
		SearchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "surgedb_search_errors_total",
			Help: "Total search queries that returned an error",
		}),
		SearchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "surgedb_search_latency_seconds",
			Help: "Search latency in seconds",
		}),
	}
}
