package factory

import "github.com/prometheus/client_golang/prometheus"

var (
	// schemaLoads prometheus metric.
	schemaLoads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Type files parsed into schema sets",
			Name:      "schema_loads_total",
			Namespace: "typpo",
		},
	)
	// cacheHits prometheus metric.
	cacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Type file loads served from the schema cache",
			Name:      "schema_cache_hits_total",
			Namespace: "typpo",
		},
	)
)

func init() {
	prometheus.MustRegister(
		schemaLoads,
		cacheHits,
	)
}
