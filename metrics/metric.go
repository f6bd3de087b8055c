package metrics

import (
	grpcprometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Registry = prometheus.NewRegistry()

	GRPCMetrics = grpcprometheus.NewClientMetrics(
		func(c *prometheus.CounterOpts) {
			c.Namespace = "HoraeDB"
		},
	)

	RouteCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "HoraeDB",
		Subsystem: "router",
		Name:      "route_cache_hits_total",
		Help:      "Tables resolved from the local route cache.",
	})
	RouteCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "HoraeDB",
		Subsystem: "router",
		Name:      "route_cache_misses_total",
		Help:      "Tables fetched from the remote route service.",
	})
)

func init() {
	Registry.MustRegister(
		GRPCMetrics,
		RouteCacheHits,
		RouteCacheMisses,
	)
	GRPCMetrics.EnableClientHandlingTimeHistogram(
		func(h *prometheus.HistogramOpts) {
			h.Namespace = "HoraeDB"
		},
	)
}
