package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheHits counts cache-aside hits by entity type.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_cache_hits_total",
		Help: "Total number of cache hits by entity type",
	}, []string{"entity"})

	// CacheMisses counts cache-aside misses by entity type.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_cache_misses_total",
		Help: "Total number of cache misses by entity type",
	}, []string{"entity"})

	// ValidationFailures counts rejected writes by resource and field.
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_validation_failures_total",
		Help: "Total number of rejected writes by resource and field",
	}, []string{"resource", "field"})
)
