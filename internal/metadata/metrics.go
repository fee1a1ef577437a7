package metadata

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects cache and reconciliation counters.
type Metrics struct {
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	staleHits      prometheus.Counter
	fetchFailures  prometheus.Counter
	upserts        prometheus.Counter
	upsertFailures prometheus.Counter
	pruned         prometheus.Counter
}

// NewMetrics creates the collector and registers it with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reelkeep_cache_hits_total",
			Help: "Movie metadata served from the local cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reelkeep_cache_misses_total",
			Help: "Movie metadata lookups absent from the local cache.",
		}),
		staleHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reelkeep_cache_stale_hits_total",
			Help: "Cache hits past the staleness window that scheduled a refresh.",
		}),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reelkeep_gateway_fetch_failures_total",
			Help: "Catalog gateway fetches that failed and degraded to placeholders.",
		}),
		upserts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reelkeep_cache_upserts_total",
			Help: "Records written to the metadata cache.",
		}),
		upsertFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reelkeep_cache_upsert_failures_total",
			Help: "Background cache writes that failed and were dropped.",
		}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reelkeep_cache_pruned_total",
			Help: "Stale records removed by maintenance sweeps.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.cacheHits,
			m.cacheMisses,
			m.staleHits,
			m.fetchFailures,
			m.upserts,
			m.upsertFailures,
			m.pruned,
		)
	}
	return m
}
