package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

var Module = fx.Module("observability.metrics",
	fx.Provide(NewRegistry),
	fx.Provide(NewEngineMetrics),
)

// NewRegistry builds the process-wide prometheus registry with the
// standard runtime collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// EngineMetrics tracks the configuration engine's contention and
// resolution behavior.
type EngineMetrics struct {
	UpsertRetries   prometheus.Counter
	UpsertConflicts prometheus.Counter
	ResolutionHits  *prometheus.CounterVec
}

func NewEngineMetrics(registry *prometheus.Registry) *EngineMetrics {
	m := &EngineMetrics{
		UpsertRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quoteforge",
			Subsystem: "pricing_config",
			Name:      "upsert_retries_total",
			Help:      "Upsert attempts retried after losing the active-configuration race.",
		}),
		UpsertConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quoteforge",
			Subsystem: "pricing_config",
			Name:      "upsert_conflicts_total",
			Help:      "Upserts surfaced as conflicts after the retry budget was exhausted.",
		}),
		ResolutionHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quoteforge",
			Subsystem: "resolution",
			Name:      "source_hits_total",
			Help:      "Which layer satisfied each field group during resolution.",
		}, []string{"field_group", "source"}),
	}

	registry.MustRegister(m.UpsertRetries, m.UpsertConflicts, m.ResolutionHits)
	return m
}
