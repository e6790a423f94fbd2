package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compass_llm_cache_hits_total",
		Help: "Total prompt cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compass_llm_cache_misses_total",
		Help: "Total prompt cache misses",
	})

	modelRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compass_llm_retries_total",
		Help: "Total transient-failure retries against LLM backends",
	})

	modelCallDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "compass_llm_call_duration_seconds",
		Help:    "Latency of LLM backend calls",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})
)
