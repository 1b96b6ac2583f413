// Package metrics holds the Prometheus collectors of the recommendation
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "proteinpick"

// Selector outcomes.
const (
	SelectorFirst    = "first"
	SelectorRetry    = "retry"
	SelectorFallback = "fallback"
)

var (
	// responsesTotal counts recommend outcomes by type (ask, empty, ok, error).
	responsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "recommend",
		Name:      "responses_total",
		Help:      "Recommend responses by type",
	}, []string{"type"})

	selectorOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "recommend",
		Name:      "selector_outcomes_total",
		Help:      "Which selector attempt produced the picks",
	}, []string{"outcome"})

	extractionFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "recommend",
		Name:      "extraction_failures_total",
		Help:      "Filter extraction calls that degraded to an empty extraction",
	})

	candidatesReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "recommend",
		Name:      "candidates",
		Help:      "Candidate rows left after the exclusion post-filter",
		Buckets:   []float64{0, 1, 3, 10, 30, 60, 120, 200},
	})

	// llmLatencySeconds labels: call (extract, select, repair), status (ok, error)
	llmLatencySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "llm",
		Name:      "latency_seconds",
		Help:      "Chat-completion round trip latency",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"call", "status"})
)

func RecordResponse(kind string) {
	responsesTotal.WithLabelValues(kind).Inc()
}

func RecordSelectorOutcome(outcome string) {
	selectorOutcomesTotal.WithLabelValues(outcome).Inc()
}

func RecordExtractionFailure() {
	extractionFailuresTotal.Inc()
}

func RecordCandidates(n int) {
	candidatesReturned.Observe(float64(n))
}

// ObserveLLMCall records one chat-completion round trip.
func ObserveLLMCall(call string, started time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	llmLatencySeconds.WithLabelValues(call, status).Observe(time.Since(started).Seconds())
}
