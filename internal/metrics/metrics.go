// Package metrics exposes prometheus collectors for the access layer.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portal"

// Collectors registered on the default prometheus registry.
var (
	gateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gate",
		Name:      "decisions_total",
		Help:      "Session gate decisions by outcome.",
	}, []string{"outcome"})

	gateCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gate",
		Name:      "role_cache_lookups_total",
		Help:      "Role cache lookups by result (hit, miss, stale).",
	}, []string{"result"})

	gateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gate",
		Name:      "lookup_failures_total",
		Help:      "Session or profile lookup failures by applied policy.",
	}, []string{"policy"})

	stepUpResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stepup",
		Name:      "results_total",
		Help:      "Admin step-up operations by operation and result.",
	}, []string{"operation", "result"})
)

// ObserveGateDecision counts one gate outcome (pass, login, unauthorized, landing, skip).
func ObserveGateDecision(outcome string) {
	gateDecisions.WithLabelValues(outcome).Inc()
}

// ObserveCacheLookup counts a role cache hit, miss or stale entry.
func ObserveCacheLookup(result string) {
	gateCacheLookups.WithLabelValues(result).Inc()
}

// ObserveGateFailure counts a lookup failure handled under policy.
func ObserveGateFailure(policy string) {
	gateFailures.WithLabelValues(policy).Inc()
}

// ObserveStepUp counts a step-up operation result.
func ObserveStepUp(operation string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	stepUpResults.WithLabelValues(operation, result).Inc()
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
