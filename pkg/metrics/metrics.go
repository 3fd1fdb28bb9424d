// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RoutingDecisions counts routing outcomes by action (pass_through, rewrite, not_found).
	RoutingDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrmenu_routing_decisions_total",
			Help: "Requests by routing decision",
		},
		[]string{"action"},
	)

	// TenantResolutions counts resolver outcomes (found, not_found, inactive).
	TenantResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrmenu_tenant_resolutions_total",
			Help: "Tenant resolutions by outcome",
		},
		[]string{"outcome"},
	)

	ResolutionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qrmenu_tenant_resolution_seconds",
			Help:    "Datastore time spent resolving a tenant",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SubdomainChanges counts lifecycle operations by result
	// (created, renamed, unchanged, duplicate, invalid).
	SubdomainChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrmenu_subdomain_changes_total",
			Help: "Subdomain create and rename operations by result",
		},
		[]string{"result"},
	)
)
