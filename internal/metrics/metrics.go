package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace for all application metrics
const namespace = "events"

// Registry is the Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// Asset operation outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AssetOperations counts asset store calls by operation (upload, delete) and outcome
var AssetOperations = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "asset_operations_total",
		Help:      "Total number of asset store operations",
	},
	[]string{"operation", "outcome"},
)

// OrphanedAssets counts assets left in the store because a cleanup delete failed.
// The reason label is one of create_rollback, update_rollback or replaced.
var OrphanedAssets = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orphaned_assets_total",
		Help:      "Total number of assets whose cleanup delete failed",
	},
	[]string{"reason"},
)

// LoginAttempts counts login attempts by outcome
var LoginAttempts = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of admin login attempts",
	},
	[]string{"outcome"},
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
