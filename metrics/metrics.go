// Package metrics holds the Prometheus collectors of automater-sync.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "automater_sync"

// Registry is the registry served on /metrics
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// WebhookDeliveries counts received webhook deliveries by topic and result
var WebhookDeliveries = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_deliveries_total",
		Help:      "WooCommerce webhook deliveries by topic and result (accepted, ignored, rejected)",
	},
	[]string{"topic", "result"},
)

// OrderEvents counts processed order events by kind and outcome
var OrderEvents = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_events_total",
		Help:      "Order events forwarded to Automater by kind (placed, paid) and outcome",
	},
	[]string{"kind", "outcome"},
)

// StockSyncRuns counts stock synchronisation runs by outcome
var StockSyncRuns = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_sync_runs_total",
		Help:      "Stock synchronisation runs by outcome (ok, error)",
	},
	[]string{"outcome"},
)

// StockProductsUpdated counts products whose stock was written
var StockProductsUpdated = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_products_updated_total",
		Help:      "Products whose stock quantity or status was changed",
	},
)

// StockSyncDuration tracks how long a stock run takes
var StockSyncDuration = promauto.With(Registry).NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stock_sync_duration_seconds",
		Help:      "Duration of stock synchronisation runs in seconds",
		Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
	},
)

// ImportedTerms counts attribute terms touched by imports by action
var ImportedTerms = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_terms_total",
		Help:      "Attribute terms handled by product imports by action (created, deleted, failed)",
	},
	[]string{"action"},
)
