// Package metrics defines and registers all custom Prometheus metrics for the
// pharmacy delivery platform. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pharmarun"

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersCreatedTotal counts successfully created orders.
var OrdersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created.",
	},
)

// OrderTransitionsTotal counts completed status transitions.
// Label:
//   - status: the status the order moved to (e.g. "accepted", "cancelled")
var OrderTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transitions_total",
		Help:      "Total number of order status transitions, by target status.",
	},
	[]string{"status"},
)

// ── Inventory metrics ─────────────────────────────────────────────────────────

// StockReservationsTotal counts reservation attempts.
// Label:
//   - result: "applied" or "rejected"
var StockReservationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_reservations_total",
		Help:      "Total number of stock reservation attempts, by result.",
	},
	[]string{"result"},
)

// StockReleasesTotal counts compensating stock releases.
var StockReleasesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_releases_total",
		Help:      "Total number of stock releases applied.",
	},
)

// ── Store metrics ─────────────────────────────────────────────────────────────

// IndexRebuildDuration measures one full clear-and-rescan of the lookup
// indexes, performed after every mutation.
var IndexRebuildDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "index_rebuild_duration_seconds",
		Help:      "Duration of a full index rebuild after a store mutation.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsQueueDepth tracks the number of notifications waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationsWrittenTotal counts notification records persisted.
// Label:
//   - type: notification type (e.g. "order_status")
var NotificationsWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_written_total",
		Help:      "Total number of notification records written, by type.",
	},
	[]string{"type"},
)
