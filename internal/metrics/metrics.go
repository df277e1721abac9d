package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrderEditsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "procurement_order_edits_total",
		Help: "Total number of order edits by the path they were routed through.",
	},
		[]string{"path"},
	)

	ChangeRequestsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "procurement_change_requests_created_total",
		Help: "Total number of change requests raised.",
	})

	ChangeRequestNumberConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "procurement_change_request_number_conflicts_total",
		Help: "Total number of change request inserts retried because the number was taken.",
	})

	ChangeReviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "procurement_change_reviews_total",
		Help: "Total number of change reviews decided.",
	},
		[]string{"verdict"},
	)

	OrderStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "procurement_order_status_changes_total",
		Help: "Total number of order status transitions.",
	},
		[]string{"to"},
	)

	CancellationVetoesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "procurement_cancellation_vetoes_total",
		Help: "Total number of cancellations blocked by active linked fulfillment.",
	},
		[]string{"kind"},
	)

	SagaFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "procurement_saga_failures_total",
		Help: "Total number of multi-store operations that stopped at a phase.",
	},
		[]string{"saga", "phase"},
	)

	OutboxRelayedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "procurement_outbox_relayed_total",
		Help: "Total number of outbox messages handled by the relay, by result.",
	},
		[]string{"result"},
	)

	OrderCacheItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "procurement_order_cache_items",
		Help: "Current number of items in the order cache.",
	})
)
