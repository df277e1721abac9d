package queries

import (
	"context"

	"procurement/internal/core/domain/services"
	"procurement/internal/core/ports"
)

// CanOrderBeCancelledQueryHandler evaluates the cancellation policy without
// changing anything.
type CanOrderBeCancelledQueryHandler struct {
	orderCache   ports.OrderCache
	reader       OrderReader
	fulfillments ports.FulfillmentStore
	catalog      ports.StatusCatalog
	policy       services.CancellationPolicy
}

func NewCanOrderBeCancelledQueryHandler(
	orderCache ports.OrderCache,
	reader OrderReader,
	fulfillments ports.FulfillmentStore,
	catalog ports.StatusCatalog,
) *CanOrderBeCancelledQueryHandler {
	return &CanOrderBeCancelledQueryHandler{
		orderCache:   orderCache,
		reader:       reader,
		fulfillments: fulfillments,
		catalog:      catalog,
		policy:       services.NewCancellationPolicy(),
	}
}

func (h *CanOrderBeCancelledQueryHandler) Handle(
	ctx context.Context,
	query CanOrderBeCancelledQuery,
) (CanOrderBeCancelledQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return CanOrderBeCancelledQueryResponse{}, err
	}

	o, err := visibleOrder(ctx, h.orderCache, h.reader, query.OrderID(), query.Actor())
	if err != nil {
		return CanOrderBeCancelledQueryResponse{}, err
	}

	linked, err := h.fulfillments.LinkedTo(ctx, o.ID())
	if err != nil {
		return CanOrderBeCancelledQueryResponse{}, err
	}
	cancelled, err := h.catalog.CancelledStatuses(ctx)
	if err != nil {
		return CanOrderBeCancelledQueryResponse{}, err
	}

	verdict := h.policy.Check(linked, cancelled)
	if verdict.Allowed() {
		return CanOrderBeCancelledQueryResponse{Cancellable: true}, nil
	}
	return CanOrderBeCancelledQueryResponse{Reason: verdict.Err().Error()}, nil
}
