package queries

import (
	"context"

	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/ports"
)

// GetOrderQueryHandler serves orders from the order cache, loading and
// priming it on a miss.
type GetOrderQueryHandler struct {
	orderCache ports.OrderCache
	reader     OrderReader
}

func NewGetOrderQueryHandler(orderCache ports.OrderCache, reader OrderReader) *GetOrderQueryHandler {
	return &GetOrderQueryHandler{orderCache: orderCache, reader: reader}
}

func (h *GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*order.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return visibleOrder(ctx, h.orderCache, h.reader, query.OrderID(), query.Actor())
}
