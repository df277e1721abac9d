// Package queries contains read-only operations on orders and change requests.
// Every query checks that the caller is associated with the order before
// returning anything about it.
package queries

import (
	"context"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/ports"
	"procurement/internal/pkg/errs"
)

// OrderReader loads order aggregates outside of a transaction.
type OrderReader interface {
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}

// visibleOrder reads through the cache and rejects callers not associated
// with the order.
func visibleOrder(
	ctx context.Context,
	orderCache ports.OrderCache,
	reader OrderReader,
	id kernel.UUID,
	a actor.Actor,
) (*order.Order, error) {
	o, ok := orderCache.Get(id)
	if !ok {
		var err error
		if o, err = reader.Get(ctx, id); err != nil {
			return nil, err
		}
		orderCache.Prime(id, o)
	}

	if !o.IsVisibleTo(a) {
		return nil, errs.NewNotAuthorizedError("order", "user is not associated with the order")
	}
	return o, nil
}
