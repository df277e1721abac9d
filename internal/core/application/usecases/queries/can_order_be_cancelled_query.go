package queries

import (
	"errors"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/pkg/guard"
)

var ErrCanOrderBeCancelledQueryIsNotConstructed = errors.New(
	"CanOrderBeCancelledQuery must be created via NewCanOrderBeCancelledQuery constructor",
)

// CanOrderBeCancelledQuery asks whether the booking-side records linked to
// an order still allow cancelling it. It does not check who may cancel.
type CanOrderBeCancelledQuery struct {
	orderID kernel.UUID
	actor   actor.Actor

	guard guard.ConstructorGuard
}

func NewCanOrderBeCancelledQuery(orderID kernel.UUID, a actor.Actor) (CanOrderBeCancelledQuery, error) {
	if err := errors.Join(orderID.Validate(), a.Validate()); err != nil {
		return CanOrderBeCancelledQuery{}, err
	}
	return CanOrderBeCancelledQuery{orderID: orderID, actor: a, guard: guard.NewConstructorGuard()}, nil
}

func (q CanOrderBeCancelledQuery) Validate() error {
	return q.guard.Validate(ErrCanOrderBeCancelledQueryIsNotConstructed)
}

func (q CanOrderBeCancelledQuery) OrderID() kernel.UUID { return q.orderID }

func (q CanOrderBeCancelledQuery) Actor() actor.Actor { return q.actor }

// CanOrderBeCancelledQueryResponse names the blocking record when the order
// cannot be cancelled.
type CanOrderBeCancelledQueryResponse struct {
	Cancellable bool
	Reason      string
}
