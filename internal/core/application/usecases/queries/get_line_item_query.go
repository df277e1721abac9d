package queries

import (
	"errors"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/pkg/guard"
)

var ErrGetLineItemQueryIsNotConstructed = errors.New("GetLineItemQuery must be created via NewGetLineItemQuery constructor")

// GetLineItemQuery reads one line item of an order, note included.
type GetLineItemQuery struct {
	orderID    kernel.UUID
	lineItemID kernel.UUID
	actor      actor.Actor

	guard guard.ConstructorGuard
}

func NewGetLineItemQuery(orderID, lineItemID kernel.UUID, a actor.Actor) (GetLineItemQuery, error) {
	if err := errors.Join(orderID.Validate(), lineItemID.Validate(), a.Validate()); err != nil {
		return GetLineItemQuery{}, err
	}
	return GetLineItemQuery{
		orderID:    orderID,
		lineItemID: lineItemID,
		actor:      a,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (q GetLineItemQuery) Validate() error {
	return q.guard.Validate(ErrGetLineItemQueryIsNotConstructed)
}

func (q GetLineItemQuery) OrderID() kernel.UUID { return q.orderID }

func (q GetLineItemQuery) LineItemID() kernel.UUID { return q.lineItemID }

func (q GetLineItemQuery) Actor() actor.Actor { return q.actor }
