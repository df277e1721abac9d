package commands

import (
	"errors"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/pkg/guard"
)

var ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
	"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
)

// ChangeOrderStatusCommand moves an order through its status state machine.
//
// Example:
//
//	cmd, err := NewChangeOrderStatusCommand(orderID, caller, order.Cancelled)
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
type ChangeOrderStatusCommand struct {
	orderID kernel.UUID
	actor   actor.Actor
	target  order.Status

	guard guard.ConstructorGuard
}

func NewChangeOrderStatusCommand(orderID kernel.UUID, a actor.Actor, target order.Status) (ChangeOrderStatusCommand, error) {
	if err := errors.Join(orderID.Validate(), a.Validate(), target.Validate()); err != nil {
		return ChangeOrderStatusCommand{}, err
	}
	return ChangeOrderStatusCommand{
		orderID: orderID,
		actor:   a,
		target:  target,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

func (c ChangeOrderStatusCommand) OrderID() kernel.UUID { return c.orderID }

func (c ChangeOrderStatusCommand) Actor() actor.Actor { return c.actor }

func (c ChangeOrderStatusCommand) Target() order.Status { return c.target }
