package commands

import (
	"errors"
	"maps"
	"strings"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/pkg/guard"
)

var ErrEditOrderCommandIsNotConstructed = errors.New(
	"EditOrderCommand must be created via NewEditOrderCommand constructor",
)

// EditOrderCommand carries one edit payload: an optional status change,
// proposed field values and line item instructions. Any part may be empty.
type EditOrderCommand struct {
	orderID   kernel.UUID
	actor     actor.Actor
	status    *order.Status
	fields    order.FieldValues
	lineItems order.LineItemInstructions
	note      string

	guard guard.ConstructorGuard
}

// NewEditOrderCommand validates the payload shape. Field values are checked
// against the order later, when the current values are known.
//
// Parameters:
//   - status: target status, or nil to leave the status alone
//   - fields: proposed values keyed by field name
//   - lineItems: line item instructions; the zero value carries none
//   - note: free text attached to a change request raised by this edit
func NewEditOrderCommand(
	orderID kernel.UUID,
	a actor.Actor,
	status *order.Status,
	fields order.FieldValues,
	lineItems order.LineItemInstructions,
	note string,
) (EditOrderCommand, error) {
	errList := []error{orderID.Validate(), a.Validate()}
	if status != nil {
		errList = append(errList, status.Validate())
	}
	for f := range fields {
		if _, err := order.ParseField(string(f)); err != nil {
			errList = append(errList, err)
		}
	}
	if !lineItems.IsEmpty() {
		errList = append(errList, lineItems.Validate())
	}
	if err := errors.Join(errList...); err != nil {
		return EditOrderCommand{}, err
	}

	return EditOrderCommand{
		orderID:   orderID,
		actor:     a,
		status:    status,
		fields:    maps.Clone(fields),
		lineItems: lineItems,
		note:      strings.TrimSpace(note),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c EditOrderCommand) Validate() error {
	return c.guard.Validate(ErrEditOrderCommandIsNotConstructed)
}

func (c EditOrderCommand) OrderID() kernel.UUID { return c.orderID }

func (c EditOrderCommand) Actor() actor.Actor { return c.actor }

// Status returns the requested status and whether one was requested.
func (c EditOrderCommand) Status() (order.Status, bool) {
	if c.status == nil {
		return order.Unknown, false
	}
	return *c.status, true
}

func (c EditOrderCommand) Fields() order.FieldValues { return maps.Clone(c.fields) }

func (c EditOrderCommand) LineItems() order.LineItemInstructions { return c.lineItems }

func (c EditOrderCommand) Note() string { return c.note }
