package services

import (
	"fmt"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/fulfillment"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/pkg/errs"
)

// Editability is the answer of EditabilityPolicy with a reason for callers.
type Editability struct {
	IsEditable bool
	Message    string
}

// Err returns a BusinessRuleError carrying the message, or nil.
func (e Editability) Err() error {
	if e.IsEditable {
		return nil
	}
	return errs.NewBusinessRuleError("order is not editable", e.Message)
}

// EditabilityPolicy decides whether an order accepts edits at all, before
// any field is looked at. Integrations may edit orders that are in transit
// or have shipments underway; nobody edits closed orders.
type EditabilityPolicy struct{}

func NewEditabilityPolicy() EditabilityPolicy {
	return EditabilityPolicy{}
}

func (EditabilityPolicy) Check(
	o *order.Order,
	a actor.Actor,
	linked fulfillment.Linked,
	cancelled CancelledStatuses,
) Editability {
	if o.Status().IsTerminal() {
		return Editability{Message: fmt.Sprintf("order is %s and can no longer be edited", o.Status())}
	}
	if a.IsIntegration() {
		return Editability{IsEditable: true}
	}
	if o.Status() == order.InTransit {
		return Editability{Message: "order is in transit; only integrations may edit it"}
	}
	for _, s := range linked.Shipments {
		if isActive(s, cancelled.Shipment) {
			return Editability{Message: fmt.Sprintf("shipment %s is in progress", s.ID)}
		}
	}
	return Editability{IsEditable: true}
}
