package services

import "procurement/internal/core/domain/model/order"

// EditPath is the routing decision for a non-integration edit.
type EditPath int

const (
	// DirectOnly applies every field and line item instruction directly.
	DirectOnly EditPath = iota + 1
	// ChangeControlOnly applies nothing and raises a change request.
	ChangeControlOnly
	// ChangeControlPlusDirect raises a change request for controlled fields
	// and line items, and applies the excluded fields directly.
	ChangeControlPlusDirect
)

func (p EditPath) String() string {
	switch p {
	case DirectOnly:
		return "direct"
	case ChangeControlOnly:
		return "change_control"
	case ChangeControlPlusDirect:
		return "change_control_plus_direct"
	}
	return "unknown"
}

// RaisesChangeRequest reports whether the path creates a change request.
func (p EditPath) RaisesChangeRequest() bool {
	return p == ChangeControlOnly || p == ChangeControlPlusDirect
}

// DecideEditPath computes the path once so it can be dispatched on.
// Change control is active only when the organization enabled it, the order
// is still Received or Accepted, and the edit carries a change-controlled
// field or any line item change.
func DecideEditPath(
	changeControlEnabled bool,
	status order.Status,
	c Classification,
	lineItems LineItemPlan,
) EditPath {
	hasChangeControl := changeControlEnabled &&
		status.IsChangeControlEligible() &&
		(len(c.ChangeControlled) > 0 || !lineItems.IsEmpty())

	switch {
	case !hasChangeControl:
		return DirectOnly
	case len(c.Direct) == 0:
		return ChangeControlOnly
	default:
		return ChangeControlPlusDirect
	}
}
