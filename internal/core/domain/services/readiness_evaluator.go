package services

import "procurement/internal/core/domain/model/order"

// ReadinessEvaluator derives whether an order is ready for booking.
// An order is ready when it is Accepted, has no open change request, has at
// least one line item, and names its origin, destination and cargo-ready date.
type ReadinessEvaluator struct{}

func NewReadinessEvaluator() ReadinessEvaluator {
	return ReadinessEvaluator{}
}

func (ReadinessEvaluator) IsReadyForBooking(o *order.Order, hasOpenChangeRequest bool) bool {
	if o.Status() != order.Accepted || hasOpenChangeRequest {
		return false
	}
	if len(o.LineItems()) == 0 {
		return false
	}
	d := o.Details()
	return d.Origin != "" && d.Destination != "" && d.CargoReadyDate != nil
}
