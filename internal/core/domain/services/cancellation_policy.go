package services

import (
	"fmt"
	"slices"

	"procurement/internal/core/domain/model/fulfillment"
	"procurement/internal/pkg/errs"
)

// CancelledStatuses holds the resolved ids of the cancelled status in each
// status domain.
type CancelledStatuses struct {
	Booking  string
	Shipment string
}

func (s CancelledStatuses) forKind(k fulfillment.Kind) string {
	if k == fulfillment.Shipment {
		return s.Shipment
	}
	return s.Booking
}

// CancellationVerdict carries the first linked record that keeps the order alive.
type CancellationVerdict struct {
	Blocking *fulfillment.Record
}

func (v CancellationVerdict) Allowed() bool {
	return v.Blocking == nil
}

// Err returns a BusinessRuleError naming the blocking record, or nil.
func (v CancellationVerdict) Err() error {
	if v.Allowed() {
		return nil
	}
	return errs.NewBusinessRuleError(
		"order has active fulfillment",
		fmt.Sprintf("%s %s is not cancelled", v.Blocking.Kind, v.Blocking.ID),
	)
}

// CancellationPolicy decides whether an order may be cancelled given the
// booking-side records linked to it.
//
// Business rules:
//   - Every booking request must carry the cancelled booking status
//   - Booking confirmations and shipments only count once touched after creation
//   - A touched confirmation or shipment blocks unless it has no status or a cancelled one
type CancellationPolicy struct{}

func NewCancellationPolicy() CancellationPolicy {
	return CancellationPolicy{}
}

func (CancellationPolicy) Check(linked fulfillment.Linked, cancelled CancelledStatuses) CancellationVerdict {
	for _, r := range linked.BookingRequests {
		if !r.HasStatus(cancelled.Booking) {
			return CancellationVerdict{Blocking: &r}
		}
	}
	for _, r := range slices.Concat(linked.BookingConfirmations, linked.Shipments) {
		if isActive(r, cancelled.forKind(r.Kind)) {
			return CancellationVerdict{Blocking: &r}
		}
	}
	return CancellationVerdict{}
}

// isActive applies the touched rule used for confirmations and shipments.
func isActive(r fulfillment.Record, cancelledID string) bool {
	return r.IsTouched() && r.StatusID != nil && !r.HasStatus(cancelledID)
}
