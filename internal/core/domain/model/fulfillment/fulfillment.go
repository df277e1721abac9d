// Package fulfillment describes the booking-side records linked to an
// order: booking requests, booking confirmations and shipments. They live in
// the document store and are read-only from the order's point of view.
package fulfillment

import (
	"time"
)

// Kind identifies the document collection a record comes from.
type Kind string

const (
	BookingRequest      Kind = "booking request"
	BookingConfirmation Kind = "booking confirmation"
	Shipment            Kind = "shipment"
)

// StatusDomain names the status catalog a kind's status ids belong to.
func (k Kind) StatusDomain() string {
	if k == Shipment {
		return "shipment"
	}
	return "booking"
}

// Record is a linked booking-side document. StatusID is nil when the
// document never received a status.
type Record struct {
	ID        string
	Kind      Kind
	StatusID  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTouched reports whether the document changed after creation. Untouched
// confirmations and shipments are inert placeholders.
func (r Record) IsTouched() bool {
	return !r.CreatedAt.Equal(r.UpdatedAt)
}

// HasStatus reports whether the record carries statusID.
func (r Record) HasStatus(statusID string) bool {
	return r.StatusID != nil && *r.StatusID == statusID
}

// Linked groups every record linked to one order.
type Linked struct {
	BookingRequests      []Record
	BookingConfirmations []Record
	Shipments            []Record
}

// All returns every record in kind order.
func (l Linked) All() []Record {
	out := make([]Record, 0, len(l.BookingRequests)+len(l.BookingConfirmations)+len(l.Shipments))
	out = append(out, l.BookingRequests...)
	out = append(out, l.BookingConfirmations...)
	return append(out, l.Shipments...)
}
