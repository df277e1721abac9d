package order

import (
	"fmt"
	"time"

	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/pkg/errs"
)

// Status represents the lifecycle state of a purchase order.
//
// State transitions:
//
//	Received ──> Accepted ──> Booked ──> InTransit ──> Delivered
//	    │            │           │
//	    └────────────┴───────────┴──> Cancelled
//
// Booked orders may also be reset to Accepted when a system of record
// rewrites them (see Order.ResetToPreBooking).
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota
	Received
	Accepted
	Booked
	InTransit
	Delivered
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "Unknown",
		Received:  "Received",
		Accepted:  "Accepted",
		Booked:    "Booked",
		InTransit: "InTransit",
		Delivered: "Delivered",
		Cancelled: "Cancelled",
	}
}

// getTransitions lists, for every status, the statuses it may move to.
func getTransitions() map[Status][]Status {
	//nolint:exhaustive // terminal and unknown statuses have no outgoing transitions
	return map[Status][]Status{
		Received:  {Accepted, Cancelled},
		Accepted:  {Booked, Cancelled},
		Booked:    {InTransit, Accepted, Cancelled},
		InTransit: {Delivered},
	}
}

// ParseStatus maps a status name to its value.
func ParseStatus(name string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != Unknown && str == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", name))
}

// Validate rejects Unknown and out-of-range values, e.g. when reading from the database.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsChangeControlEligible reports whether edits to an order in this status
// may be routed through change control. Later statuses always apply edits directly.
func (s Status) IsChangeControlEligible() bool {
	return s == Received || s == Accepted
}

// IsTerminal reports statuses with no outgoing transitions.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// TransitionTo returns target if the state machine allows moving there from s.
//
// Example:
//
//	next, err := order.Accepted.TransitionTo(order.Booked)
//	if err != nil {
//	    // transition not allowed
//	}
func (s Status) TransitionTo(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return Unknown, err
	}
	for _, allowed := range getTransitions()[s] {
		if allowed == target {
			return target, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status is invalid",
		fmt.Errorf("%s cannot transition to %s", s, target),
	)
}

// StatusChange is one row of an order's status history.
type StatusChange struct {
	OrderID   kernel.UUID
	From      Status
	To        Status
	ChangedBy kernel.UUID
	ChangedAt time.Time
}
