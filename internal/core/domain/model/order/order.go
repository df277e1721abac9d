package order

import (
	"errors"
	"slices"
	"time"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/pkg/errs"
	"procurement/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")
)

// Order is a purchase order shared between the buyer organization and its
// counterparties. It is the aggregate root for line items and participants.
//
// Order follows these invariants:
//   - Must have valid identifiers for itself, the buyer and the supplier
//   - Status changes only through TransitionTo rules or ResetToPreBooking
//   - Leaving the booking path always clears isReadyForBooking
//   - Participants never list the same user twice
type Order struct {
	id         kernel.UUID
	buyerOrgID kernel.UUID
	details    Details

	status            Status
	isReadyForBooking bool

	lineItems    []LineItem
	participants []Participant

	createdAt time.Time
	updatedAt time.Time

	guard guard.ConstructorGuard
}

// NewOrder creates a Received order with no line items or participants.
func NewOrder(id, buyerOrgID kernel.UUID, details Details, now time.Time) (*Order, error) {
	if err := errors.Join(
		id.Validate(),
		buyerOrgID.Validate(),
		details.Validate(),
	); err != nil {
		return nil, err
	}

	return &Order{
		id:         id,
		buyerOrgID: buyerOrgID,
		details:    details,
		status:     Received,
		createdAt:  now,
		updatedAt:  now,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// RestoreOrder rehydrates an order read from the relational store.
func RestoreOrder(
	id, buyerOrgID kernel.UUID,
	details Details,
	status Status,
	isReadyForBooking bool,
	lineItems []LineItem,
	participants []Participant,
	createdAt, updatedAt time.Time,
) (*Order, error) {
	if err := errors.Join(
		id.Validate(),
		buyerOrgID.Validate(),
		details.Validate(),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	items := slices.Clone(lineItems)
	slices.SortFunc(items, func(a, b LineItem) int { return a.itemNumber - b.itemNumber })

	return &Order{
		id:                id,
		buyerOrgID:        buyerOrgID,
		details:           details,
		status:            status,
		isReadyForBooking: isReadyForBooking,
		lineItems:         items,
		participants:      slices.Clone(participants),
		createdAt:         createdAt,
		updatedAt:         updatedAt,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Order was built by one of its constructors.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID { return o.id }

func (o *Order) BuyerOrgID() kernel.UUID { return o.buyerOrgID }

func (o *Order) Details() Details { return o.details }

func (o *Order) Status() Status { return o.status }

func (o *Order) IsReadyForBooking() bool { return o.isReadyForBooking }

func (o *Order) LineItems() []LineItem { return slices.Clone(o.lineItems) }

func (o *Order) Participants() []Participant { return slices.Clone(o.participants) }

func (o *Order) CreatedAt() time.Time { return o.createdAt }

func (o *Order) UpdatedAt() time.Time { return o.updatedAt }

// LineItem looks up a line item by id.
func (o *Order) LineItem(id kernel.UUID) (LineItem, bool) {
	for _, li := range o.lineItems {
		if li.id.IsEqual(id) {
			return li, true
		}
	}
	return LineItem{}, false
}

// Participant looks up a participant by user.
func (o *Order) Participant(userID kernel.UUID) (Participant, bool) {
	for _, p := range o.participants {
		if p.userID.IsEqual(userID) {
			return p, true
		}
	}
	return Participant{}, false
}

// RolesOf lists the roles organization orgID holds on this order.
func (o *Order) RolesOf(orgID kernel.UUID) []Role {
	var roles []Role
	if o.buyerOrgID.IsEqual(orgID) {
		roles = append(roles, RoleBuyer)
	}
	if o.details.SupplierOrgID.IsEqual(orgID) {
		roles = append(roles, RoleSupplier)
	}
	optional := []struct {
		role Role
		org  *kernel.UUID
	}{
		{RoleForwarder, o.details.ForwarderOrgID},
		{RoleConsignee, o.details.ConsigneeOrgID},
		{RoleAgent, o.details.AgentOrgID},
		{RoleBroker, o.details.BrokerOrgID},
		{RoleTrucker, o.details.TruckerOrgID},
	}
	for _, opt := range optional {
		if opt.org != nil && opt.org.IsEqual(orgID) {
			roles = append(roles, opt.role)
		}
	}
	return roles
}

// IsVisibleTo reports whether the actor is associated with the order: a
// privileged identity, a member of an organization holding a role, or a
// listed participant.
func (o *Order) IsVisibleTo(a actor.Actor) bool {
	if a.IsPrivileged() {
		return true
	}
	if len(o.RolesOf(a.OrgID())) > 0 {
		return true
	}
	_, ok := o.Participant(a.UserID())
	return ok
}

// ApplyFieldValues writes the given field values to the order details.
func (o *Order) ApplyFieldValues(values FieldValues, now time.Time) error {
	details, err := values.ApplyTo(o.details)
	if err != nil {
		return err
	}
	if err = details.Validate(); err != nil {
		return err
	}
	o.details = details
	o.updatedAt = now
	return nil
}

// ChangeStatus moves the order to target following the status state machine.
// Cancelling clears the booking readiness flag.
func (o *Order) ChangeStatus(target Status, now time.Time) error {
	next, err := o.status.TransitionTo(target)
	if err != nil {
		return err
	}
	o.status = next
	if next == Cancelled || next == Accepted {
		o.isReadyForBooking = false
	}
	o.updatedAt = now
	return nil
}

// ResetToPreBooking reverts booking progress: a Booked order returns to
// Accepted and the order is no longer ready for booking.
func (o *Order) ResetToPreBooking(now time.Time) {
	if o.status == Booked {
		o.status = Accepted
	}
	o.isReadyForBooking = false
	o.updatedAt = now
}

// MarkNotReadyForBooking is applied whenever a change request is raised.
func (o *Order) MarkNotReadyForBooking(now time.Time) {
	o.isReadyForBooking = false
	o.updatedAt = now
}

// SetReadyForBooking stores a recomputed readiness value.
func (o *Order) SetReadyForBooking(ready bool, now time.Time) {
	if o.isReadyForBooking == ready {
		return
	}
	o.isReadyForBooking = ready
	o.updatedAt = now
}

// ReplaceParticipants swaps the whole participant set.
func (o *Order) ReplaceParticipants(participants []Participant, now time.Time) error {
	if err := ValidateParticipantSet(participants); err != nil {
		return err
	}
	o.participants = slices.Clone(participants)
	o.updatedAt = now
	return nil
}

// AddParticipant appends p unless the user already participates.
// It reports whether the participant was added.
func (o *Order) AddParticipant(p Participant, now time.Time) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	if _, exists := o.Participant(p.userID); exists {
		return false, nil
	}
	o.participants = append(o.participants, p)
	o.updatedAt = now
	return true, nil
}

// RequireNotTerminal fails for orders that no longer accept edits.
func (o *Order) RequireNotTerminal() error {
	if o.status.IsTerminal() {
		return errs.NewBusinessRuleError("order is closed", "order is "+o.status.String())
	}
	return nil
}
