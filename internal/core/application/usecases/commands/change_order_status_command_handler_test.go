package commands_test

import (
	"testing"

	"procurement/internal/core/application/usecases/commands"
	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/fulfillment"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/domain/model/thread"
	"procurement/internal/core/domain/services"
	"procurement/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type statusFixture struct {
	store        *memStore
	fulfillments *MockFulfillmentStore
	bookings     *MockBookingResetter
	handler      *commands.ChangeOrderStatusCommandHandler
}

func newStatusFixture(o *order.Order, linked fulfillment.Linked) *statusFixture {
	store := newMemStore(o)
	fulfillments := new(MockFulfillmentStore)
	fulfillments.On("LinkedTo", mock.Anything, o.ID()).Return(linked, nil).Maybe()
	catalog := new(MockStatusCatalog)
	catalog.On("CancelledStatuses", mock.Anything).
		Return(services.CancelledStatuses{Booking: "bk-cancelled", Shipment: "sh-cancelled"}, nil).Maybe()
	orderCache := new(MockOrderCache)
	orderCache.On("Invalidate", mock.Anything).Return()
	bookings := new(MockBookingResetter)

	return &statusFixture{
		store:        store,
		fulfillments: fulfillments,
		bookings:     bookings,
		handler: commands.NewChangeOrderStatusCommandHandler(
			orderFactory{store}, fulfillments, catalog, bookings, orderCache,
			kernel.FixedClock(now), discardLogs,
		),
	}
}

func statusCommand(t *testing.T, o *order.Order, a actor.Actor, target order.Status) commands.ChangeOrderStatusCommand {
	t.Helper()
	cmd, err := commands.NewChangeOrderStatusCommand(o.ID(), a, target)
	require.NoError(t, err)
	return cmd
}

func TestChangeOrderStatus_AcceptAddsAcceptingUserAsParticipant(t *testing.T) {
	p := newParties()
	o := newTestOrder(t, p, order.Received)
	f := newStatusFixture(o, fulfillment.Linked{})

	supplierColleague := p.actor(t, kernel.NewUUID(), p.supplierOrg, actor.User)
	err := f.handler.Handle(t.Context(), statusCommand(t, o, supplierColleague, order.Accepted))

	require.NoError(t, err)
	stored := f.store.order(o.ID())
	assert.Equal(t, order.Accepted, stored.Status())
	participant, ok := stored.Participant(supplierColleague.UserID())
	require.True(t, ok)
	assert.False(t, participant.ApprovalIsRequired())

	require.Len(t, f.store.statusHistory, 1)
	assert.Equal(t, order.Received, f.store.statusHistory[0].From)
	assert.Equal(t, order.Accepted, f.store.statusHistory[0].To)
	require.Len(t, f.store.outbox, 1)
	assert.Equal(t, thread.KindParticipantsChanged, f.store.outbox[0].Kind)
	assert.Len(t, f.store.outbox[0].Recipients, 3)
}

func TestChangeOrderStatus_AcceptByExistingParticipantDoesNotNotify(t *testing.T) {
	p := newParties()
	o := newTestOrder(t, p, order.Received)
	f := newStatusFixture(o, fulfillment.Linked{})

	err := f.handler.Handle(t.Context(), statusCommand(t, o, p.actor(t, p.supplier, p.supplierOrg, actor.User), order.Accepted))

	require.NoError(t, err)
	assert.Len(t, f.store.order(o.ID()).Participants(), 2)
	assert.Empty(t, f.store.outbox)
}

func TestChangeOrderStatus_SameStatusIsNoOp(t *testing.T) {
	p := newParties()
	o := newTestOrder(t, p, order.Accepted)
	f := newStatusFixture(o, fulfillment.Linked{})

	err := f.handler.Handle(t.Context(), statusCommand(t, o, p.buyerActor(t), order.Accepted))

	require.NoError(t, err)
	assert.Zero(t, f.store.commits)
}

func TestChangeOrderStatus_RejectsInvalidTransition(t *testing.T) {
	p := newParties()
	o := newTestOrder(t, p, order.Received)
	f := newStatusFixture(o, fulfillment.Linked{})

	staff := p.actor(t, kernel.NewUUID(), kernel.NewUUID(), actor.Staff)
	err := f.handler.Handle(t.Context(), statusCommand(t, o, staff, order.Delivered))

	require.Error(t, err)
	assert.Zero(t, f.store.commits)
}

func TestChangeOrderStatus_CancelIsVetoedByActiveBookingRequest(t *testing.T) {
	p := newParties()
	o := newTestOrder(t, p, order.Accepted)
	pending := "bk-pending"
	f := newStatusFixture(o, fulfillment.Linked{
		BookingRequests: []fulfillment.Record{{
			ID:        "BR-1041",
			Kind:      fulfillment.BookingRequest,
			StatusID:  &pending,
			CreatedAt: now,
			UpdatedAt: now.Add(1),
		}},
	})

	err := f.handler.Handle(t.Context(), statusCommand(t, o, p.buyerActor(t), order.Cancelled))

	require.ErrorIs(t, err, errs.ErrBusinessRule)
	assert.Contains(t, err.Error(), "BR-1041")
	assert.Equal(t, order.Accepted, f.store.order(o.ID()).Status())
	f.bookings.AssertNotCalled(t, "InvalidateBookings", mock.Anything, mock.Anything)
}

func TestChangeOrderStatus_CancelIgnoresUntouchedConfirmation(t *testing.T) {
	p := newParties()
	o := newTestOrder(t, p, order.Booked)
	f := newStatusFixture(o, fulfillment.Linked{
		BookingConfirmations: []fulfillment.Record{{
			ID:        "BC-77",
			Kind:      fulfillment.BookingConfirmation,
			CreatedAt: now,
			UpdatedAt: now,
		}},
	})
	f.bookings.On("InvalidateBookings", mock.Anything, o.ID()).Return(nil).Once()

	err := f.handler.Handle(t.Context(), statusCommand(t, o, p.buyerActor(t), order.Cancelled))

	require.NoError(t, err)
	assert.Equal(t, order.Cancelled, f.store.order(o.ID()).Status())
	f.bookings.AssertExpectations(t)
}

func TestChangeOrderStatus_OnlyBuyerMayCancel(t *testing.T) {
	p := newParties()
	o := newTestOrder(t, p, order.Accepted)
	f := newStatusFixture(o, fulfillment.Linked{})

	err := f.handler.Handle(t.Context(), statusCommand(t, o, p.actor(t, p.supplier, p.supplierOrg, actor.User), order.Cancelled))

	require.ErrorIs(t, err, errs.ErrNotAuthorized)
	assert.Zero(t, f.store.commits)
}

func TestChangeOrderStatus_BookingProgressNeedsPrivilege(t *testing.T) {
	p := newParties()
	o := newTestOrder(t, p, order.Accepted)
	f := newStatusFixture(o, fulfillment.Linked{})

	err := f.handler.Handle(t.Context(), statusCommand(t, o, p.buyerActor(t), order.Booked))
	require.ErrorIs(t, err, errs.ErrNotAuthorized)

	integration := p.actor(t, kernel.NewUUID(), kernel.NewUUID(), actor.Integration)
	err = f.handler.Handle(t.Context(), statusCommand(t, o, integration, order.Booked))
	require.NoError(t, err)
	assert.Equal(t, order.Booked, f.store.order(o.ID()).Status())
	assert.Empty(t, f.store.outbox)
}

func TestChangeOrderStatusCommandHandler_Handle_ValidationError(t *testing.T) {
	p := newParties()
	f := newStatusFixture(newTestOrder(t, p, order.Received), fulfillment.Linked{})

	err := f.handler.Handle(t.Context(), commands.ChangeOrderStatusCommand{})
	require.ErrorIs(t, err, commands.ErrChangeOrderStatusCommandIsNotConstructed)
}
