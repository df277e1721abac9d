package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/fulfillment"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/domain/model/thread"
	"procurement/internal/core/domain/services"
	"procurement/internal/core/ports"
	"procurement/internal/metrics"
	"procurement/internal/pkg/errs"
	"procurement/internal/pkg/saga"
)

// ChangeOrderStatusCommandHandler applies order status transitions and their
// side effects.
//
// Side effects:
//   - Cancelling is vetoed while a linked booking request, confirmation or
//     shipment is active, and resets booking progress before the order row changes
//   - Accepting adds the accepting user as a participant and syncs the order thread
//   - Every transition appends a status history row in the same transaction
type ChangeOrderStatusCommandHandler struct {
	uowFactory   OrderUoWFactory
	fulfillments ports.FulfillmentStore
	catalog      ports.StatusCatalog
	bookings     ports.BookingResetter
	orderCache   ports.OrderCache
	policy       services.CancellationPolicy
	clock        kernel.Clock
	logger       *slog.Logger
}

func NewChangeOrderStatusCommandHandler(
	uowFactory OrderUoWFactory,
	fulfillments ports.FulfillmentStore,
	catalog ports.StatusCatalog,
	bookings ports.BookingResetter,
	orderCache ports.OrderCache,
	clock kernel.Clock,
	logger *slog.Logger,
) *ChangeOrderStatusCommandHandler {
	return &ChangeOrderStatusCommandHandler{
		uowFactory:   uowFactory,
		fulfillments: fulfillments,
		catalog:      catalog,
		bookings:     bookings,
		orderCache:   orderCache,
		policy:       services.NewCancellationPolicy(),
		clock:        clock,
		logger:       logger.With("component", "ChangeOrderStatusCommandHandler"),
	}
}

// Handle is a no-op when the order already has the target status.
func (h *ChangeOrderStatusCommandHandler) Handle(ctx context.Context, command ChangeOrderStatusCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	h.orderCache.Invalidate(command.OrderID())
	o, err := h.uowFactory.Create().OrderRepository().Get(ctx, command.OrderID())
	if err != nil {
		return err
	}

	if err = authorizeStatusChange(o, command.Actor(), command.Target()); err != nil {
		return err
	}
	if o.Status() == command.Target() {
		return nil
	}
	if _, err = o.Status().TransitionTo(command.Target()); err != nil {
		return err
	}

	s := saga.New("change order status", h.logger)
	if command.Target() == order.Cancelled {
		if err = h.checkCancellation(ctx, o.ID()); err != nil {
			return err
		}
		s.Add("reset bookings", func(ctx context.Context) error {
			return h.bookings.InvalidateBookings(ctx, o.ID())
		})
	}
	s.Add("update order", func(ctx context.Context) error {
		return h.updateOrder(ctx, command)
	})

	err = s.Execute(ctx)
	h.orderCache.Invalidate(command.OrderID())
	if err != nil {
		var sagaErr *saga.Error
		if errors.As(err, &sagaErr) {
			metrics.SagaFailuresTotal.WithLabelValues("change order status", sagaErr.Phase).Inc()
		}
		return err
	}

	metrics.OrderStatusChangesTotal.WithLabelValues(command.Target().String()).Inc()
	return nil
}

func (h *ChangeOrderStatusCommandHandler) checkCancellation(ctx context.Context, orderID kernel.UUID) error {
	linked, cancelled, err := linkedAndCancelled(ctx, h.fulfillments, h.catalog, orderID)
	if err != nil {
		return err
	}

	verdict := h.policy.Check(linked, cancelled)
	if verdict.Allowed() {
		return nil
	}
	metrics.CancellationVetoesTotal.WithLabelValues(string(verdict.Blocking.Kind)).Inc()
	h.logger.InfoContext(ctx, "cancellation vetoed",
		"order_id", orderID.String(),
		"blocking_kind", verdict.Blocking.Kind,
		"blocking_id", verdict.Blocking.ID,
	)
	return verdict.Err()
}

func (h *ChangeOrderStatusCommandHandler) updateOrder(ctx context.Context, command ChangeOrderStatusCommand) error {
	create := func() OrderUoW { return h.uowFactory.Create() }
	return inTx(ctx, create, func(uow OrderUoW) error {
		repo := uow.OrderRepository()
		now := h.clock.Now()

		current, err := repo.Get(ctx, command.OrderID())
		if err != nil {
			return err
		}
		from := current.Status()
		if err = current.ChangeStatus(command.Target(), now); err != nil {
			return err
		}
		if err = repo.Update(ctx, current); err != nil {
			return err
		}
		if err = repo.AddStatusChange(ctx, order.StatusChange{
			OrderID:   current.ID(),
			From:      from,
			To:        command.Target(),
			ChangedBy: command.Actor().UserID(),
			ChangedAt: now,
		}); err != nil {
			return err
		}

		if command.Target() != order.Accepted || command.Actor().IsIntegration() {
			return nil
		}
		participant, err := order.NewParticipant(command.Actor().UserID(), false)
		if err != nil {
			return err
		}
		added, err := current.AddParticipant(participant, now)
		if err != nil || !added {
			return err
		}
		if err = repo.AddParticipant(ctx, current.ID(), participant); err != nil {
			return err
		}
		return enqueueParticipantsChanged(ctx, uow.OutboxRepository(), current, now)
	})
}

// authorizeStatusChange limits who may move an order to target. Booking
// progress is driven by integrations and staff; the buyer cancels; any
// organization on the order may accept it.
func authorizeStatusChange(o *order.Order, a actor.Actor, target order.Status) error {
	if !o.IsVisibleTo(a) {
		return errs.NewNotAuthorizedError("order", "user is not associated with the order")
	}
	if a.IsPrivileged() {
		return nil
	}

	roles := o.RolesOf(a.OrgID())
	switch target {
	case order.Accepted:
		if len(roles) > 0 {
			return nil
		}
	case order.Cancelled:
		if slices.Contains(roles, order.RoleBuyer) {
			return nil
		}
	case order.Unknown, order.Received, order.Booked, order.InTransit, order.Delivered:
	}
	return errs.NewNotAuthorizedError(
		"order status",
		fmt.Sprintf("%s may not move the order to %s", a.Kind(), target),
	)
}

func enqueueParticipantsChanged(ctx context.Context, outbox ports.OutboxRepository, o *order.Order, now time.Time) error {
	members := make([]kernel.UUID, 0, len(o.Participants()))
	for _, p := range o.Participants() {
		members = append(members, p.UserID())
	}
	n, err := thread.NewParticipantsChanged(o.ID(), members, now)
	if err != nil {
		return err
	}
	return outbox.Add(ctx, n)
}

// linkedAndCancelled loads what the editability and cancellation rules need.
func linkedAndCancelled(
	ctx context.Context,
	store ports.FulfillmentStore,
	catalog ports.StatusCatalog,
	orderID kernel.UUID,
) (fulfillment.Linked, services.CancelledStatuses, error) {
	linked, err := store.LinkedTo(ctx, orderID)
	if err != nil {
		return fulfillment.Linked{}, services.CancelledStatuses{}, err
	}
	cancelled, err := catalog.CancelledStatuses(ctx)
	if err != nil {
		return fulfillment.Linked{}, services.CancelledStatuses{}, err
	}
	return linked, cancelled, nil
}
