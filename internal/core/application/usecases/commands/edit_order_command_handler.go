package commands

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"procurement/internal/core/domain/model/changerequest"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/domain/model/preferences"
	"procurement/internal/core/domain/model/thread"
	"procurement/internal/core/domain/services"
	"procurement/internal/core/ports"
	"procurement/internal/metrics"
	"procurement/internal/pkg/errs"
	"procurement/internal/pkg/saga"
)

// maxNumberingAttempts bounds the retries of a change request insert that
// lost the race for its number.
const maxNumberingAttempts = 3

// OrderStatusChanger applies the status part of an edit.
type OrderStatusChanger interface {
	Handle(ctx context.Context, command ChangeOrderStatusCommand) error
}

// EditOrderDependencies groups the collaborators of EditOrderCommandHandler.
type EditOrderDependencies struct {
	UoWFactory    UoWFactory
	StatusChanger OrderStatusChanger
	Preferences   ports.PreferencesProvider
	Fulfillments  ports.FulfillmentStore
	Catalog       ports.StatusCatalog
	Bookings      ports.BookingResetter
	OrderCache    ports.OrderCache
	LineItemCache ports.LineItemCache
	Clock         kernel.Clock
	Logger        *slog.Logger
}

// EditOrderCommandHandler routes an order edit either straight to the order
// or through change control.
//
// The edit runs as a saga of independently committed phases:
//  1. status: the requested status change with all its side effects
//  2. reset bookings: integrations invalidate dependent booking progress
//  3. direct fields: fields applied to the order row in one transaction
//  4. line items: one transaction per instruction category
//  5. readiness: ready-for-booking recomputed after direct changes
//  6. change request: numbered request with reviews and deltas
//
// The path (DirectOnly, ChangeControlOnly, ChangeControlPlusDirect) is decided
// once, after the status phase, and each phase checks it on its own.
// Everything that can be rejected is checked before the first phase runs.
type EditOrderCommandHandler struct {
	uowFactory    UoWFactory
	statusChanger OrderStatusChanger
	preferences   ports.PreferencesProvider
	fulfillments  ports.FulfillmentStore
	catalog       ports.StatusCatalog
	bookings      ports.BookingResetter
	orderCache    ports.OrderCache
	lineItemCache ports.LineItemCache
	clock         kernel.Clock
	logger        *slog.Logger

	classifier  services.FieldClassifier
	reconciler  services.LineItemReconciler
	editability services.EditabilityPolicy
	readiness   services.ReadinessEvaluator
	describer   services.ChangeRequestDescriber
}

func NewEditOrderCommandHandler(deps EditOrderDependencies) *EditOrderCommandHandler {
	return &EditOrderCommandHandler{
		uowFactory:    deps.UoWFactory,
		statusChanger: deps.StatusChanger,
		preferences:   deps.Preferences,
		fulfillments:  deps.Fulfillments,
		catalog:       deps.Catalog,
		bookings:      deps.Bookings,
		orderCache:    deps.OrderCache,
		lineItemCache: deps.LineItemCache,
		clock:         deps.Clock,
		logger:        deps.Logger.With("component", "EditOrderCommandHandler"),
		classifier:    services.NewFieldClassifier(),
		reconciler:    services.NewLineItemReconciler(),
		editability:   services.NewEditabilityPolicy(),
		readiness:     services.NewReadinessEvaluator(),
		describer:     services.NewChangeRequestDescriber(),
	}
}

// edit is the state of one Handle call shared by the saga phases.
type edit struct {
	command        EditOrderCommand
	current        *order.Order
	prefs          preferences.Preferences
	classification services.Classification
	plan           services.LineItemPlan
	route          func() services.EditPath
}

// Handle applies the edit and returns the order as read back from the store.
func (h *EditOrderCommandHandler) Handle(ctx context.Context, command EditOrderCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	e, err := h.prepare(ctx, command)
	if err != nil {
		return nil, err
	}

	s := saga.New("edit order", h.logger)
	if target, ok := command.Status(); ok {
		s.Add("status", func(ctx context.Context) error { return h.changeStatus(ctx, e, target) })
	}
	s.Add("reset bookings", func(ctx context.Context) error { return h.resetBookings(ctx, e) })
	s.Add("direct fields", func(ctx context.Context) error { return h.applyFields(ctx, e) })
	s.Add("line items", func(ctx context.Context) error { return h.applyLineItems(ctx, e) })
	s.Add("readiness", func(ctx context.Context) error { return h.refreshReadiness(ctx, e) })
	s.Add("change request", func(ctx context.Context) error { return h.raiseChangeRequest(ctx, e) })

	err = s.Execute(ctx)
	h.orderCache.Invalidate(command.OrderID())
	if err != nil {
		var sagaErr *saga.Error
		if errors.As(err, &sagaErr) {
			metrics.SagaFailuresTotal.WithLabelValues("edit order", sagaErr.Phase).Inc()
		}
		return nil, err
	}

	metrics.OrderEditsTotal.WithLabelValues(e.route().String()).Inc()
	return h.reload(ctx, command.OrderID())
}

// prepare re-reads the order and runs every check that can reject the edit.
func (h *EditOrderCommandHandler) prepare(ctx context.Context, command EditOrderCommand) (*edit, error) {
	a := command.Actor()
	o, err := h.reload(ctx, command.OrderID())
	if err != nil {
		return nil, err
	}
	if !o.IsVisibleTo(a) {
		return nil, errs.NewNotAuthorizedError("order", "user is not associated with the order")
	}

	linked, cancelled, err := linkedAndCancelled(ctx, h.fulfillments, h.catalog, o.ID())
	if err != nil {
		return nil, err
	}
	if err = h.editability.Check(o, a, linked, cancelled).Err(); err != nil {
		return nil, err
	}

	prefs, err := h.preferences.Get(ctx, a.UserID(), a.OrgID(), o.BuyerOrgID())
	if err != nil {
		return nil, err
	}

	changed, err := command.Fields().WithoutUnchanged(o.Details())
	if err != nil {
		return nil, err
	}
	classification, err := h.classifier.Classify(prefs, a, o.RolesOf(a.OrgID()), changed)
	if err != nil {
		return nil, err
	}
	plan, err := h.reconciler.Plan(o.LineItems(), command.LineItems())
	if err != nil {
		return nil, err
	}

	e := &edit{
		command:        command,
		current:        o,
		prefs:          prefs,
		classification: classification,
		plan:           plan,
	}
	e.route = sync.OnceValue(func() services.EditPath {
		return services.DecideEditPath(
			prefs.ChangeControlEnabled && !a.IsIntegration(),
			e.current.Status(),
			classification,
			plan,
		)
	})
	return e, nil
}

func (h *EditOrderCommandHandler) reload(ctx context.Context, orderID kernel.UUID) (*order.Order, error) {
	h.orderCache.Invalidate(orderID)
	return h.uowFactory.Create().OrderRepository().Get(ctx, orderID)
}

func (h *EditOrderCommandHandler) changeStatus(ctx context.Context, e *edit, target order.Status) error {
	cmd, err := NewChangeOrderStatusCommand(e.command.OrderID(), e.command.Actor(), target)
	if err != nil {
		return err
	}
	if err = h.statusChanger.Handle(ctx, cmd); err != nil {
		return err
	}
	e.current, err = h.reload(ctx, e.command.OrderID())
	return err
}

// hasContent reports whether the edit changes anything beyond the status.
func (e *edit) hasContent() bool {
	return len(e.classification.ChangeControlled) > 0 ||
		len(e.classification.Direct) > 0 ||
		!e.plan.IsEmpty()
}

// isReset reports whether the edit takes the integration reset-and-apply path.
func (e *edit) isReset() bool {
	return e.command.Actor().IsIntegration() && e.hasContent()
}

func (h *EditOrderCommandHandler) resetBookings(ctx context.Context, e *edit) error {
	if !e.isReset() {
		return nil
	}
	return h.bookings.InvalidateBookings(ctx, e.command.OrderID())
}

// directValues returns the fields written straight to the order on the
// decided path.
func (e *edit) directValues() order.FieldValues {
	if e.route() == services.DirectOnly {
		return e.classification.All()
	}
	return e.classification.Direct
}

func (h *EditOrderCommandHandler) applyFields(ctx context.Context, e *edit) error {
	values := e.directValues()
	if len(values) == 0 && !e.isReset() {
		return nil
	}

	create := func() UoW { return h.uowFactory.Create() }
	return inTx(ctx, create, func(uow UoW) error {
		repo := uow.OrderRepository()
		now := h.clock.Now()

		o, err := repo.Get(ctx, e.command.OrderID())
		if err != nil {
			return err
		}
		from := o.Status()
		if e.isReset() {
			o.ResetToPreBooking(now)
		}
		if err = o.ApplyFieldValues(values, now); err != nil {
			return err
		}
		if err = repo.Update(ctx, o); err != nil {
			return err
		}
		if o.Status() != from {
			if err = repo.AddStatusChange(ctx, order.StatusChange{
				OrderID:   o.ID(),
				From:      from,
				To:        o.Status(),
				ChangedBy: e.command.Actor().UserID(),
				ChangedAt: now,
			}); err != nil {
				return err
			}
		}
		if values.HasParticipantField() {
			return enqueueParticipantsChanged(ctx, uow.OutboxRepository(), o, now)
		}
		return nil
	})
}

// applyLineItems runs each instruction category as its own transaction.
func (h *EditOrderCommandHandler) applyLineItems(ctx context.Context, e *edit) error {
	if e.route() != services.DirectOnly || e.plan.IsEmpty() {
		return nil
	}
	defer h.lineItemCache.Invalidate(e.plan.Touched()...)

	create := func() OrderUoW { return h.uowFactory.Create() }
	for _, step := range e.plan.Steps() {
		err := inTx(ctx, create, func(uow OrderUoW) error {
			repo := uow.OrderRepository()
			for _, m := range step.Mutations {
				rows, err := repo.ApplyLineItemMutation(ctx, e.command.OrderID(), m)
				if err != nil {
					return err
				}
				if err = m.Check(rows); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			h.logger.ErrorContext(ctx, "line item step failed",
				"order_id", e.command.OrderID().String(),
				"step", step.Name,
				"error", err,
			)
			return err
		}
	}
	return nil
}

func (h *EditOrderCommandHandler) refreshReadiness(ctx context.Context, e *edit) error {
	if e.route() != services.DirectOnly || !e.hasContent() {
		return nil
	}

	create := func() UoW { return h.uowFactory.Create() }
	return inTx(ctx, create, func(uow UoW) error {
		open, err := uow.ChangeRequestRepository().HasOpen(ctx, e.command.OrderID())
		if err != nil {
			return err
		}
		repo := uow.OrderRepository()
		o, err := repo.Get(ctx, e.command.OrderID())
		if err != nil {
			return err
		}
		ready := h.readiness.IsReadyForBooking(o, open)
		if ready == o.IsReadyForBooking() {
			return nil
		}
		o.SetReadyForBooking(ready, h.clock.Now())
		return repo.Update(ctx, o)
	})
}

// raiseChangeRequest numbers and inserts the change request. Losing the race
// for a number aborts the transaction, so the whole insert is retried.
func (h *EditOrderCommandHandler) raiseChangeRequest(ctx context.Context, e *edit) error {
	if !e.route().RaisesChangeRequest() {
		return nil
	}

	for attempt := 1; ; attempt++ {
		cr, err := h.insertChangeRequest(ctx, e)
		if err == nil {
			metrics.ChangeRequestsCreatedTotal.Inc()
			h.logger.InfoContext(ctx, "change request raised",
				"order_id", e.command.OrderID().String(),
				"change_request_id", cr.ID().String(),
				"number", cr.Number(),
			)
			return nil
		}
		if !errors.Is(err, ports.ErrChangeRequestNumberTaken) || attempt == maxNumberingAttempts {
			return err
		}
		metrics.ChangeRequestNumberConflictsTotal.Inc()
		h.logger.WarnContext(ctx, "change request number taken, retrying",
			"order_id", e.command.OrderID().String(),
			"attempt", attempt,
		)
	}
}

func (h *EditOrderCommandHandler) insertChangeRequest(ctx context.Context, e *edit) (*changerequest.ChangeRequest, error) {
	var cr *changerequest.ChangeRequest
	create := func() UoW { return h.uowFactory.Create() }
	err := inTx(ctx, create, func(uow UoW) error {
		orderRepo, crRepo := uow.OrderRepository(), uow.ChangeRequestRepository()
		now := h.clock.Now()

		o, err := orderRepo.Get(ctx, e.command.OrderID())
		if err != nil {
			return err
		}
		fieldChanges, err := e.classification.ChangeControlled.Changes(o.Details())
		if err != nil {
			return err
		}
		last, err := crRepo.MaxNumber(ctx, o.ID())
		if err != nil {
			return err
		}

		cr, err = changerequest.NewChangeRequest(kernel.NewUUID(), last+1, changerequest.Draft{
			OrderID:      o.ID(),
			AuthorID:     e.command.Actor().UserID(),
			Description:  h.describer.Describe(fieldChanges, e.plan),
			Note:         e.command.Note(),
			FieldChanges: fieldChanges,
			LineItems:    e.plan.Deltas(),
		}, order.Approvers(o.Participants()), now)
		if err != nil {
			return err
		}
		if err = crRepo.Add(ctx, cr); err != nil {
			return err
		}

		o.MarkNotReadyForBooking(now)
		if err = orderRepo.Update(ctx, o); err != nil {
			return err
		}

		members := make([]kernel.UUID, 0, len(o.Participants()))
		for _, p := range o.Participants() {
			members = append(members, p.UserID())
		}
		n, err := thread.NewChangeRequestSubmitted(cr, members, now)
		if err != nil {
			return err
		}
		return uow.OutboxRepository().Add(ctx, n)
	})
	return cr, err
}
