package commands

import (
	"context"
	"log/slog"

	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/services"
	"procurement/internal/core/ports"
	"procurement/internal/pkg/errs"
)

// EditParticipantsCommandHandler replaces the participants of an order and
// brings the order thread in line with them.
//
// Staff, admin and integration callers may rewrite the set freely. Other
// callers must be associated with the order and pass the participant guard:
// they may change their own approver status and otherwise only touch
// participants who are not approvers.
type EditParticipantsCommandHandler struct {
	uowFactory OrderUoWFactory
	orderCache ports.OrderCache
	guard      services.ParticipantGuard
	clock      kernel.Clock
	logger     *slog.Logger
}

func NewEditParticipantsCommandHandler(
	uowFactory OrderUoWFactory,
	orderCache ports.OrderCache,
	clock kernel.Clock,
	logger *slog.Logger,
) *EditParticipantsCommandHandler {
	return &EditParticipantsCommandHandler{
		uowFactory: uowFactory,
		orderCache: orderCache,
		guard:      services.NewParticipantGuard(),
		clock:      clock,
		logger:     logger.With("component", "EditParticipantsCommandHandler"),
	}
}

func (h *EditParticipantsCommandHandler) Handle(ctx context.Context, command EditParticipantsCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	h.orderCache.Invalidate(command.OrderID())
	defer h.orderCache.Invalidate(command.OrderID())

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	o, err := repo.Get(ctx, command.OrderID())
	if err != nil {
		return err
	}

	a := command.Actor()
	if !o.IsVisibleTo(a) {
		return errs.NewNotAuthorizedError("order", "user is not associated with the order")
	}
	if !a.IsPrivileged() &&
		!h.guard.IsAllowedToEditParticipants(o.Participants(), command.Participants(), a.UserID()) {
		h.logger.InfoContext(ctx, "participant edit rejected",
			"order_id", o.ID().String(),
			"user_id", a.UserID().String(),
		)
		return errs.NewNotAuthorizedError(
			"participants",
			"only your own approver status may change; other approvers need staff or admin",
		)
	}

	now := h.clock.Now()
	if err = o.ReplaceParticipants(command.Participants(), now); err != nil {
		return err
	}
	if err = repo.ReplaceParticipants(ctx, o.ID(), o.Participants()); err != nil {
		return err
	}
	if err = enqueueParticipantsChanged(ctx, uow.OutboxRepository(), o, now); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
