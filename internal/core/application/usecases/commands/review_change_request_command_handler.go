package commands

import (
	"context"
	"log/slog"

	"procurement/internal/core/domain/model/changerequest"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/metrics"
	"procurement/internal/pkg/errs"
)

// ReviewChangeRequestCommandHandler moves the caller's review row out of
// Proposed and stores the change request status derived from all rows.
//
// The request row is locked for the whole transaction, so concurrent reviews
// of one request derive its status from each other's verdicts.
//
// Only a current participant of the order who is a required approver may
// review. Applying an approved request to the order is left to the
// collaborator that consumes approved requests.
type ReviewChangeRequestCommandHandler struct {
	uowFactory UoWFactory
	clock      kernel.Clock
	logger     *slog.Logger
}

func NewReviewChangeRequestCommandHandler(
	uowFactory UoWFactory,
	clock kernel.Clock,
	logger *slog.Logger,
) *ReviewChangeRequestCommandHandler {
	return &ReviewChangeRequestCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		logger:     logger.With("component", "ReviewChangeRequestCommandHandler"),
	}
}

// Handle returns the change request after the review.
func (h *ReviewChangeRequestCommandHandler) Handle(
	ctx context.Context,
	command ReviewChangeRequestCommand,
) (*changerequest.ChangeRequest, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	crRepo := uow.ChangeRequestRepository()
	cr, err := crRepo.GetForUpdate(ctx, command.ChangeRequestID())
	if err != nil {
		return nil, err
	}
	o, err := uow.OrderRepository().Get(ctx, cr.OrderID())
	if err != nil {
		return nil, err
	}

	reviewerID := command.Actor().UserID()
	if p, ok := o.Participant(reviewerID); !ok || !p.ApprovalIsRequired() {
		return nil, errs.NewNotAuthorizedError("change request review", "user is not a required approver of the order")
	}

	review, err := cr.Review(reviewerID, command.Verdict(), h.clock.Now())
	if err != nil {
		return nil, err
	}
	if err = crRepo.UpdateReview(ctx, cr, review); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.ChangeReviewsTotal.WithLabelValues(command.Verdict().String()).Inc()
	h.logger.InfoContext(ctx, "change request reviewed",
		"change_request_id", cr.ID().String(),
		"order_id", cr.OrderID().String(),
		"verdict", command.Verdict().String(),
		"status", cr.Status().String(),
	)
	return cr, nil
}
