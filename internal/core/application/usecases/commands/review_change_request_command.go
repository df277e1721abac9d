package commands

import (
	"errors"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/changerequest"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/pkg/errs"
	"procurement/internal/pkg/guard"
)

var ErrReviewChangeRequestCommandIsNotConstructed = errors.New(
	"ReviewChangeRequestCommand must be created via NewReviewChangeRequestCommand constructor",
)

// ReviewChangeRequestCommand records an approver's verdict on a change request.
type ReviewChangeRequestCommand struct {
	changeRequestID kernel.UUID
	actor           actor.Actor
	verdict         changerequest.Status

	guard guard.ConstructorGuard
}

func NewReviewChangeRequestCommand(
	changeRequestID kernel.UUID,
	a actor.Actor,
	verdict changerequest.Status,
) (ReviewChangeRequestCommand, error) {
	if err := errors.Join(changeRequestID.Validate(), a.Validate()); err != nil {
		return ReviewChangeRequestCommand{}, err
	}
	if verdict != changerequest.Approved && verdict != changerequest.Rejected {
		return ReviewChangeRequestCommand{}, errs.NewValueIsInvalidError("verdict")
	}

	return ReviewChangeRequestCommand{
		changeRequestID: changeRequestID,
		actor:           a,
		verdict:         verdict,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (c ReviewChangeRequestCommand) Validate() error {
	return c.guard.Validate(ErrReviewChangeRequestCommandIsNotConstructed)
}

func (c ReviewChangeRequestCommand) ChangeRequestID() kernel.UUID { return c.changeRequestID }

func (c ReviewChangeRequestCommand) Actor() actor.Actor { return c.actor }

func (c ReviewChangeRequestCommand) Verdict() changerequest.Status { return c.verdict }
