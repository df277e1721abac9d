package commands

import (
	"errors"
	"slices"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/pkg/guard"
)

var ErrEditParticipantsCommandIsNotConstructed = errors.New(
	"EditParticipantsCommand must be created via NewEditParticipantsCommand constructor",
)

// EditParticipantsCommand replaces the complete participant set of an order.
type EditParticipantsCommand struct {
	orderID      kernel.UUID
	actor        actor.Actor
	participants []order.Participant

	guard guard.ConstructorGuard
}

func NewEditParticipantsCommand(
	orderID kernel.UUID,
	a actor.Actor,
	participants []order.Participant,
) (EditParticipantsCommand, error) {
	if err := errors.Join(
		orderID.Validate(),
		a.Validate(),
		order.ValidateParticipantSet(participants),
	); err != nil {
		return EditParticipantsCommand{}, err
	}

	return EditParticipantsCommand{
		orderID:      orderID,
		actor:        a,
		participants: slices.Clone(participants),
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c EditParticipantsCommand) Validate() error {
	return c.guard.Validate(ErrEditParticipantsCommandIsNotConstructed)
}

func (c EditParticipantsCommand) OrderID() kernel.UUID { return c.orderID }

func (c EditParticipantsCommand) Actor() actor.Actor { return c.actor }

func (c EditParticipantsCommand) Participants() []order.Participant {
	return slices.Clone(c.participants)
}
