package order

import (
	"errors"
	"fmt"

	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/pkg/errs"
	"procurement/internal/pkg/guard"
)

var ErrParticipantIsNotConstructed = errors.New("Participant must be created via NewParticipant constructor")

// Participant is a user entitled to act on an order. Participants with
// approvalIsRequired set are change controllers: their consent gates the
// approval of every change request.
type Participant struct {
	userID             kernel.UUID
	approvalIsRequired bool

	guard guard.ConstructorGuard
}

func NewParticipant(userID kernel.UUID, approvalIsRequired bool) (Participant, error) {
	if err := userID.Validate(); err != nil {
		return Participant{}, errs.NewValueIsRequiredErrorWithCause("participant user", err)
	}
	return Participant{
		userID:             userID,
		approvalIsRequired: approvalIsRequired,
		guard:              guard.NewConstructorGuard(),
	}, nil
}

func (p Participant) Validate() error {
	return p.guard.Validate(ErrParticipantIsNotConstructed)
}

func (p Participant) UserID() kernel.UUID { return p.userID }

func (p Participant) ApprovalIsRequired() bool { return p.approvalIsRequired }

// ValidateParticipantSet checks a complete replacement set: it must not be
// empty and may list each user at most once.
func ValidateParticipantSet(participants []Participant) error {
	if len(participants) == 0 {
		return errs.NewValueIsRequiredError("participants")
	}
	seen := make(map[kernel.UUID]struct{}, len(participants))
	for _, p := range participants {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := seen[p.userID]; dup {
			return errs.NewValueIsInvalidErrorWithCause(
				"participants",
				fmt.Errorf("user %s is listed more than once", p.userID),
			)
		}
		seen[p.userID] = struct{}{}
	}
	return nil
}

// Approvers returns the participants whose approval is required.
func Approvers(participants []Participant) []Participant {
	out := make([]Participant, 0, len(participants))
	for _, p := range participants {
		if p.approvalIsRequired {
			out = append(out, p)
		}
	}
	return out
}
