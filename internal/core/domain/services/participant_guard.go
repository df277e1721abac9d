package services

import (
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
)

// ParticipantGuard decides whether a non-privileged user may replace the
// participant set of an order. Privileged callers (admin, staff and
// integrations) are not subject to it; the caller checks that first.
//
// Business rules:
//   - A user may always change their own approver status
//   - That is the only change to the approver set a user may make alone
//   - Participants who are not approvers may be added or removed freely
type ParticipantGuard struct{}

func NewParticipantGuard() ParticipantGuard {
	return ParticipantGuard{}
}

// IsAllowedToEditParticipants walks the current approvers. The acting user,
// when an approver, counts as a self-affecting controller mutation. Every
// other approver who disappears from proposed or whose approval flag flips
// counts as a controller mutation. The edit is rejected when mutations
// happened without the actor being one of them, or when there was more than
// one.
//
// Parameters:
//   - current: the participants stored on the order
//   - proposed: the complete replacement set
//   - actingUserID: the user submitting the replacement
//
// Returns:
//   - true when the replacement may be applied
func (ParticipantGuard) IsAllowedToEditParticipants(
	current []order.Participant,
	proposed []order.Participant,
	actingUserID kernel.UUID,
) bool {
	proposedByUser := make(map[kernel.UUID]order.Participant, len(proposed))
	for _, p := range proposed {
		proposedByUser[p.UserID()] = p
	}

	selfAffected, controllerMutations := 0, 0
	for _, p := range order.Approvers(current) {
		if p.UserID().IsEqual(actingUserID) {
			selfAffected++
			controllerMutations++
			continue
		}
		next, stillThere := proposedByUser[p.UserID()]
		if !stillThere || next.ApprovalIsRequired() != p.ApprovalIsRequired() {
			controllerMutations++
		}
	}

	if controllerMutations > 0 && selfAffected == 0 {
		return false
	}
	return controllerMutations <= 1
}
