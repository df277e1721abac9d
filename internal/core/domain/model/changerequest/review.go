package changerequest

import (
	"errors"
	"fmt"
	"time"

	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/pkg/errs"
	"procurement/internal/pkg/guard"
)

var ErrReviewIsNotConstructed = errors.New("Review must be created via NewReview or RestoreReview constructor")

// Review is one required approver's verdict on a change request.
type Review struct {
	id         kernel.UUID
	reviewerID kernel.UUID
	status     Status
	reviewedAt *time.Time

	guard guard.ConstructorGuard
}

// NewReview seeds the review row of reviewerID. The author's own row is
// approved on submission and stamped with now; every other row starts
// Proposed without a review date.
func NewReview(id, reviewerID, authorID kernel.UUID, now time.Time) (Review, error) {
	if err := errors.Join(id.Validate(), reviewerID.Validate(), authorID.Validate()); err != nil {
		return Review{}, err
	}
	r := Review{id: id, reviewerID: reviewerID, status: Proposed, guard: guard.NewConstructorGuard()}
	if reviewerID.IsEqual(authorID) {
		r.status = Approved
		r.reviewedAt = &now
	}
	return r, nil
}

func RestoreReview(id, reviewerID kernel.UUID, status Status, reviewedAt *time.Time) (Review, error) {
	if err := errors.Join(id.Validate(), reviewerID.Validate(), status.Validate()); err != nil {
		return Review{}, err
	}
	return Review{id: id, reviewerID: reviewerID, status: status, reviewedAt: reviewedAt, guard: guard.NewConstructorGuard()}, nil
}

func (r Review) Validate() error {
	return r.guard.Validate(ErrReviewIsNotConstructed)
}

func (r Review) ID() kernel.UUID { return r.id }

func (r Review) ReviewerID() kernel.UUID { return r.reviewerID }

func (r Review) Status() Status { return r.status }

func (r Review) ReviewedAt() *time.Time { return r.reviewedAt }

// decide moves a Proposed review to Approved or Rejected.
func (r *Review) decide(verdict Status, now time.Time) error {
	if verdict != Approved && verdict != Rejected {
		return errs.NewValueIsInvalidErrorWithCause("verdict", fmt.Errorf("%s is not a verdict", verdict))
	}
	if r.status != Proposed {
		return errs.NewBusinessRuleError("review already decided", fmt.Sprintf("review %s is %s", r.id, r.status))
	}
	r.status = verdict
	r.reviewedAt = &now
	return nil
}
