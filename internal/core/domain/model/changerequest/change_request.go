package changerequest

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/pkg/errs"
	"procurement/internal/pkg/guard"
)

var ErrChangeRequestIsNotConstructed = errors.New(
	"ChangeRequest must be created via NewChangeRequest or RestoreChangeRequest constructor",
)

// ChangeRequest is an append-only proposal of order edits pending approval.
// Only the status of its reviews, and the status derived from them, change
// after creation.
type ChangeRequest struct {
	id          kernel.UUID
	orderID     kernel.UUID
	number      int
	description string
	note        string
	status      Status
	createdOn   time.Time
	authorID    kernel.UUID

	fieldChanges []order.FieldChange
	lineItems    []LineItemDelta
	reviews      []Review

	guard guard.ConstructorGuard
}

// Draft is the content of a change request before it is numbered.
type Draft struct {
	OrderID      kernel.UUID
	AuthorID     kernel.UUID
	Description  string
	Note         string
	FieldChanges []order.FieldChange
	LineItems    []LineItemDelta
}

// NewChangeRequest creates request number n from draft. One review row is
// seeded per required approver; see NewReview for the author's own row. The
// status is derived from the seeded rows, so a request whose only approver is
// its author, or that has no approver at all, is Approved on creation.
func NewChangeRequest(
	id kernel.UUID,
	number int,
	draft Draft,
	approvers []order.Participant,
	now time.Time,
) (*ChangeRequest, error) {
	if err := errors.Join(id.Validate(), draft.OrderID.Validate(), draft.AuthorID.Validate()); err != nil {
		return nil, err
	}
	if number < 1 {
		return nil, errs.NewValueIsOutOfRangeError("change request number", number, 1, nil)
	}
	if len(draft.FieldChanges) == 0 && len(draft.LineItems) == 0 {
		return nil, errs.NewValueIsRequiredError("change request content")
	}

	reviews := make([]Review, 0, len(approvers))
	for _, p := range approvers {
		if !p.ApprovalIsRequired() {
			continue
		}
		r, err := NewReview(kernel.NewUUID(), p.UserID(), draft.AuthorID, now)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}

	return &ChangeRequest{
		id:           id,
		orderID:      draft.OrderID,
		number:       number,
		description:  draft.Description,
		note:         draft.Note,
		status:       deriveStatus(reviews),
		createdOn:    kernel.Day(now),
		authorID:     draft.AuthorID,
		fieldChanges: slices.Clone(draft.FieldChanges),
		lineItems:    slices.Clone(draft.LineItems),
		reviews:      reviews,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// RestoreChangeRequest rehydrates a stored change request.
func RestoreChangeRequest(
	id kernel.UUID,
	number int,
	draft Draft,
	status Status,
	createdOn time.Time,
	reviews []Review,
) (*ChangeRequest, error) {
	if err := errors.Join(id.Validate(), draft.OrderID.Validate(), draft.AuthorID.Validate(), status.Validate()); err != nil {
		return nil, err
	}
	return &ChangeRequest{
		id:           id,
		orderID:      draft.OrderID,
		number:       number,
		description:  draft.Description,
		note:         draft.Note,
		status:       status,
		createdOn:    createdOn,
		authorID:     draft.AuthorID,
		fieldChanges: draft.FieldChanges,
		lineItems:    draft.LineItems,
		reviews:      reviews,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (cr *ChangeRequest) Validate() error {
	if cr == nil {
		return ErrChangeRequestIsNotConstructed
	}
	return cr.guard.Validate(ErrChangeRequestIsNotConstructed)
}

func (cr *ChangeRequest) ID() kernel.UUID                   { return cr.id }
func (cr *ChangeRequest) OrderID() kernel.UUID              { return cr.orderID }
func (cr *ChangeRequest) Number() int                       { return cr.number }
func (cr *ChangeRequest) Description() string               { return cr.description }
func (cr *ChangeRequest) Note() string                      { return cr.note }
func (cr *ChangeRequest) Status() Status                    { return cr.status }
func (cr *ChangeRequest) CreatedOn() time.Time              { return cr.createdOn }
func (cr *ChangeRequest) AuthorID() kernel.UUID             { return cr.authorID }
func (cr *ChangeRequest) FieldChanges() []order.FieldChange { return slices.Clone(cr.fieldChanges) }
func (cr *ChangeRequest) LineItems() []LineItemDelta        { return slices.Clone(cr.lineItems) }
func (cr *ChangeRequest) Reviews() []Review                 { return slices.Clone(cr.reviews) }

// Title is the generated display name, e.g. "Change Request #3".
func (cr *ChangeRequest) Title() string {
	return fmt.Sprintf("Change Request #%d", cr.number)
}

// Review records reviewerID's verdict on their own review row and re-derives
// the request status. It returns the updated row.
func (cr *ChangeRequest) Review(reviewerID kernel.UUID, verdict Status, now time.Time) (Review, error) {
	if cr.status.IsTerminal() {
		return Review{}, errs.NewBusinessRuleError(
			"change request already decided",
			fmt.Sprintf("%s is %s", cr.Title(), cr.status),
		)
	}
	for i := range cr.reviews {
		if !cr.reviews[i].reviewerID.IsEqual(reviewerID) {
			continue
		}
		if err := cr.reviews[i].decide(verdict, now); err != nil {
			return Review{}, err
		}
		cr.status = deriveStatus(cr.reviews)
		return cr.reviews[i], nil
	}
	return Review{}, errs.NewNotAuthorizedError(
		"change review",
		fmt.Sprintf("user %s is not a required approver of %s", reviewerID, cr.Title()),
	)
}

// deriveStatus folds review rows into the request status: any rejection
// rejects, unanimous approval approves. No rows means nobody has to approve.
func deriveStatus(reviews []Review) Status {
	approved := 0
	for _, r := range reviews {
		switch r.status {
		case Rejected:
			return Rejected
		case Approved:
			approved++
		case Unknown, Proposed:
		}
	}
	if approved == len(reviews) {
		return Approved
	}
	return Proposed
}
