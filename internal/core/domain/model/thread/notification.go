// Package thread describes messages for an order's message thread. The
// thread itself lives in the messaging store; the order side only asks for
// it to be created or edited and posts change request announcements.
package thread

import (
	"errors"
	"slices"
	"time"

	"procurement/internal/core/domain/model/changerequest"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/pkg/errs"
)

// Kind selects what the messaging store does with a notification.
type Kind string

const (
	// KindParticipantsChanged creates the order thread or edits its members.
	KindParticipantsChanged Kind = "order.thread.participants_changed"
	// KindChangeRequestSubmitted posts a change request to the thread.
	KindChangeRequestSubmitted Kind = "order.thread.change_request_submitted"
)

// Notification is serialized into the outbox and relayed to the messaging store.
type Notification struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	OrderID    string    `json:"orderId"`
	Recipients []string  `json:"recipients"`
	OccurredAt time.Time `json:"occurredAt"`

	ChangeRequest *ChangeRequestAttachment `json:"changeRequest,omitempty"`
}

// ChangeRequestAttachment is the change request summary posted to the thread.
type ChangeRequestAttachment struct {
	ID          string `json:"id"`
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AuthorID    string `json:"authorId"`
}

// NewParticipantsChanged asks for the thread of orderID to contain exactly members.
func NewParticipantsChanged(orderID kernel.UUID, members []kernel.UUID, now time.Time) (Notification, error) {
	if err := orderID.Validate(); err != nil {
		return Notification{}, err
	}
	return Notification{
		ID:         kernel.NewUUID().String(),
		Kind:       KindParticipantsChanged,
		OrderID:    orderID.String(),
		Recipients: toStrings(members),
		OccurredAt: now,
	}, nil
}

// NewChangeRequestSubmitted announces cr to every participant except its author.
func NewChangeRequestSubmitted(cr *changerequest.ChangeRequest, participants []kernel.UUID, now time.Time) (Notification, error) {
	if err := cr.Validate(); err != nil {
		return Notification{}, err
	}
	recipients := slices.DeleteFunc(slices.Clone(participants), func(id kernel.UUID) bool {
		return id.IsEqual(cr.AuthorID())
	})
	return Notification{
		ID:         kernel.NewUUID().String(),
		Kind:       KindChangeRequestSubmitted,
		OrderID:    cr.OrderID().String(),
		Recipients: toStrings(recipients),
		OccurredAt: now,
		ChangeRequest: &ChangeRequestAttachment{
			ID:          cr.ID().String(),
			Number:      cr.Number(),
			Title:       cr.Title(),
			Description: cr.Description(),
			AuthorID:    cr.AuthorID().String(),
		},
	}, nil
}

// Validate checks a notification read back from the outbox.
func (n Notification) Validate() error {
	var errList []error
	if n.ID == "" {
		errList = append(errList, errs.NewValueIsRequiredError("notification id"))
	}
	if n.OrderID == "" {
		errList = append(errList, errs.NewValueIsRequiredError("notification order"))
	}
	switch n.Kind {
	case KindParticipantsChanged:
	case KindChangeRequestSubmitted:
		if n.ChangeRequest == nil {
			errList = append(errList, errs.NewValueIsRequiredError("notification change request"))
		}
	default:
		errList = append(errList, errs.NewValueIsInvalidError("notification kind"))
	}
	return errors.Join(errList...)
}

func toStrings(ids []kernel.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
