package changerequest

import (
	"fmt"

	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/pkg/errs"
)

// LineItemAction tells what a delta does to the live line items once the
// change request is applied. A wholesale replacement is captured as removals
// of every current item followed by additions.
type LineItemAction string

const (
	ActionAdd    LineItemAction = "add"
	ActionEdit   LineItemAction = "edit"
	ActionRemove LineItemAction = "remove"
)

func ParseLineItemAction(s string) (LineItemAction, error) {
	switch a := LineItemAction(s); a {
	case ActionAdd, ActionEdit, ActionRemove:
		return a, nil
	}
	return "", errs.NewValueIsInvalidErrorWithCause("line item action", fmt.Errorf("%q is not a line item action", s))
}

// LineItemDelta is a line item change captured by a change request instead
// of being applied. LineItemID is set for edit and remove. Proposed holds the
// new content for add and edit; Previous holds the content being
// edited or removed.
type LineItemDelta struct {
	Action     LineItemAction
	LineItemID *kernel.UUID
	ItemNumber int
	Proposed   *order.LineItemDraft
	Previous   *order.LineItemDraft
}
