package order

import (
	"errors"
	"fmt"
	"strings"

	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/pkg/errs"
	"procurement/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrLineItemIsNotConstructed = errors.New("LineItem must be created via NewLineItem or RestoreLineItem")

// LineItemDraft is the caller-supplied payload of a line item. It is used both
// for new items and as the full replacement content of an edited item.
type LineItemDraft struct {
	Description   string
	Quantity      decimal.Decimal
	UnitOfMeasure string
	UnitPrice     decimal.Decimal
	Note          string
}

func (d LineItemDraft) Validate() error {
	var errList []error
	if strings.TrimSpace(d.Description) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("line item description"))
	}
	if !d.Quantity.IsPositive() {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			"line item quantity", fmt.Errorf("%s is not greater than 0", d.Quantity)))
	}
	if d.UnitPrice.IsNegative() {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			"line item unit price", fmt.Errorf("%s is negative", d.UnitPrice)))
	}
	return errors.Join(errList...)
}

// LineItem is one position of an order. It is always mutated as a whole.
// The note lives in its own table and is reported separately when persisted.
type LineItem struct {
	id            kernel.UUID
	itemNumber    int
	description   string
	quantity      decimal.Decimal
	unitOfMeasure string
	unitPrice     decimal.Decimal
	note          string

	guard guard.ConstructorGuard
}

// NewLineItem builds a line item from a validated draft.
func NewLineItem(id kernel.UUID, itemNumber int, draft LineItemDraft) (LineItem, error) {
	if err := id.Validate(); err != nil {
		return LineItem{}, err
	}
	if itemNumber <= 0 {
		return LineItem{}, errs.NewValueIsOutOfRangeError("line item number", itemNumber, 1, nil)
	}
	if err := draft.Validate(); err != nil {
		return LineItem{}, err
	}
	return LineItem{
		id:            id,
		itemNumber:    itemNumber,
		description:   strings.TrimSpace(draft.Description),
		quantity:      draft.Quantity,
		unitOfMeasure: strings.TrimSpace(draft.UnitOfMeasure),
		unitPrice:     draft.UnitPrice,
		note:          strings.TrimSpace(draft.Note),
		guard:         guard.NewConstructorGuard(),
	}, nil
}

// RestoreLineItem rehydrates a stored line item without re-running draft validation.
func RestoreLineItem(
	id kernel.UUID,
	itemNumber int,
	description string,
	quantity decimal.Decimal,
	unitOfMeasure string,
	unitPrice decimal.Decimal,
	note string,
) LineItem {
	return LineItem{
		id:            id,
		itemNumber:    itemNumber,
		description:   description,
		quantity:      quantity,
		unitOfMeasure: unitOfMeasure,
		unitPrice:     unitPrice,
		note:          note,
		guard:         guard.NewConstructorGuard(),
	}
}

func (li LineItem) Validate() error {
	return li.guard.Validate(ErrLineItemIsNotConstructed)
}

func (li LineItem) ID() kernel.UUID            { return li.id }
func (li LineItem) ItemNumber() int            { return li.itemNumber }
func (li LineItem) Description() string        { return li.description }
func (li LineItem) Quantity() decimal.Decimal  { return li.quantity }
func (li LineItem) UnitOfMeasure() string      { return li.unitOfMeasure }
func (li LineItem) UnitPrice() decimal.Decimal { return li.unitPrice }
func (li LineItem) Note() string               { return li.note }

// Draft returns the editable content of the line item.
func (li LineItem) Draft() LineItemDraft {
	return LineItemDraft{
		Description:   li.description,
		Quantity:      li.quantity,
		UnitOfMeasure: li.unitOfMeasure,
		UnitPrice:     li.unitPrice,
		Note:          li.note,
	}
}

// Revise returns the line item with its content replaced by draft. Identity
// and item number are kept.
func (li LineItem) Revise(draft LineItemDraft) (LineItem, error) {
	return NewLineItem(li.id, li.itemNumber, draft)
}
