package order

import (
	"errors"
	"fmt"

	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/pkg/errs"
	"procurement/internal/pkg/guard"
)

var ErrLineItemInstructionsIsNotConstructed = errors.New(
	"LineItemInstructions must be created via NewLineItemInstructions constructor",
)

// LineItemEdit replaces the content of an existing line item.
type LineItemEdit struct {
	ID    kernel.UUID
	Draft LineItemDraft
}

// LineItemInstructions is the line item part of an edit payload. It holds
// either a wholesale replacement or any combination of add, edit and remove.
type LineItemInstructions struct {
	replace    []LineItemDraft
	hasReplace bool
	add        []LineItemDraft
	edit       []LineItemEdit
	remove     []kernel.UUID

	guard guard.ConstructorGuard
}

// NewLineItemInstructions validates the instruction shape. A nil replace means
// no replacement; a non-nil empty replace removes every line item.
func NewLineItemInstructions(
	replace []LineItemDraft,
	add []LineItemDraft,
	edit []LineItemEdit,
	remove []kernel.UUID,
) (LineItemInstructions, error) {
	hasReplace := replace != nil
	if hasReplace && (len(add) > 0 || len(edit) > 0 || len(remove) > 0) {
		return LineItemInstructions{}, errs.NewValueIsInvalidErrorWithCause(
			"line items",
			errors.New("replace cannot be combined with add, edit or remove"),
		)
	}

	var errList []error
	for _, d := range replace {
		errList = append(errList, d.Validate())
	}
	for _, d := range add {
		errList = append(errList, d.Validate())
	}

	edited := make(map[kernel.UUID]struct{}, len(edit))
	for _, e := range edit {
		if err := e.ID.Validate(); err != nil {
			errList = append(errList, errs.NewValueIsRequiredErrorWithCause("edited line item id", err))
			continue
		}
		if _, dup := edited[e.ID]; dup {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
				"line items", fmt.Errorf("line item %s is edited more than once", e.ID)))
		}
		edited[e.ID] = struct{}{}
		errList = append(errList, e.Draft.Validate())
	}

	removed := make(map[kernel.UUID]struct{}, len(remove))
	for _, id := range remove {
		if err := id.Validate(); err != nil {
			errList = append(errList, errs.NewValueIsRequiredErrorWithCause("removed line item id", err))
			continue
		}
		if _, both := edited[id]; both {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
				"line items", fmt.Errorf("line item %s is both edited and removed", id)))
		}
		if _, dup := removed[id]; dup {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
				"line items", fmt.Errorf("line item %s is removed more than once", id)))
		}
		removed[id] = struct{}{}
	}

	if err := errors.Join(errList...); err != nil {
		return LineItemInstructions{}, err
	}

	return LineItemInstructions{
		replace:    replace,
		hasReplace: hasReplace,
		add:        add,
		edit:       edit,
		remove:     remove,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (i LineItemInstructions) Validate() error {
	return i.guard.Validate(ErrLineItemInstructionsIsNotConstructed)
}

// IsEmpty reports whether the instructions carry nothing to do. The zero value is empty.
func (i LineItemInstructions) IsEmpty() bool {
	return !i.hasReplace && len(i.add) == 0 && len(i.edit) == 0 && len(i.remove) == 0
}

func (i LineItemInstructions) IsReplace() bool { return i.hasReplace }

func (i LineItemInstructions) Replace() []LineItemDraft { return i.replace }

func (i LineItemInstructions) Add() []LineItemDraft { return i.add }

func (i LineItemInstructions) Edit() []LineItemEdit { return i.edit }

func (i LineItemInstructions) Remove() []kernel.UUID { return i.remove }
