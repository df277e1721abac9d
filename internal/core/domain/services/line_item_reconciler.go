package services

import (
	"slices"

	"procurement/internal/core/domain/model/changerequest"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/pkg/errs"
)

// LineItemEntity tags which table a mutation touches.
type LineItemEntity int

const (
	LineItemRow LineItemEntity = iota + 1
	LineItemNoteRow
)

func (e LineItemEntity) String() string {
	if e == LineItemNoteRow {
		return "line item note"
	}
	return "line item"
}

// MutationOp is the write performed by a LineItemMutation.
type MutationOp string

const (
	OpInsert MutationOp = "insert"
	OpUpdate MutationOp = "update"
	OpDelete MutationOp = "delete"
)

// LineItemMutation is one tagged row write. Item carries the state to write
// for inserts and updates, and the identity of the row for deletes.
type LineItemMutation struct {
	Entity LineItemEntity
	Op     MutationOp
	Item   order.LineItem
}

// Check turns the number of affected rows into an error naming the entity.
// Every mutation must affect at least one row.
func (m LineItemMutation) Check(rowsAffected int64) error {
	if rowsAffected > 0 {
		return nil
	}
	return errs.NewPersistenceError(m.Entity.String(), string(m.Op), m.Item.ID().String())
}

// LineItemRevision is an edited line item before and after the edit.
type LineItemRevision struct {
	Before order.LineItem
	After  order.LineItem
}

// LineItemStep is one instruction category. Steps run as independent operations.
type LineItemStep struct {
	Name      string
	Mutations []LineItemMutation
}

// LineItemPlan is the resolution of line item instructions against the
// current line items of an order.
type LineItemPlan struct {
	Replace bool
	Removed []order.LineItem
	Edited  []LineItemRevision
	Added   []order.LineItem
}

// IsEmpty reports whether the plan changes no line item. A replace with
// nothing to remove and nothing to add is empty.
func (p LineItemPlan) IsEmpty() bool {
	return len(p.Removed) == 0 && len(p.Edited) == 0 && len(p.Added) == 0
}

// Touched returns the ids of existing line items the plan edits or removes.
func (p LineItemPlan) Touched() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(p.Removed)+len(p.Edited))
	for _, li := range p.Removed {
		ids = append(ids, li.ID())
	}
	for _, r := range p.Edited {
		ids = append(ids, r.Before.ID())
	}
	return ids
}

// Steps lists the direct mutations grouped by category: removals first so a
// replacement can reuse item numbers, then edits, then additions.
func (p LineItemPlan) Steps() []LineItemStep {
	var steps []LineItemStep

	if len(p.Removed) > 0 {
		var ms []LineItemMutation
		for _, li := range p.Removed {
			if li.Note() != "" {
				ms = append(ms, LineItemMutation{Entity: LineItemNoteRow, Op: OpDelete, Item: li})
			}
			ms = append(ms, LineItemMutation{Entity: LineItemRow, Op: OpDelete, Item: li})
		}
		name := "remove line items"
		if p.Replace {
			name = "clear line items"
		}
		steps = append(steps, LineItemStep{Name: name, Mutations: ms})
	}

	if len(p.Edited) > 0 {
		var ms []LineItemMutation
		for _, r := range p.Edited {
			ms = append(ms, LineItemMutation{Entity: LineItemRow, Op: OpUpdate, Item: r.After})
			if op, ok := noteOp(r.Before.Note(), r.After.Note()); ok {
				ms = append(ms, LineItemMutation{Entity: LineItemNoteRow, Op: op, Item: r.After})
			}
		}
		steps = append(steps, LineItemStep{Name: "edit line items", Mutations: ms})
	}

	if len(p.Added) > 0 {
		var ms []LineItemMutation
		for _, li := range p.Added {
			ms = append(ms, LineItemMutation{Entity: LineItemRow, Op: OpInsert, Item: li})
			if li.Note() != "" {
				ms = append(ms, LineItemMutation{Entity: LineItemNoteRow, Op: OpInsert, Item: li})
			}
		}
		name := "add line items"
		if p.Replace {
			name = "insert replacement line items"
		}
		steps = append(steps, LineItemStep{Name: name, Mutations: ms})
	}

	return steps
}

func noteOp(before, after string) (MutationOp, bool) {
	switch {
	case before == after:
		return "", false
	case before == "":
		return OpInsert, true
	case after == "":
		return OpDelete, true
	default:
		return OpUpdate, true
	}
}

// Deltas renders the plan as change request line items without touching
// live line items.
func (p LineItemPlan) Deltas() []changerequest.LineItemDelta {
	deltas := make([]changerequest.LineItemDelta, 0, len(p.Removed)+len(p.Edited)+len(p.Added))
	for _, li := range p.Removed {
		id, prev := li.ID(), li.Draft()
		deltas = append(deltas, changerequest.LineItemDelta{
			Action:     changerequest.ActionRemove,
			LineItemID: &id,
			ItemNumber: li.ItemNumber(),
			Previous:   &prev,
		})
	}
	for _, r := range p.Edited {
		id, prev, next := r.Before.ID(), r.Before.Draft(), r.After.Draft()
		deltas = append(deltas, changerequest.LineItemDelta{
			Action:     changerequest.ActionEdit,
			LineItemID: &id,
			ItemNumber: r.Before.ItemNumber(),
			Proposed:   &next,
			Previous:   &prev,
		})
	}
	for _, li := range p.Added {
		next := li.Draft()
		deltas = append(deltas, changerequest.LineItemDelta{
			Action:     changerequest.ActionAdd,
			ItemNumber: li.ItemNumber(),
			Proposed:   &next,
		})
	}
	return deltas
}

// LineItemReconciler resolves line item instructions against the current
// line items of an order. Each line item is handled as a unit.
type LineItemReconciler struct {
	newID func() kernel.UUID
}

func NewLineItemReconciler() LineItemReconciler {
	return LineItemReconciler{newID: kernel.NewUUID}
}

// Plan resolves instr against current. Edited and removed ids must exist;
// edits that leave an item unchanged are dropped.
func (r LineItemReconciler) Plan(current []order.LineItem, instr order.LineItemInstructions) (LineItemPlan, error) {
	if instr.IsEmpty() {
		return LineItemPlan{}, nil
	}
	if err := instr.Validate(); err != nil {
		return LineItemPlan{}, err
	}

	newID := r.newID
	if newID == nil {
		newID = kernel.NewUUID
	}

	if instr.IsReplace() {
		plan := LineItemPlan{Replace: true, Removed: slices.Clone(current)}
		for i, d := range instr.Replace() {
			li, err := order.NewLineItem(newID(), i+1, d)
			if err != nil {
				return LineItemPlan{}, err
			}
			plan.Added = append(plan.Added, li)
		}
		return plan, nil
	}

	byID := make(map[kernel.UUID]order.LineItem, len(current))
	nextNumber := 1
	for _, li := range current {
		byID[li.ID()] = li
		nextNumber = max(nextNumber, li.ItemNumber()+1)
	}

	var plan LineItemPlan
	for _, id := range instr.Remove() {
		li, ok := byID[id]
		if !ok {
			return LineItemPlan{}, errs.NewObjectNotFoundError("line item", id)
		}
		plan.Removed = append(plan.Removed, li)
	}
	for _, e := range instr.Edit() {
		li, ok := byID[e.ID]
		if !ok {
			return LineItemPlan{}, errs.NewObjectNotFoundError("line item", e.ID)
		}
		revised, err := li.Revise(e.Draft)
		if err != nil {
			return LineItemPlan{}, err
		}
		if sameContent(li, revised) {
			continue
		}
		plan.Edited = append(plan.Edited, LineItemRevision{Before: li, After: revised})
	}
	for _, d := range instr.Add() {
		li, err := order.NewLineItem(newID(), nextNumber, d)
		if err != nil {
			return LineItemPlan{}, err
		}
		nextNumber++
		plan.Added = append(plan.Added, li)
	}
	return plan, nil
}

func sameContent(a, b order.LineItem) bool {
	return a.Description() == b.Description() &&
		a.Quantity().Equal(b.Quantity()) &&
		a.UnitOfMeasure() == b.UnitOfMeasure() &&
		a.UnitPrice().Equal(b.UnitPrice()) &&
		a.Note() == b.Note()
}
