package services

import (
	"fmt"
	"strings"

	"procurement/internal/core/domain/model/order"
)

// ChangeRequestDescriber renders the human readable summary stored with a
// change request, one line per delta.
type ChangeRequestDescriber struct{}

func NewChangeRequestDescriber() ChangeRequestDescriber {
	return ChangeRequestDescriber{}
}

func (ChangeRequestDescriber) Describe(fields []order.FieldChange, plan LineItemPlan) string {
	var lines []string
	for _, c := range fields {
		lines = append(lines, fmt.Sprintf("%s: %s → %s", c.Field.Label(), displayValue(c.From), displayValue(c.To)))
	}

	if plan.Replace {
		lines = append(lines, fmt.Sprintf("Replace all line items with %d item(s)", len(plan.Added)))
		for _, li := range plan.Added {
			lines = append(lines, "  "+describeLineItem(li))
		}
		return strings.Join(lines, "\n")
	}

	for _, li := range plan.Removed {
		lines = append(lines, fmt.Sprintf("Remove line item #%d (%s)", li.ItemNumber(), li.Description()))
	}
	for _, r := range plan.Edited {
		lines = append(lines, fmt.Sprintf("Edit line item #%d: %s", r.Before.ItemNumber(), describeLineItem(r.After)))
	}
	for _, li := range plan.Added {
		lines = append(lines, fmt.Sprintf("Add line item #%d: %s", li.ItemNumber(), describeLineItem(li)))
	}
	return strings.Join(lines, "\n")
}

func describeLineItem(li order.LineItem) string {
	s := fmt.Sprintf("%s, %s %s @ %s", li.Description(), li.Quantity(), li.UnitOfMeasure(), li.UnitPrice())
	if li.Note() != "" {
		s += fmt.Sprintf(" (note: %s)", li.Note())
	}
	return s
}

func displayValue(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}
