// Package preferences holds the purchase order preferences of a buyer
// organization: whether change control is on, and who may edit which field.
package preferences

import (
	"slices"

	"procurement/internal/core/domain/model/order"
)

// FieldRule configures one order field.
type FieldRule struct {
	EditableBy               []order.Role `json:"editableBy"`
	ExcludeFromChangeControl bool         `json:"excludeFromChangeControl"`
}

// Preferences is a value object. Fields without a rule fall back to Default.
type Preferences struct {
	ChangeControlEnabled bool                      `json:"changeControlEnabled"`
	Fields               map[order.Field]FieldRule `json:"fields"`
}

// Default returns the preferences of an organization that configured nothing.
// Change control is off; cargo-ready date, hot flag and special instructions
// are excluded from change control once it is switched on.
func Default() Preferences {
	buyerOnly := []order.Role{order.RoleBuyer}
	fields := make(map[order.Field]FieldRule, len(order.AllFields()))
	for _, f := range order.AllFields() {
		fields[f] = FieldRule{EditableBy: buyerOnly}
	}

	fields[order.FieldCargoReadyDate] = FieldRule{
		EditableBy:               []order.Role{order.RoleBuyer, order.RoleSupplier},
		ExcludeFromChangeControl: true,
	}
	fields[order.FieldIsHot] = FieldRule{EditableBy: buyerOnly, ExcludeFromChangeControl: true}
	fields[order.FieldSpecialInstructions] = FieldRule{
		EditableBy:               []order.Role{order.RoleBuyer, order.RoleSupplier, order.RoleForwarder},
		ExcludeFromChangeControl: true,
	}
	fields[order.FieldOrigin] = FieldRule{EditableBy: []order.Role{order.RoleBuyer, order.RoleSupplier}}
	fields[order.FieldShipMode] = FieldRule{EditableBy: []order.Role{order.RoleBuyer, order.RoleForwarder}}

	return Preferences{Fields: fields}
}

// Rule returns the configured rule for f, or the default rule when none is set.
func (p Preferences) Rule(f order.Field) FieldRule {
	if rule, ok := p.Fields[f]; ok {
		return rule
	}
	return Default().Fields[f]
}

// IsEditableBy reports whether any of roles may edit f.
func (p Preferences) IsEditableBy(f order.Field, roles []order.Role) bool {
	rule := p.Rule(f)
	for _, r := range roles {
		if slices.Contains(rule.EditableBy, r) {
			return true
		}
	}
	return false
}

// IsChangeControlled reports whether edits to f go through change control
// when it is enabled.
func (p Preferences) IsChangeControlled(f order.Field) bool {
	return !p.Rule(f).ExcludeFromChangeControl
}
