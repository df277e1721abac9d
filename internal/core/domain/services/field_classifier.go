package services

import (
	"fmt"
	"slices"
	"strings"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/domain/model/preferences"
	"procurement/internal/pkg/errs"
)

// Classification splits the fields of an edit into the two buckets the
// router works with.
type Classification struct {
	// ChangeControlled holds fields that go through change control when it is active.
	ChangeControlled order.FieldValues
	// Direct holds fields excluded from change control. They are always applied directly.
	Direct order.FieldValues
}

// All returns both buckets merged.
func (c Classification) All() order.FieldValues {
	out := make(order.FieldValues, len(c.ChangeControlled)+len(c.Direct))
	for f, v := range c.ChangeControlled {
		out[f] = v
	}
	for f, v := range c.Direct {
		out[f] = v
	}
	return out
}

// FieldClassifier checks field-level edit permissions and buckets the fields
// of an edit according to the buyer organization's preferences.
//
// Business rules:
//   - Integrations bypass field permissions and never use change control
//   - Staff and admin users edit with the buyer's permissions
//   - Any other caller needs one of its roles listed in the field's rule
//   - A field is change-controlled unless its rule excludes it
type FieldClassifier struct{}

func NewFieldClassifier() FieldClassifier {
	return FieldClassifier{}
}

// Classify returns the buckets for values, or a NotAuthorizedError naming the
// first field the caller may not edit.
//
// Parameters:
//   - prefs: purchase order preferences of the buyer organization
//   - a: the acting identity
//   - roles: roles the actor's organization holds on the order
//   - values: the proposed field values
func (FieldClassifier) Classify(
	prefs preferences.Preferences,
	a actor.Actor,
	roles []order.Role,
	values order.FieldValues,
) (Classification, error) {
	c := Classification{
		ChangeControlled: make(order.FieldValues),
		Direct:           make(order.FieldValues),
	}

	if a.IsIntegration() {
		for f, v := range values {
			c.Direct[f] = v
		}
		return c, nil
	}

	if a.IsPrivileged() {
		roles = append(slices.Clone(roles), order.RoleBuyer)
	}

	for _, f := range values.Fields() {
		if !prefs.IsEditableBy(f, roles) {
			return Classification{}, errs.NewNotAuthorizedError(
				fmt.Sprintf("field %s", f),
				fmt.Sprintf("not editable by %s", describeRoles(roles)),
			)
		}
		if prefs.IsChangeControlled(f) {
			c.ChangeControlled[f] = values[f]
		} else {
			c.Direct[f] = values[f]
		}
	}
	if len(c.ChangeControlled)+len(c.Direct) != len(values) {
		return Classification{}, errs.NewValueIsInvalidError("field")
	}
	return c, nil
}

func describeRoles(roles []order.Role) string {
	if len(roles) == 0 {
		return "an organization without a role on the order"
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.String())
	}
	return strings.Join(names, "/")
}
