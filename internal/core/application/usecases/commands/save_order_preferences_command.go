package commands

import (
	"errors"
	"maps"
	"slices"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/domain/model/preferences"
	"procurement/internal/pkg/errs"
	"procurement/internal/pkg/guard"
)

var ErrSaveOrderPreferencesCommandIsNotConstructed = errors.New(
	"SaveOrderPreferencesCommand must be created via NewSaveOrderPreferencesCommand constructor",
)

// SaveOrderPreferencesCommand configures change control and field edit
// rights for the orders of one buyer organization.
type SaveOrderPreferencesCommand struct {
	buyerOrgID kernel.UUID
	actor      actor.Actor
	prefs      preferences.Preferences

	guard guard.ConstructorGuard
}

func NewSaveOrderPreferencesCommand(
	buyerOrgID kernel.UUID,
	a actor.Actor,
	prefs preferences.Preferences,
) (SaveOrderPreferencesCommand, error) {
	errList := []error{buyerOrgID.Validate(), a.Validate()}
	for f, rule := range prefs.Fields {
		if _, err := order.ParseField(string(f)); err != nil {
			errList = append(errList, err)
		}
		for _, r := range rule.EditableBy {
			if !slices.Contains(order.AllRoles(), r) {
				errList = append(errList, errs.NewValueIsInvalidError("role "+string(r)))
			}
		}
	}
	if err := errors.Join(errList...); err != nil {
		return SaveOrderPreferencesCommand{}, err
	}

	prefs.Fields = maps.Clone(prefs.Fields)
	return SaveOrderPreferencesCommand{
		buyerOrgID: buyerOrgID,
		actor:      a,
		prefs:      prefs,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c SaveOrderPreferencesCommand) Validate() error {
	return c.guard.Validate(ErrSaveOrderPreferencesCommandIsNotConstructed)
}

func (c SaveOrderPreferencesCommand) BuyerOrgID() kernel.UUID { return c.buyerOrgID }

func (c SaveOrderPreferencesCommand) Actor() actor.Actor { return c.actor }

func (c SaveOrderPreferencesCommand) Preferences() preferences.Preferences { return c.prefs }
