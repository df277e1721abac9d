package commands

import (
	"context"
	"log/slog"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/ports"
	"procurement/internal/pkg/errs"
)

// SaveOrderPreferencesCommandHandler stores buyer organization preferences.
// Staff and admins may configure any organization, users only their own.
// Integrations are not allowed to change preferences.
type SaveOrderPreferencesCommandHandler struct {
	store  ports.PreferencesStore
	logger *slog.Logger
}

func NewSaveOrderPreferencesCommandHandler(store ports.PreferencesStore, logger *slog.Logger) *SaveOrderPreferencesCommandHandler {
	return &SaveOrderPreferencesCommandHandler{
		store:  store,
		logger: logger.With("component", "SaveOrderPreferencesCommandHandler"),
	}
}

func (h *SaveOrderPreferencesCommandHandler) Handle(ctx context.Context, command SaveOrderPreferencesCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	a := command.Actor()
	switch a.Kind() {
	case actor.Staff, actor.Admin:
	case actor.User:
		if !a.OrgID().IsEqual(command.BuyerOrgID()) {
			return errs.NewNotAuthorizedError("order preferences", "only the buyer organization may configure its orders")
		}
	default:
		return errs.NewNotAuthorizedError("order preferences", a.Kind().String()+" callers may not configure preferences")
	}

	if err := h.store.Save(ctx, command.BuyerOrgID(), command.Preferences()); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "order preferences saved",
		"buyer_org_id", command.BuyerOrgID().String(),
		"change_control", command.Preferences().ChangeControlEnabled,
	)
	return nil
}
