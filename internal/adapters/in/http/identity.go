package http

import (
	"errors"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Identity headers are set by the gateway after authentication.
const (
	HeaderUserID    = "X-User-ID"
	HeaderOrgID     = "X-Org-ID"
	HeaderActorKind = "X-Actor-Kind"
)

// actorFromRequest reads the acting identity. A missing kind means an
// interactive user.
func actorFromRequest(c echo.Context) (actor.Actor, error) {
	h := c.Request().Header

	userID, userErr := kernel.UUIDFromString(h.Get(HeaderUserID))
	if userErr != nil {
		userErr = errs.NewValueIsInvalidErrorWithCause(HeaderUserID, userErr)
	}
	orgID, orgErr := kernel.UUIDFromString(h.Get(HeaderOrgID))
	if orgErr != nil {
		orgErr = errs.NewValueIsInvalidErrorWithCause(HeaderOrgID, orgErr)
	}

	kind := actor.User
	var kindErr error
	if raw := h.Get(HeaderActorKind); raw != "" {
		kind, kindErr = actor.ParseKind(raw)
	}

	if err := errors.Join(userErr, orgErr, kindErr); err != nil {
		return actor.Actor{}, errs.NewNotAuthorizedErrorWithCause("request", "missing or malformed identity headers", err)
	}
	return actor.NewActor(userID, orgID, kind)
}

func uuidParam(c echo.Context, name string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(c.Param(name))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}
