// Package actor describes who is performing an operation on an order: an
// interactive user of some organization, a staff or admin user with elevated
// privileges, or a trusted integration acting as a system of record.
package actor

import (
	"errors"
	"fmt"

	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/pkg/errs"
	"procurement/internal/pkg/guard"
)

var ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor constructor")

// Kind classifies the acting identity.
type Kind int

const (
	UnknownKind Kind = iota
	User
	Staff
	Admin
	Integration
)

func (k Kind) String() string {
	switch k {
	case User:
		return "user"
	case Staff:
		return "staff"
	case Admin:
		return "admin"
	case Integration:
		return "integration"
	case UnknownKind:
	}
	return "unknown"
}

// ParseKind maps the transport representation to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{User, Staff, Admin, Integration} {
		if k.String() == s {
			return k, nil
		}
	}
	return UnknownKind, errs.NewValueIsInvalidErrorWithCause("actor kind", fmt.Errorf("%q is not a known actor kind", s))
}

// Actor is an immutable value object.
type Actor struct {
	userID kernel.UUID
	orgID  kernel.UUID
	kind   Kind

	guard guard.ConstructorGuard
}

// NewActor validates the identity of the caller. Integrations still carry a
// technical user and the organization they act for.
func NewActor(userID, orgID kernel.UUID, kind Kind) (Actor, error) {
	if err := errors.Join(userID.Validate(), orgID.Validate()); err != nil {
		return Actor{}, err
	}
	if kind == UnknownKind {
		return Actor{}, errs.NewValueIsRequiredError("actor kind")
	}
	return Actor{userID: userID, orgID: orgID, kind: kind, guard: guard.NewConstructorGuard()}, nil
}

func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

func (a Actor) UserID() kernel.UUID { return a.userID }

func (a Actor) OrgID() kernel.UUID { return a.orgID }

func (a Actor) Kind() Kind { return a.kind }

// IsIntegration reports a trusted non-interactive caller exempt from
// field-level and change-control checks.
func (a Actor) IsIntegration() bool { return a.kind == Integration }

// IsPrivileged reports callers allowed to rewrite an order's approver set.
func (a Actor) IsPrivileged() bool {
	return a.kind == Admin || a.kind == Staff || a.kind == Integration
}
