package ports

import (
	"context"
	"errors"

	"procurement/internal/core/domain/model/changerequest"
	"procurement/internal/core/domain/model/kernel"
)

// ErrChangeRequestNumberTaken is returned by Add when another change request
// of the same order already holds the number. The transaction is unusable
// afterwards; callers retry in a new one.
var ErrChangeRequestNumberTaken = errors.New("change request number is already taken")

type ChangeRequestRepository interface {
	// Add persists a change request together with its reviews and line item deltas.
	Add(ctx context.Context, cr *changerequest.ChangeRequest) error

	Get(ctx context.Context, id kernel.UUID) (*changerequest.ChangeRequest, error)

	// GetForUpdate is Get holding a row lock on the change request until the
	// transaction ends. Reviews of the same request are serialized by it.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*changerequest.ChangeRequest, error)

	// ListByOrder returns the change requests of an order by ascending number.
	ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*changerequest.ChangeRequest, error)

	// MaxNumber returns the highest change request number of the order, or 0.
	MaxNumber(ctx context.Context, orderID kernel.UUID) (int, error)

	// HasOpen reports whether the order has a change request still Proposed.
	HasOpen(ctx context.Context, orderID kernel.UUID) (bool, error)

	// UpdateReview persists a decided review row and the derived request status.
	UpdateReview(ctx context.Context, cr *changerequest.ChangeRequest, review changerequest.Review) error
}
