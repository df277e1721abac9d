// Package ports defines the contracts between the order editing core and its
// infrastructure: repositories bound to a unit of work, and collaborators
// backed by other stores.
package ports

import (
	"context"

	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/domain/services"
)

// OrderRepository defines the persistence contract for order aggregates and
// the rows they own: line items, line item notes, participants and status history.
type OrderRepository interface {
	// Add persists a new order with its line items and participants.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the order row: details, status and readiness.
	// Returns ObjectNotFoundError when no row was updated.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves the complete aggregate.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ApplyLineItemMutation executes one tagged line item write and reports
	// how many rows it affected. Callers turn zero rows into an error.
	ApplyLineItemMutation(ctx context.Context, orderID kernel.UUID, m services.LineItemMutation) (int64, error)

	// ReplaceParticipants deletes every participant of the order and inserts participants.
	ReplaceParticipants(ctx context.Context, orderID kernel.UUID, participants []order.Participant) error

	// AddParticipant inserts a participant unless the user already takes part.
	AddParticipant(ctx context.Context, orderID kernel.UUID, participant order.Participant) error

	// AddStatusChange appends a row to the status history of the order.
	AddStatusChange(ctx context.Context, change order.StatusChange) error
}
