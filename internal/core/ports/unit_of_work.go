package ports

import (
	"context"
)

// UnitOfWorkFactory hands every command its own UnitOfWork.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is one transaction over the relational order store. The order
// row, its change requests and the outbox messages raised while editing it
// are written through the repositories it returns.
type UnitOfWork interface {
	// Begin opens the transaction. A second call while it is open does nothing.
	Begin(ctx context.Context) error

	// Commit fails when no transaction is open.
	Commit(ctx context.Context) error

	// Rollback fails when no transaction is open, so deferring it after a
	// successful Commit is harmless.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	ChangeRequestRepository() ChangeRequestRepository
	OutboxRepository() OutboxRepository
}
