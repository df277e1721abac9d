package ports

import (
	"context"
	"time"

	"procurement/internal/core/domain/model/thread"
)

// OutboxMessage is a thread notification waiting to be relayed.
type OutboxMessage struct {
	Notification thread.Notification
	Attempts     int
	CreatedAt    time.Time
}

// OutboxRepository stores thread notifications in the relational transaction
// that produced them.
type OutboxRepository interface {
	Add(ctx context.Context, n thread.Notification) error

	// FetchPending returns up to limit unpublished messages with fewer than
	// maxAttempts failed attempts, oldest first.
	FetchPending(ctx context.Context, limit, maxAttempts int) ([]OutboxMessage, error)

	MarkPublished(ctx context.Context, id string, at time.Time) error

	MarkFailed(ctx context.Context, id string, reason string) error
}
