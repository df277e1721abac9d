package commands

import (
	"context"
	"log/slog"

	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/ports"
	"procurement/internal/metrics"
)

// RelayOutboxResult counts the messages of one batch by outcome.
type RelayOutboxResult struct {
	Published int
	Failed    int
}

// RelayOutboxCommandHandler publishes pending thread notifications to the
// messaging store. It is the retry phase for every notification a command
// wrote to the outbox: delivery is at least once and the notification id
// lets the messaging store drop duplicates.
//
// The batch is fetched and marked in one transaction. Rows stay locked while
// they are published, so concurrent relays pick disjoint batches.
type RelayOutboxCommandHandler struct {
	uowFactory OutboxUoWFactory
	publisher  ports.ThreadPublisher
	clock      kernel.Clock
	logger     *slog.Logger
}

func NewRelayOutboxCommandHandler(
	uowFactory OutboxUoWFactory,
	publisher ports.ThreadPublisher,
	clock kernel.Clock,
	logger *slog.Logger,
) *RelayOutboxCommandHandler {
	return &RelayOutboxCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		clock:      clock,
		logger:     logger.With("component", "RelayOutboxCommandHandler"),
	}
}

// Handle fails only when the outbox itself cannot be read or updated. A
// message that cannot be published is marked failed and retried next batch.
func (h *RelayOutboxCommandHandler) Handle(ctx context.Context, command RelayOutboxCommand) (RelayOutboxResult, error) {
	if err := command.Validate(); err != nil {
		return RelayOutboxResult{}, err
	}

	var result RelayOutboxResult
	err := inTx(ctx, h.uowFactory.Create, func(uow OutboxUoW) error {
		repo := uow.OutboxRepository()
		pending, err := repo.FetchPending(ctx, command.BatchSize(), command.MaxAttempts())
		if err != nil {
			return err
		}

		for _, msg := range pending {
			n := msg.Notification
			if pubErr := h.publisher.Publish(ctx, n); pubErr != nil {
				h.logger.WarnContext(ctx, "failed to publish thread notification",
					"order_id", n.OrderID,
					"notification_id", n.ID,
					"attempt", msg.Attempts+1,
					"error", pubErr,
				)
				if err = repo.MarkFailed(ctx, n.ID, pubErr.Error()); err != nil {
					return err
				}
				if msg.Attempts+1 >= command.MaxAttempts() {
					h.logger.ErrorContext(ctx, "thread notification gave up",
						"order_id", n.OrderID,
						"notification_id", n.ID,
					)
					metrics.OutboxRelayedTotal.WithLabelValues("abandoned").Inc()
				}
				result.Failed++
				continue
			}

			if err = repo.MarkPublished(ctx, n.ID, h.clock.Now()); err != nil {
				return err
			}
			result.Published++
		}
		return nil
	})
	if err != nil {
		return RelayOutboxResult{}, err
	}

	metrics.OutboxRelayedTotal.WithLabelValues("published").Add(float64(result.Published))
	metrics.OutboxRelayedTotal.WithLabelValues("failed").Add(float64(result.Failed))
	return result, nil
}
