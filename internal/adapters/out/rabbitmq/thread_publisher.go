package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"procurement/internal/core/domain/model/thread"

	"github.com/rabbitmq/amqp091-go"
)

type publisher interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp091.Publishing,
	) error
}

// ThreadPublisher implements ports.ThreadPublisher.
type ThreadPublisher struct {
	channel  publisher
	exchange string
	logger   *slog.Logger
}

func NewThreadPublisher(channel publisher, exchange string, logger *slog.Logger) *ThreadPublisher {
	return &ThreadPublisher{
		channel:  channel,
		exchange: exchange,
		logger:   logger.With("component", "ThreadPublisher"),
	}
}

// Publish sends n as a persistent JSON message. The notification id doubles
// as the message id so consumers can drop redeliveries of the outbox relay.
func (p *ThreadPublisher) Publish(ctx context.Context, n thread.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification %s: %w", n.ID, err)
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, string(n.Kind), false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    n.ID,
		Timestamp:    n.OccurredAt,
		Type:         string(n.Kind),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification %s: %w", n.ID, err)
	}

	p.logger.DebugContext(ctx, "notification published", "order_id", n.OrderID, "kind", n.Kind)
	return nil
}
