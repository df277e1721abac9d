// Package rabbitmq delivers order thread notifications to the messaging
// store over AMQP. Notifications go to one durable topic exchange with the
// notification kind as routing key.
package rabbitmq

import (
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// Connection owns an AMQP connection and the channel publishers share.
type Connection struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// Dial connects to url, opens a channel and declares exchange.
func Dial(url, exchange string) (*Connection, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	if err = ch.ExchangeDeclare(
		exchange,
		amqp091.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &Connection{conn: conn, channel: ch}, nil
}

func (c *Connection) Channel() *amqp091.Channel {
	return c.channel
}

func (c *Connection) Close() error {
	if err := c.channel.Close(); err != nil {
		return fmt.Errorf("error closing channel: %w", err)
	}
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("error closing connection: %w", err)
	}
	return nil
}
