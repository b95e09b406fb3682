package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewConsumer declares a durable queue on the exchange and binds it to the
// given routing keys.
func NewConsumer(url, exchange, queue string, keys ...string) (*Consumer, error) {
	conn, ch, err := open(url, exchange)
	if err != nil {
		return nil, err
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		_ = closeBoth(ch, conn)
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	for _, rk := range keys {
		if err := ch.QueueBind(q.Name, rk, exchange, false, nil); err != nil {
			_ = closeBoth(ch, conn)
			return nil, fmt.Errorf("bind %s to %s: %w", rk, exchange, err)
		}
	}
	return &Consumer{conn: conn, ch: ch, queue: q.Name}, nil
}

// Deliveries requires manual acks so handlers decide between ack, drop and
// requeue per message.
func (c *Consumer) Deliveries(ctx context.Context) (<-chan amqp.Delivery, error) {
	return c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
}

func (c *Consumer) Close() error { return closeBoth(c.ch, c.conn) }
