// Package mq wraps the amqp091 client for the two topic exchanges the app
// uses: booking.exchange for lifecycle events and payment.exchange for
// gateway outcomes.
package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// open dials the broker and declares the topic exchange on a fresh channel.
// Both sides declare so startup order between api and workers never matters.
func open(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return conn, ch, nil
}

func closeBoth(ch *amqp.Channel, conn *amqp.Connection) error {
	if ch != nil {
		_ = ch.Close()
	}
	if conn != nil {
		return conn.Close()
	}
	return nil
}
