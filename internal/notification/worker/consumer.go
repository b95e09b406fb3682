package worker

import (
	"context"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Pankaj72885/care.xyz/internal/notification/events"
	"github.com/Pankaj72885/care.xyz/internal/notification/notifier"
)

type Config struct {
	RabbitURL   string
	Exchanges   []string
	Queue       string
	Bindings    []string
	Prefetch    int
	UseDLX      bool
	DLXName     string
	DLXQueue    string
	ServiceName string
}

// InvoiceLoader resolves the data the invoice email needs; the event
// payloads stay thin on purpose.
type InvoiceLoader interface {
	LoadInvoice(ctx context.Context, bookingID string) (notifier.InvoiceData, error)
}

type Consumer struct {
	cfg      Config
	notifier notifier.Notifier
	loader   InvoiceLoader

	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewConsumer(cfg Config, n notifier.Notifier, l InvoiceLoader) *Consumer {
	return &Consumer{cfg: cfg, notifier: n, loader: l}
}

func (c *Consumer) Connect() error {
	conn, err := amqp.Dial(c.cfg.RabbitURL)
	if err != nil {
		return fmt.Errorf("rabbit dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel failed: %w", err)
	}

	args := amqp.Table{}
	if c.cfg.UseDLX {
		args["x-dead-letter-exchange"] = c.cfg.DLXName
	}
	q, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, args)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare queue failed: %w", err)
	}

	for _, ex := range c.cfg.Exchanges {
		if err := ch.ExchangeDeclare(ex, "topic", true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("declare exchange %s failed: %w", ex, err)
		}
		for _, key := range c.cfg.Bindings {
			if err := ch.QueueBind(q.Name, key, ex, false, nil); err != nil {
				_ = ch.Close()
				_ = conn.Close()
				return fmt.Errorf("bind queue to exchange=%s key=%s failed: %w", ex, key, err)
			}
		}
	}

	if c.cfg.UseDLX {
		if err := ch.ExchangeDeclare(c.cfg.DLXName, "topic", true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("declare dlx failed: %w", err)
		}
		if _, err := ch.QueueDeclare(c.cfg.DLXQueue, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("declare dlq failed: %w", err)
		}
		if err := ch.QueueBind(c.cfg.DLXQueue, "#", c.cfg.DLXName, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("bind dlq failed: %w", err)
		}
	}

	if c.cfg.Prefetch <= 0 {
		c.cfg.Prefetch = 8
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("set qos failed: %w", err)
	}

	c.conn = conn
	c.ch = ch
	return nil
}

func (c *Consumer) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.cfg.Queue, c.cfg.ServiceName, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume failed: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := c.handleDelivery(ctx, d); err != nil {
				log.Printf("[notify] handle error key=%s err=%v -> Nack to DLQ", d.RoutingKey, err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// handleDelivery returns an error only for malformed payloads, which go to
// the DLQ. Email failures are logged and the delivery is acked: the invoice
// is best-effort and the gateway remains the source of payment truth.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) error {
	switch d.RoutingKey {
	case events.RKBookingCreated:
		ev, err := events.MustUnmarshal[events.BookingCreated](d.Body)
		if err != nil {
			return err
		}
		log.Printf("[notify] booking %s created: %s x%d %s, BDT %d",
			ev.BookingID, ev.ServiceTitle, ev.Duration, ev.Unit, ev.TotalCost)

	case events.RKBookingConfirmed:
		ev, err := events.MustUnmarshal[events.BookingSimple](d.Body)
		if err != nil {
			return err
		}
		log.Printf("[notify] booking %s confirmed", ev.BookingID)

	case events.RKBookingCancelled:
		ev, err := events.MustUnmarshal[events.BookingSimple](d.Body)
		if err != nil {
			return err
		}
		log.Printf("[notify] booking %s cancelled", ev.BookingID)

	case events.RKPaymentPaid:
		ev, err := events.MustUnmarshal[events.PaymentPaid](d.Body)
		if err != nil {
			return err
		}
		c.sendInvoice(ctx, ev)

	case events.RKPaymentFailed:
		ev, err := events.MustUnmarshal[events.PaymentFailed](d.Body)
		if err != nil {
			return err
		}
		log.Printf("[notify] payment failed for booking %s (charge=%s): %s %s",
			ev.BookingID, ev.ChargeID, ev.FailureCode, ev.FailureMessage)

	default:
		log.Printf("[notify] skip unknown key=%s", d.RoutingKey)
	}
	return nil
}

func (c *Consumer) sendInvoice(ctx context.Context, ev events.PaymentPaid) {
	data, err := c.loader.LoadInvoice(ctx, ev.BookingID)
	if err != nil {
		log.Printf("[notify] load invoice for booking %s: %v", ev.BookingID, err)
		return
	}
	data.ReceiptURL = ev.ReceiptURL
	if err := c.notifier.Send(ctx, data.UserEmail, notifier.InvoiceSubject(data), notifier.InvoiceHTML(data)); err != nil {
		// logged and swallowed: no retry for email
		log.Printf("[notify] send invoice for booking %s: %v", ev.BookingID, err)
	}
}
