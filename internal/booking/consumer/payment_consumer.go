package consumer

import (
	"context"
	"errors"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Pankaj72885/care.xyz/internal/apperr"
	"github.com/Pankaj72885/care.xyz/internal/booking/repository"
	"github.com/Pankaj72885/care.xyz/internal/notification/events"
	"github.com/Pankaj72885/care.xyz/internal/report/cache"
	"github.com/Pankaj72885/care.xyz/pkg/mq"
)

type bookingPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// PaymentConsumer applies payment.paid events to bookings. Confirmation is
// idempotent: the charge id doubles as the event id, so gateway webhook
// retries and queue redeliveries collapse into one CONFIRMED booking and
// one Payment row.
type PaymentConsumer struct {
	repo  *repository.BookingRepo
	cons  *mq.Consumer
	pub   bookingPublisher
	cache *cache.Store
}

func NewPaymentConsumer(repo *repository.BookingRepo, cons *mq.Consumer, pub bookingPublisher, c *cache.Store) *PaymentConsumer {
	return &PaymentConsumer{repo: repo, cons: cons, pub: pub, cache: c}
}

func (pc *PaymentConsumer) Run(ctx context.Context) error {
	msgs, err := pc.cons.Deliveries(ctx)
	if err != nil {
		return err
	}
	go func() {
		for d := range msgs {
			if err := pc.handleDelivery(ctx, d); err != nil {
				log.Printf("[booking-consumer] confirm error key=%s: %v", d.RoutingKey, err)
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}()
	return nil
}

// handleDelivery returns an error only for retryable failures, which Run
// requeues. Malformed payloads and events pointing at bookings that do not
// exist are logged and dropped so they cannot loop forever.
func (pc *PaymentConsumer) handleDelivery(ctx context.Context, d amqp.Delivery) error {
	if d.RoutingKey != events.RKPaymentPaid {
		return nil
	}

	evt, err := events.MustUnmarshal[events.PaymentPaid](d.Body)
	if err != nil {
		log.Printf("[booking-consumer] unmarshal error: %v", err)
		return nil
	}
	if evt.BookingID == "" || evt.ChargeID == "" {
		log.Printf("[booking-consumer] invalid event payload")
		return nil
	}

	b, err := pc.repo.ConfirmWithPayment(ctx, evt.BookingID, evt.ChargeID, repository.PaymentDetails{
		ChargeID:   evt.ChargeID,
		Amount:     evt.Amount,
		Currency:   evt.Currency,
		Status:     "successful",
		ReceiptURL: evt.ReceiptURL,
	})
	if errors.Is(err, apperr.ErrNotFound) {
		log.Printf("[booking-consumer] booking %s not found, dropping event %s", evt.BookingID, evt.ChargeID)
		return nil
	}
	if err != nil {
		return err
	}

	if pc.pub != nil {
		_ = pc.pub.PublishJSON(ctx, events.RKBookingConfirmed, events.BookingSimple{BookingID: b.ID, UserID: b.UserID})
	}
	pc.cache.Invalidate(ctx, b.UserID)
	return nil
}
