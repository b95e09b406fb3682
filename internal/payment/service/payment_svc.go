package service

import (
	"context"
	"fmt"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"

	"github.com/Pankaj72885/care.xyz/internal/apperr"
	bookdomain "github.com/Pankaj72885/care.xyz/internal/booking/domain"
	bookrepo "github.com/Pankaj72885/care.xyz/internal/booking/repository"
	"github.com/Pankaj72885/care.xyz/internal/notification/events"
)

// Amounts are charged in poisha, the minor unit of BDT.
const defaultCurrency = "bdt"

type publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type PaymentSvc struct {
	omc      *omise.Client
	pub      publisher
	bookings *bookrepo.BookingRepo
	// returnURI is where Omise redirects the payer after an offsite
	// authorize step; empty disables redirect flows.
	returnURI string
}

func NewPaymentSvc(omc *omise.Client, pub publisher, bookings *bookrepo.BookingRepo) *PaymentSvc {
	return &PaymentSvc{omc: omc, pub: pub, bookings: bookings}
}

func (s *PaymentSvc) SetReturnURI(uri string) { s.returnURI = uri }

// Configured reports whether gateway keys were provided at startup.
func (s *PaymentSvc) Configured() bool { return s.omc != nil }

// chargeableBooking loads the booking and enforces ownership plus the
// only-PENDING-bookings-can-be-paid rule. The charge amount comes from
// the stored TotalCost, never the client.
func (s *PaymentSvc) chargeableBooking(ctx context.Context, callerID, bookingID string) (*bookdomain.Booking, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("%w: payment system not configured", apperr.ErrConflict)
	}
	b, err := s.bookings.ByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != callerID {
		return nil, fmt.Errorf("%w: not your booking", apperr.ErrUnauthorized)
	}
	if b.Status != bookdomain.StatusPending {
		return nil, fmt.Errorf("%w: booking is already %s", apperr.ErrConflict, b.Status)
	}
	return b, nil
}

// CreateCardCharge charges a tokenized card for a pending booking.
func (s *PaymentSvc) CreateCardCharge(ctx context.Context, callerID, bookingID, cardToken string) (*omise.Charge, error) {
	if cardToken == "" {
		return nil, fmt.Errorf("%w: card token is required", apperr.ErrValidation)
	}
	b, err := s.chargeableBooking(ctx, callerID, bookingID)
	if err != nil {
		return nil, err
	}

	ch := &omise.Charge{}
	req := &operations.CreateCharge{
		Amount:   b.TotalCost * 100, // BDT -> poisha
		Currency: defaultCurrency,
		Card:     cardToken,
		Metadata: map[string]any{"booking_id": b.ID, "user_id": b.UserID},
	}
	if err := s.omc.Do(ch, req); err != nil {
		s.publishFailed(ctx, b.ID, "", "create_charge_error", err.Error())
		return nil, err
	}
	s.publishOutcome(ctx, b.ID, ch)
	return ch, nil
}

// CreateSourceCharge charges an offsite source (mobile banking, promptpay
// style redirects). The final result lands through the webhook.
func (s *PaymentSvc) CreateSourceCharge(ctx context.Context, callerID, bookingID, sourceID string) (*omise.Charge, error) {
	if sourceID == "" {
		return nil, fmt.Errorf("%w: source id is required", apperr.ErrValidation)
	}
	b, err := s.chargeableBooking(ctx, callerID, bookingID)
	if err != nil {
		return nil, err
	}

	ch := &omise.Charge{}
	req := &operations.CreateCharge{
		Amount:    b.TotalCost * 100,
		Currency:  defaultCurrency,
		Source:    sourceID,
		ReturnURI: s.returnURI,
		Metadata:  map[string]any{"booking_id": b.ID, "user_id": b.UserID},
	}
	if err := s.omc.Do(ch, req); err != nil {
		s.publishFailed(ctx, b.ID, "", "create_charge_error", err.Error())
		return nil, err
	}
	s.publishOutcome(ctx, b.ID, ch)
	return ch, nil
}

func (s *PaymentSvc) GetCharge(ctx context.Context, id string) (*omise.Charge, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("%w: payment system not configured", apperr.ErrConflict)
	}
	ch := &omise.Charge{}
	if err := s.omc.Do(ch, &operations.RetrieveCharge{ChargeID: id}); err != nil {
		return nil, err
	}
	return ch, nil
}

// publishOutcome emits paid/failed for immediately-settled charges.
// Pending and awaiting_authorize charges stay silent until the webhook
// delivers the final status.
func (s *PaymentSvc) publishOutcome(ctx context.Context, bookingID string, ch *omise.Charge) {
	switch string(ch.Status) {
	case "successful":
		s.publishPaid(ctx, bookingID, ch)
	case "failed":
		var fc, fm string
		if ch.FailureCode != nil {
			fc = *ch.FailureCode
		}
		if ch.FailureMessage != nil {
			fm = *ch.FailureMessage
		}
		s.publishFailed(ctx, bookingID, ch.ID, fc, fm)
	}
}

func (s *PaymentSvc) publishPaid(ctx context.Context, bookingID string, ch *omise.Charge) {
	if s.pub == nil {
		return
	}
	_ = s.pub.PublishJSON(ctx, events.RKPaymentPaid, events.PaymentPaid{
		BookingID: bookingID,
		ChargeID:  ch.ID,
		Amount:    ch.Amount,
		Currency:  ch.Currency,
	})
}

func (s *PaymentSvc) publishFailed(ctx context.Context, bookingID, chargeID, code, message string) {
	if s.pub == nil {
		return
	}
	_ = s.pub.PublishJSON(ctx, events.RKPaymentFailed, events.PaymentFailed{
		BookingID:      bookingID,
		ChargeID:       chargeID,
		FailureCode:    code,
		FailureMessage: message,
	})
}
