package events

import (
	"encoding/json"
	"fmt"
)

const (
	RKBookingCreated   = "booking.created"
	RKBookingConfirmed = "booking.confirmed"
	RKBookingCancelled = "booking.cancelled"

	RKPaymentPaid   = "payment.paid"
	RKPaymentFailed = "payment.failed"
)

type BookingCreated struct {
	BookingID    string `json:"booking_id"`
	UserID       string `json:"user_id"`
	ServiceID    string `json:"service_id"`
	ServiceTitle string `json:"service_title"`
	TotalCost    int64  `json:"total_cost"` // BDT
	Duration     int    `json:"duration"`
	Unit         string `json:"unit"` // HOUR | DAY
}

type BookingSimple struct {
	BookingID string `json:"booking_id"`
	UserID    string `json:"user_id"`
}

type PaymentPaid struct {
	BookingID  string `json:"booking_id"`
	ChargeID   string `json:"charge_id"`
	Amount     int64  `json:"amount"` // minor units (poisha)
	Currency   string `json:"currency"`
	ReceiptURL string `json:"receipt_url,omitempty"`
}

type PaymentFailed struct {
	BookingID      string `json:"booking_id"`
	ChargeID       string `json:"charge_id"`
	FailureCode    string `json:"failure_code,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`
}

func MustUnmarshal[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload failed: %w", err)
	}
	return t, nil
}
