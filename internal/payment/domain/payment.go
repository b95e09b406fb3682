package domain

import "time"

// Payment is the one-to-one record of a successful gateway charge for a
// booking. Amount is in minor units (poisha). ChargeID carries a unique
// index: a replayed webhook for the same charge cannot insert twice.
type Payment struct {
	ID         string `gorm:"primaryKey"`
	BookingID  string `gorm:"uniqueIndex"`
	Amount     int64
	Currency   string
	ChargeID   string `gorm:"uniqueIndex"`
	Status     string
	ReceiptURL string
	CreatedAt  time.Time
}
