package domain

import "time"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

type DurationUnit string

const (
	UnitHour DurationUnit = "HOUR"
	UnitDay  DurationUnit = "DAY"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition encodes the booking lifecycle:
//
//	PENDING -> CONFIRMED -> COMPLETED
//	CANCELLED reachable from PENDING or CONFIRMED
//
// Everything else is rejected. The admin force override bypasses this on
// purpose and is a separate operation.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

type Booking struct {
	ID            string `gorm:"primaryKey"`
	UserID        string `gorm:"index"`
	ServiceID     string `gorm:"index"`
	DurationUnit  DurationUnit
	DurationValue int
	Division      string
	District      string
	City          string
	Area          string
	Address       string
	TotalCost     int64  // DurationValue * Service.BaseRate, always recomputed server-side
	Status        Status `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EventConsumed records queue/webhook events already applied, so duplicate
// payment deliveries cannot confirm a booking twice or double-insert a
// payment row.
type EventConsumed struct {
	ID          string `gorm:"primaryKey"` // external event or charge id
	EventKey    string `gorm:"index"`
	ProcessedAt time.Time
}
