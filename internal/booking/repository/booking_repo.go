package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Pankaj72885/care.xyz/internal/apperr"
	"github.com/Pankaj72885/care.xyz/internal/booking/domain"
	paydomain "github.com/Pankaj72885/care.xyz/internal/payment/domain"
)

type BookingRepo struct{ db *gorm.DB }

func NewBookingRepo(db *gorm.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

func (r *BookingRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Booking{}, &domain.EventConsumed{}, &paydomain.Payment{})
}

func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingRepo) ByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// UpdateStatusGuarded moves a booking along the lifecycle inside a
// transaction, re-checking the transition against the row it locks.
func (r *BookingRepo) UpdateStatusGuarded(ctx context.Context, id string, to domain.Status) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&b, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}
		if !domain.CanTransition(b.Status, to) {
			return apperr.ErrConflict
		}
		b.Status = to
		return tx.Save(&b).Error
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ForceStatus sets any status without a transition guard. Admin override
// only; every call site is role-checked.
func (r *BookingRepo) ForceStatus(ctx context.Context, id string, to domain.Status) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&b, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}
		b.Status = to
		return tx.Save(&b).Error
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// PaymentDetails is what the payment.paid event carries into confirmation.
type PaymentDetails struct {
	ChargeID   string
	Amount     int64 // minor units
	Currency   string
	Status     string
	ReceiptURL string
}

// ConfirmWithPayment atomically flips the booking to CONFIRMED and records
// the Payment row, keyed by the consumed event id. Replayed events and
// replayed charges are no-ops: the EventConsumed ledger and the unique
// charge_id index both stop them.
func (r *BookingRepo) ConfirmWithPayment(ctx context.Context, bookingID, eventID string, p PaymentDetails) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seen int64
		if err := tx.Model(&domain.EventConsumed{}).Where("id = ?", eventID).Count(&seen).Error; err != nil {
			return err
		}
		if seen > 0 {
			if err := tx.First(&b, "id = ?", bookingID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.ErrNotFound
				}
				return err
			}
			return nil
		}

		if err := tx.First(&b, "id = ?", bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}
		if b.Status == domain.StatusPending {
			b.Status = domain.StatusConfirmed
			if err := tx.Save(&b).Error; err != nil {
				return err
			}
		}

		// existence check rather than insert-and-catch: a failed insert
		// would abort the whole Postgres transaction. The unique index on
		// charge_id remains the backstop for true races.
		var dup int64
		if err := tx.Model(&paydomain.Payment{}).Where("charge_id = ?", p.ChargeID).Count(&dup).Error; err != nil {
			return err
		}
		if dup == 0 {
			pay := paydomain.Payment{
				ID:         uuid.NewString(),
				BookingID:  bookingID,
				Amount:     p.Amount,
				Currency:   p.Currency,
				ChargeID:   p.ChargeID,
				Status:     p.Status,
				ReceiptURL: p.ReceiptURL,
			}
			if err := tx.Create(&pay).Error; err != nil {
				return err
			}
		}

		rec := domain.EventConsumed{ID: eventID, EventKey: "payment.paid", ProcessedAt: time.Now().UTC()}
		return tx.Create(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepo) PaymentByBookingID(ctx context.Context, bookingID string) (*paydomain.Payment, error) {
	var p paydomain.Payment
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *BookingRepo) ListPayments(ctx context.Context, page, size int32) ([]paydomain.Payment, int64, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	qb := r.db.WithContext(ctx).Model(&paydomain.Payment{})
	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []paydomain.Payment
	if err := qb.Order("created_at DESC").Limit(int(size)).Offset(int(page * size)).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *BookingRepo) List(ctx context.Context, page, size int32, userID string, status domain.Status) ([]domain.Booking, int64, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	qb := r.db.WithContext(ctx).Model(&domain.Booking{})
	if userID != "" {
		qb = qb.Where("user_id = ?", userID)
	}
	if status != "" {
		qb = qb.Where("status = ?", status)
	}
	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Booking
	if err := qb.Order("created_at DESC").Limit(int(size)).Offset(int(page * size)).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
