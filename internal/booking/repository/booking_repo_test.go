package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Pankaj72885/care.xyz/internal/apperr"
	"github.com/Pankaj72885/care.xyz/internal/booking/domain"
	paydomain "github.com/Pankaj72885/care.xyz/internal/payment/domain"
)

func testRepo(t *testing.T) (*BookingRepo, *gorm.DB) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	repo := NewBookingRepo(gdb)
	require.NoError(t, repo.Migrate())
	return repo, gdb
}

func pendingBooking(t *testing.T, repo *BookingRepo) *domain.Booking {
	t.Helper()
	b := &domain.Booking{
		UserID:        "user-1",
		ServiceID:     "svc-1",
		DurationUnit:  domain.UnitHour,
		DurationValue: 4,
		TotalCost:     2000,
		Status:        domain.StatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

func TestConfirmWithPaymentIdempotent(t *testing.T) {
	repo, gdb := testRepo(t)
	b := pendingBooking(t, repo)

	details := PaymentDetails{
		ChargeID: "chrg_test_1",
		Amount:   200000,
		Currency: "bdt",
		Status:   "successful",
	}

	got, err := repo.ConfirmWithPayment(context.Background(), b.ID, details.ChargeID, details)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)

	// replayed delivery: same event id, must change nothing
	got, err = repo.ConfirmWithPayment(context.Background(), b.ID, details.ChargeID, details)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)

	var payments int64
	require.NoError(t, gdb.Model(&paydomain.Payment{}).Count(&payments).Error)
	assert.EqualValues(t, 1, payments, "duplicate event must not insert a second payment")

	var consumed int64
	require.NoError(t, gdb.Model(&domain.EventConsumed{}).Count(&consumed).Error)
	assert.EqualValues(t, 1, consumed)
}

func TestConfirmWithPaymentAlreadyCancelled(t *testing.T) {
	repo, gdb := testRepo(t)
	b := pendingBooking(t, repo)
	_, err := repo.UpdateStatusGuarded(context.Background(), b.ID, domain.StatusCancelled)
	require.NoError(t, err)

	got, err := repo.ConfirmWithPayment(context.Background(), b.ID, "chrg_test_2", PaymentDetails{
		ChargeID: "chrg_test_2", Amount: 2000, Currency: "bdt", Status: "successful",
	})
	require.NoError(t, err)
	// a late payment never resurrects a cancelled booking
	assert.Equal(t, domain.StatusCancelled, got.Status)

	var payments int64
	require.NoError(t, gdb.Model(&paydomain.Payment{}).Count(&payments).Error)
	assert.EqualValues(t, 1, payments, "the payment is still recorded for reconciliation")
}

func TestConfirmWithPaymentUnknownBooking(t *testing.T) {
	repo, gdb := testRepo(t)

	details := PaymentDetails{ChargeID: "chrg_orphan", Amount: 500, Currency: "bdt", Status: "successful"}
	_, err := repo.ConfirmWithPayment(context.Background(), "no-such-booking", details.ChargeID, details)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// same, but with the event already in the ledger: the miss still maps
	// to the sentinel instead of leaking the driver error
	rec := domain.EventConsumed{ID: details.ChargeID, EventKey: "payment.paid", ProcessedAt: time.Now().UTC()}
	require.NoError(t, gdb.Create(&rec).Error)
	_, err = repo.ConfirmWithPayment(context.Background(), "no-such-booking", details.ChargeID, details)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateStatusGuardedRejectsIllegal(t *testing.T) {
	repo, _ := testRepo(t)
	b := pendingBooking(t, repo)

	_, err := repo.UpdateStatusGuarded(context.Background(), b.ID, domain.StatusCompleted)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = repo.UpdateStatusGuarded(context.Background(), "missing", domain.StatusConfirmed)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPaymentByBookingID(t *testing.T) {
	repo, _ := testRepo(t)
	b := pendingBooking(t, repo)

	_, err := repo.PaymentByBookingID(context.Background(), b.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = repo.ConfirmWithPayment(context.Background(), b.ID, "chrg_test_3", PaymentDetails{
		ChargeID: "chrg_test_3", Amount: 2000, Currency: "bdt", Status: "successful",
	})
	require.NoError(t, err)

	p, err := repo.PaymentByBookingID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "chrg_test_3", p.ChargeID)
	assert.EqualValues(t, 2000, p.Amount)
}
