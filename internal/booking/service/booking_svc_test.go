package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Pankaj72885/care.xyz/internal/apperr"
	"github.com/Pankaj72885/care.xyz/internal/booking/domain"
	"github.com/Pankaj72885/care.xyz/internal/booking/repository"
	catdomain "github.com/Pankaj72885/care.xyz/internal/catalog/domain"
	catrepo "github.com/Pankaj72885/care.xyz/internal/catalog/repository"
)

// capturingPub records published events so tests can assert on them.
type capturingPub struct {
	mu   sync.Mutex
	keys []string
}

func (p *capturingPub) PublishJSON(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func (p *capturingPub) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

func testEnv(t *testing.T) (*BookingSvc, *repository.BookingRepo, *catrepo.ServiceRepo, *capturingPub) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	bookings := repository.NewBookingRepo(gdb)
	services := catrepo.NewServiceRepo(gdb)
	require.NoError(t, services.Migrate())
	require.NoError(t, bookings.Migrate())

	pub := &capturingPub{}
	return NewBookingSvc(bookings, services, pub, nil), bookings, services, pub
}

func seedService(t *testing.T, services *catrepo.ServiceRepo, rate int64, active bool) *catdomain.Service {
	t.Helper()
	svc := &catdomain.Service{
		Title:    "Professional Nursing Care",
		Slug:     "professional-nursing",
		Category: "Nursing",
		BaseRate: rate,
		Active:   active,
	}
	require.NoError(t, services.Create(context.Background(), svc))
	return svc
}

func validInput(serviceID string) CreateInput {
	return CreateInput{
		ServiceID:     serviceID,
		DurationUnit:  domain.UnitHour,
		DurationValue: 8,
		Division:      "Dhaka",
		District:      "Dhaka",
		City:          "Dhaka",
		Area:          "Banani",
		Address:       "House 12, Road 5, Banani",
	}
}

func TestCreateRecomputesTotalCost(t *testing.T) {
	svc, _, services, pub := testEnv(t)
	cat := seedService(t, services, 800, true)

	b, err := svc.Create(context.Background(), "user-1", validInput(cat.ID))
	require.NoError(t, err)

	assert.Equal(t, int64(8*800), b.TotalCost)
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.Equal(t, "user-1", b.UserID)
	assert.Contains(t, pub.published(), "booking.created")
}

func TestCreateValidation(t *testing.T) {
	svc, _, services, _ := testEnv(t)
	cat := seedService(t, services, 500, true)

	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing service", func(in *CreateInput) { in.ServiceID = "" }},
		{"bad unit", func(in *CreateInput) { in.DurationUnit = "WEEK" }},
		{"zero duration", func(in *CreateInput) { in.DurationValue = 0 }},
		{"duration too long", func(in *CreateInput) { in.DurationValue = 721 }},
		{"missing division", func(in *CreateInput) { in.Division = "" }},
		{"short address", func(in *CreateInput) { in.Address = "x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput(cat.ID)
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), "user-1", in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestCreateInactiveService(t *testing.T) {
	svc, _, services, _ := testEnv(t)
	cat := seedService(t, services, 500, false)

	_, err := svc.Create(context.Background(), "user-1", validInput(cat.ID))
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCreateUnknownService(t *testing.T) {
	svc, _, _, _ := testEnv(t)
	_, err := svc.Create(context.Background(), "user-1", validInput("nope"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCancelOwnerOnly(t *testing.T) {
	svc, _, services, _ := testEnv(t)
	cat := seedService(t, services, 500, true)
	b, err := svc.Create(context.Background(), "owner", validInput(cat.ID))
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), "intruder", b.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	got, err := svc.Cancel(context.Background(), "owner", b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)

	// second cancel is a conflict, not a no-op
	_, err = svc.Cancel(context.Background(), "owner", b.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	svc, repo, services, _ := testEnv(t)
	cat := seedService(t, services, 500, true)
	b, err := svc.Create(context.Background(), "owner", validInput(cat.ID))
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), "owner", b.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict, "PENDING cannot complete")

	_, err = repo.UpdateStatusGuarded(context.Background(), b.ID, domain.StatusConfirmed)
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), "intruder", b.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	got, err := svc.Complete(context.Background(), "owner", b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
}

func TestAdminSetStatusGuarded(t *testing.T) {
	svc, _, services, pub := testEnv(t)
	cat := seedService(t, services, 500, true)
	b, err := svc.Create(context.Background(), "owner", validInput(cat.ID))
	require.NoError(t, err)

	_, err = svc.AdminSetStatus(context.Background(), b.ID, domain.StatusCompleted)
	assert.ErrorIs(t, err, apperr.ErrConflict, "PENDING -> COMPLETED is not a legal transition")

	got, err := svc.AdminSetStatus(context.Background(), b.ID, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	assert.Contains(t, pub.published(), "booking.confirmed")

	_, err = svc.AdminSetStatus(context.Background(), b.ID, "REFUNDED")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAdminForceStatusBypassesGuard(t *testing.T) {
	svc, _, services, _ := testEnv(t)
	cat := seedService(t, services, 500, true)
	b, err := svc.Create(context.Background(), "owner", validInput(cat.ID))
	require.NoError(t, err)

	got, err := svc.AdminForceStatus(context.Background(), b.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	// and back again, which the state machine would never allow
	got, err = svc.AdminForceStatus(context.Background(), b.ID, domain.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestGetOwnership(t *testing.T) {
	svc, _, services, _ := testEnv(t)
	cat := seedService(t, services, 500, true)
	b, err := svc.Create(context.Background(), "owner", validInput(cat.ID))
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "intruder", false, b.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	got, err := svc.Get(context.Background(), "intruder", true, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	got, err = svc.Get(context.Background(), "owner", false, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

func TestListForUserFiltersOwner(t *testing.T) {
	svc, _, services, _ := testEnv(t)
	cat := seedService(t, services, 500, true)
	for _, u := range []string{"a", "a", "b"} {
		_, err := svc.Create(context.Background(), u, validInput(cat.ID))
		require.NoError(t, err)
	}

	mine, total, err := svc.ListForUser(context.Background(), "a", 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, b := range mine {
		assert.Equal(t, "a", b.UserID)
	}

	all, total, err := svc.ListAll(context.Background(), 0, 20, "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)
}
