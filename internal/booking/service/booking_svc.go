package service

import (
	"context"
	"fmt"

	"github.com/Pankaj72885/care.xyz/internal/apperr"
	"github.com/Pankaj72885/care.xyz/internal/booking/domain"
	"github.com/Pankaj72885/care.xyz/internal/booking/repository"
	catrepo "github.com/Pankaj72885/care.xyz/internal/catalog/repository"
	"github.com/Pankaj72885/care.xyz/internal/notification/events"
	"github.com/Pankaj72885/care.xyz/internal/report/cache"
)

// publisher lets tests run without a broker; a nil publisher drops events.
type publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type BookingSvc struct {
	repo     *repository.BookingRepo
	services *catrepo.ServiceRepo
	pub      publisher
	cache    *cache.Store
}

func NewBookingSvc(r *repository.BookingRepo, services *catrepo.ServiceRepo, pub publisher, c *cache.Store) *BookingSvc {
	return &BookingSvc{repo: r, services: services, pub: pub, cache: c}
}

type CreateInput struct {
	ServiceID     string
	DurationUnit  domain.DurationUnit
	DurationValue int
	Division      string
	District      string
	City          string
	Area          string
	Address       string
}

func (in CreateInput) validate() error {
	if in.ServiceID == "" {
		return fmt.Errorf("%w: service id is required", apperr.ErrValidation)
	}
	if in.DurationUnit != domain.UnitHour && in.DurationUnit != domain.UnitDay {
		return fmt.Errorf("%w: duration unit must be HOUR or DAY", apperr.ErrValidation)
	}
	if in.DurationValue < 1 || in.DurationValue > 720 {
		return fmt.Errorf("%w: duration must be between 1 and 720", apperr.ErrValidation)
	}
	if in.Division == "" || in.District == "" || in.City == "" || in.Area == "" {
		return fmt.Errorf("%w: location fields are required", apperr.ErrValidation)
	}
	if len(in.Address) < 6 {
		return fmt.Errorf("%w: address is required", apperr.ErrValidation)
	}
	return nil
}

// Create books a service for the caller. The total cost is always
// durationValue * baseRate from the catalog row; nothing client-sent is
// trusted.
func (s *BookingSvc) Create(ctx context.Context, userID string, in CreateInput) (*domain.Booking, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	svc, err := s.services.ByID(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, fmt.Errorf("%w: service is not available for booking", apperr.ErrConflict)
	}

	b := &domain.Booking{
		UserID:        userID,
		ServiceID:     svc.ID,
		DurationUnit:  in.DurationUnit,
		DurationValue: in.DurationValue,
		Division:      in.Division,
		District:      in.District,
		City:          in.City,
		Area:          in.Area,
		Address:       in.Address,
		TotalCost:     int64(in.DurationValue) * svc.BaseRate,
		Status:        domain.StatusPending,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.publish(ctx, events.RKBookingCreated, events.BookingCreated{
		BookingID:    b.ID,
		UserID:       b.UserID,
		ServiceID:    b.ServiceID,
		ServiceTitle: svc.Title,
		TotalCost:    b.TotalCost,
		Duration:     b.DurationValue,
		Unit:         string(b.DurationUnit),
	})
	s.cache.Invalidate(ctx, userID)
	return b, nil
}

// Cancel is owner-only and rejected once the booking is COMPLETED or
// already CANCELLED.
func (s *BookingSvc) Cancel(ctx context.Context, callerID, bookingID string) (*domain.Booking, error) {
	b, err := s.repo.ByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != callerID {
		return nil, fmt.Errorf("%w: you can only cancel your own bookings", apperr.ErrUnauthorized)
	}
	if b.Status == domain.StatusCompleted || b.Status == domain.StatusCancelled {
		return nil, fmt.Errorf("%w: booking is already %s", apperr.ErrConflict, b.Status)
	}
	b, err = s.repo.UpdateStatusGuarded(ctx, bookingID, domain.StatusCancelled)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.RKBookingCancelled, events.BookingSimple{BookingID: b.ID, UserID: b.UserID})
	s.cache.Invalidate(ctx, b.UserID)
	return b, nil
}

// Complete is owner-only and valid only from CONFIRMED.
func (s *BookingSvc) Complete(ctx context.Context, callerID, bookingID string) (*domain.Booking, error) {
	b, err := s.repo.ByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != callerID {
		return nil, fmt.Errorf("%w: you can only complete your own bookings", apperr.ErrUnauthorized)
	}
	if b.Status != domain.StatusConfirmed {
		return nil, fmt.Errorf("%w: only confirmed bookings can be marked as completed", apperr.ErrConflict)
	}
	b, err = s.repo.UpdateStatusGuarded(ctx, bookingID, domain.StatusCompleted)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, b.UserID)
	return b, nil
}

// AdminSetStatus applies the same lifecycle rules as the user paths.
func (s *BookingSvc) AdminSetStatus(ctx context.Context, bookingID string, to domain.Status) (*domain.Booking, error) {
	if !domain.ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, to)
	}
	b, err := s.repo.UpdateStatusGuarded(ctx, bookingID, to)
	if err != nil {
		return nil, err
	}
	s.afterStatusChange(ctx, b)
	return b, nil
}

// AdminForceStatus sets any status without transition checks. Named
// separately so the override power is an explicit, auditable choice.
func (s *BookingSvc) AdminForceStatus(ctx context.Context, bookingID string, to domain.Status) (*domain.Booking, error) {
	if !domain.ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, to)
	}
	b, err := s.repo.ForceStatus(ctx, bookingID, to)
	if err != nil {
		return nil, err
	}
	s.afterStatusChange(ctx, b)
	return b, nil
}

func (s *BookingSvc) afterStatusChange(ctx context.Context, b *domain.Booking) {
	switch b.Status {
	case domain.StatusConfirmed:
		s.publish(ctx, events.RKBookingConfirmed, events.BookingSimple{BookingID: b.ID, UserID: b.UserID})
	case domain.StatusCancelled:
		s.publish(ctx, events.RKBookingCancelled, events.BookingSimple{BookingID: b.ID, UserID: b.UserID})
	}
	s.cache.Invalidate(ctx, b.UserID)
}

func (s *BookingSvc) Get(ctx context.Context, callerID string, isAdmin bool, bookingID string) (*domain.Booking, error) {
	b, err := s.repo.ByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.UserID != callerID {
		return nil, fmt.Errorf("%w: not your booking", apperr.ErrUnauthorized)
	}
	return b, nil
}

func (s *BookingSvc) ListForUser(ctx context.Context, userID string, page, size int32) ([]domain.Booking, int64, error) {
	return s.repo.List(ctx, page, size, userID, "")
}

func (s *BookingSvc) ListAll(ctx context.Context, page, size int32, status domain.Status) ([]domain.Booking, int64, error) {
	if status != "" && !domain.ValidStatus(status) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, status)
	}
	return s.repo.List(ctx, page, size, "", status)
}

func (s *BookingSvc) publish(ctx context.Context, key string, v any) {
	if s.pub == nil {
		return
	}
	_ = s.pub.PublishJSON(ctx, key, v)
}
