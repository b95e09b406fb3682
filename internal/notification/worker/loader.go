package worker

import (
	"context"

	"gorm.io/gorm"

	bookdomain "github.com/Pankaj72885/care.xyz/internal/booking/domain"
	catdomain "github.com/Pankaj72885/care.xyz/internal/catalog/domain"
	"github.com/Pankaj72885/care.xyz/internal/notification/notifier"
	userdomain "github.com/Pankaj72885/care.xyz/internal/user/domain"
)

// DBLoader assembles invoice data straight from the shared schema.
type DBLoader struct{ db *gorm.DB }

func NewDBLoader(db *gorm.DB) *DBLoader { return &DBLoader{db: db} }

func (l *DBLoader) LoadInvoice(ctx context.Context, bookingID string) (notifier.InvoiceData, error) {
	var b bookdomain.Booking
	if err := l.db.WithContext(ctx).First(&b, "id = ?", bookingID).Error; err != nil {
		return notifier.InvoiceData{}, err
	}
	var u userdomain.User
	if err := l.db.WithContext(ctx).First(&u, "id = ?", b.UserID).Error; err != nil {
		return notifier.InvoiceData{}, err
	}
	var s catdomain.Service
	if err := l.db.WithContext(ctx).First(&s, "id = ?", b.ServiceID).Error; err != nil {
		return notifier.InvoiceData{}, err
	}
	return notifier.InvoiceData{
		UserEmail:     u.Email,
		UserName:      u.Name,
		BookingID:     b.ID,
		ServiceTitle:  s.Title,
		TotalCost:     b.TotalCost,
		DurationValue: b.DurationValue,
		DurationUnit:  string(b.DurationUnit),
		BookingDate:   b.CreatedAt,
	}, nil
}
