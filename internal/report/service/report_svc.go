package service

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	bookdomain "github.com/Pankaj72885/care.xyz/internal/booking/domain"
	catdomain "github.com/Pankaj72885/care.xyz/internal/catalog/domain"
	paydomain "github.com/Pankaj72885/care.xyz/internal/payment/domain"
	"github.com/Pankaj72885/care.xyz/internal/report/cache"
	userdomain "github.com/Pankaj72885/care.xyz/internal/user/domain"
)

// Revenue counts only settled gateway charges.
const paidStatus = "successful"

type ReportSvc struct {
	db    *gorm.DB
	cache *cache.Store
}

func NewReportSvc(db *gorm.DB, c *cache.Store) *ReportSvc {
	return &ReportSvc{db: db, cache: c}
}

type Range struct {
	From time.Time
	To   time.Time
}

func (r Range) zero() bool { return r.From.IsZero() && r.To.IsZero() }

type SalesRow struct {
	BookingID     string    `json:"booking_id"`
	ServiceTitle  string    `json:"service"`
	UserName      string    `json:"user"`
	UserEmail     string    `json:"user_email"`
	Status        string    `json:"status"`
	TotalCost     int64     `json:"total_cost"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

type SalesReport struct {
	TotalBookings int64            `json:"total_bookings"`
	TotalRevenue  int64            `json:"total_revenue"` // minor units
	ByStatus      map[string]int64 `json:"bookings_by_status"`
	ByService     map[string]int64 `json:"bookings_by_service"`
	Rows          []SalesRow       `json:"bookings"`
}

// Sales aggregates bookings with their payments. The unranged report is
// cached; a date-filtered one always hits the database.
func (s *ReportSvc) Sales(ctx context.Context, rng Range) (*SalesReport, error) {
	if rng.zero() {
		var cached SalesReport
		if err := s.cache.GetSales(ctx, &cached); err == nil {
			return &cached, nil
		}
	}

	qb := s.db.WithContext(ctx).Model(&bookdomain.Booking{}).Order("bookings.created_at DESC")
	if !rng.zero() {
		qb = qb.Where("bookings.created_at BETWEEN ? AND ?", rng.From, rng.To)
	}
	var bookings []bookdomain.Booking
	if err := qb.Find(&bookings).Error; err != nil {
		return nil, err
	}

	rep := &SalesReport{
		TotalBookings: int64(len(bookings)),
		ByStatus: map[string]int64{
			string(bookdomain.StatusPending):   0,
			string(bookdomain.StatusConfirmed): 0,
			string(bookdomain.StatusCompleted): 0,
			string(bookdomain.StatusCancelled): 0,
		},
		ByService: map[string]int64{},
		Rows:      make([]SalesRow, 0, len(bookings)),
	}

	services, err := s.serviceTitles(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.userNames(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentsByBooking(ctx)
	if err != nil {
		return nil, err
	}

	for _, b := range bookings {
		rep.ByStatus[string(b.Status)]++
		title := services[b.ServiceID]
		rep.ByService[title]++

		payStatus := "unpaid"
		if p, ok := payments[b.ID]; ok {
			payStatus = p.Status
			if p.Status == paidStatus {
				rep.TotalRevenue += p.Amount
			}
		}
		u := users[b.UserID]
		rep.Rows = append(rep.Rows, SalesRow{
			BookingID:     b.ID,
			ServiceTitle:  title,
			UserName:      u.name,
			UserEmail:     u.email,
			Status:        string(b.Status),
			TotalCost:     b.TotalCost,
			PaymentStatus: payStatus,
			CreatedAt:     b.CreatedAt,
		})
	}

	if rng.zero() {
		s.cache.SetSales(ctx, rep)
	}
	return rep, nil
}

type ServiceReportRow struct {
	ServiceID         string `json:"service_id"`
	Title             string `json:"title"`
	Category          string `json:"category"`
	Active            bool   `json:"active"`
	BaseRate          int64  `json:"base_rate"`
	TotalBookings     int64  `json:"total_bookings"`
	CompletedBookings int64  `json:"completed_bookings"`
	TotalRevenue      int64  `json:"total_revenue"` // minor units
}

// Services reports per-service totals, ordered by revenue so the top
// earners come first.
func (s *ReportSvc) Services(ctx context.Context, rng Range) ([]ServiceReportRow, error) {
	if rng.zero() {
		var cached []ServiceReportRow
		if err := s.cache.GetServices(ctx, &cached); err == nil {
			return cached, nil
		}
	}

	var services []catdomain.Service
	if err := s.db.WithContext(ctx).Find(&services).Error; err != nil {
		return nil, err
	}
	qb := s.db.WithContext(ctx).Model(&bookdomain.Booking{})
	if !rng.zero() {
		qb = qb.Where("created_at BETWEEN ? AND ?", rng.From, rng.To)
	}
	var bookings []bookdomain.Booking
	if err := qb.Find(&bookings).Error; err != nil {
		return nil, err
	}
	payments, err := s.paymentsByBooking(ctx)
	if err != nil {
		return nil, err
	}

	rows := make(map[string]*ServiceReportRow, len(services))
	out := make([]ServiceReportRow, 0, len(services))
	for _, svc := range services {
		rows[svc.ID] = &ServiceReportRow{
			ServiceID: svc.ID,
			Title:     svc.Title,
			Category:  svc.Category,
			Active:    svc.Active,
			BaseRate:  svc.BaseRate,
		}
	}
	for _, b := range bookings {
		row, ok := rows[b.ServiceID]
		if !ok {
			continue
		}
		row.TotalBookings++
		if b.Status == bookdomain.StatusCompleted {
			row.CompletedBookings++
		}
		if p, ok := payments[b.ID]; ok && p.Status == paidStatus {
			row.TotalRevenue += p.Amount
		}
	}
	for _, svc := range services {
		out = append(out, *rows[svc.ID])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalRevenue > out[j].TotalRevenue })

	if rng.zero() {
		s.cache.SetServices(ctx, out)
	}
	return out, nil
}

type DashboardStats struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
	TotalSpent    int64            `json:"total_spent"` // minor units
}

// Dashboard summarises one user's bookings for the dashboard page.
func (s *ReportSvc) Dashboard(ctx context.Context, userID string) (*DashboardStats, error) {
	var cached DashboardStats
	if err := s.cache.GetDashboard(ctx, userID, &cached); err == nil {
		return &cached, nil
	}

	var bookings []bookdomain.Booking
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&bookings).Error; err != nil {
		return nil, err
	}
	payments, err := s.paymentsByBooking(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalBookings: int64(len(bookings)),
		ByStatus:      map[string]int64{},
	}
	for _, b := range bookings {
		stats.ByStatus[string(b.Status)]++
		if p, ok := payments[b.ID]; ok && p.Status == paidStatus {
			stats.TotalSpent += p.Amount
		}
	}
	s.cache.SetDashboard(ctx, userID, stats)
	return stats, nil
}

// ---------- lookup helpers ----------

func (s *ReportSvc) serviceTitles(ctx context.Context) (map[string]string, error) {
	var services []catdomain.Service
	if err := s.db.WithContext(ctx).Find(&services).Error; err != nil {
		return nil, err
	}
	m := make(map[string]string, len(services))
	for _, svc := range services {
		m[svc.ID] = svc.Title
	}
	return m, nil
}

type nameEmail struct{ name, email string }

func (s *ReportSvc) userNames(ctx context.Context) (map[string]nameEmail, error) {
	var users []userdomain.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	m := make(map[string]nameEmail, len(users))
	for _, u := range users {
		m[u.ID] = nameEmail{name: u.Name, email: u.Email}
	}
	return m, nil
}

func (s *ReportSvc) paymentsByBooking(ctx context.Context) (map[string]paydomain.Payment, error) {
	var payments []paydomain.Payment
	if err := s.db.WithContext(ctx).Find(&payments).Error; err != nil {
		return nil, err
	}
	m := make(map[string]paydomain.Payment, len(payments))
	for _, p := range payments {
		m[p.BookingID] = p
	}
	return m, nil
}
