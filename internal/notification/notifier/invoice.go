package notifier

import (
	"fmt"
	"strings"
	"time"
)

// InvoiceData is everything the booking invoice email needs.
type InvoiceData struct {
	UserEmail     string
	UserName      string
	BookingID     string
	ServiceTitle  string
	TotalCost     int64 // BDT
	DurationValue int
	DurationUnit  string
	ReceiptURL    string
	BookingDate   time.Time
}

func InvoiceSubject(d InvoiceData) string {
	return fmt.Sprintf("Invoice for your booking: %s", d.ServiceTitle)
}

// InvoiceHTML renders the confirmation invoice.
func InvoiceHTML(d InvoiceData) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 8px;">`)
	fmt.Fprintf(&b, `<h2 style="color: #333;">Thank you for your booking, %s!</h2>`, d.UserName)
	fmt.Fprintf(&b, `<p>Your booking for <strong>%s</strong> has been confirmed.</p>`, d.ServiceTitle)
	fmt.Fprintf(&b, `<div style="background-color: #f9f9f9; padding: 15px; border-radius: 4px; margin: 20px 0;">`)
	fmt.Fprintf(&b, `<h3 style="margin-top: 0;">Booking Details</h3>`)
	fmt.Fprintf(&b, `<p><strong>Booking ID:</strong> %s</p>`, d.BookingID)
	fmt.Fprintf(&b, `<p><strong>Date:</strong> %s</p>`, d.BookingDate.Format("2006-01-02"))
	fmt.Fprintf(&b, `<p><strong>Duration:</strong> %d %s(s)</p>`, d.DurationValue, strings.ToLower(d.DurationUnit))
	fmt.Fprintf(&b, `<p><strong>Total Cost:</strong> BDT %d</p>`, d.TotalCost)
	fmt.Fprintf(&b, `</div>`)
	if d.ReceiptURL != "" {
		fmt.Fprintf(&b, `<p>You can view your payment receipt <a href="%s" target="_blank">here</a>.</p>`, d.ReceiptURL)
	}
	fmt.Fprintf(&b, `<p>If you have any questions, please contact our support team.</p>`)
	fmt.Fprintf(&b, `<p style="font-size: 12px; color: #888; margin-top: 30px;">Care.xyz - Caregiving Services in Bangladesh</p>`)
	fmt.Fprintf(&b, `</div>`)
	return b.String()
}
