package analytics

import (
	"math"
	"time"

	"github.com/photoproos/platform/models"
)

const maxRangeDays = 366

// DailyRevenue is one point of the revenue series
type DailyRevenue struct {
	Date         string `json:"date"`
	RevenueCents int64  `json:"revenue_cents"`
}

// Overview is the dashboard summary of an organization over a date range
type Overview struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	RevenueCents         int64   `json:"revenue_cents"`
	PreviousRevenueCents int64   `json:"previous_revenue_cents"`
	RevenueChangePct     float64 `json:"revenue_change_pct"`

	InvoicesByStatus map[models.InvoiceStatus]int `json:"invoices_by_status"`
	OutstandingCents int64                        `json:"outstanding_cents"`

	BookingsByStatus  map[models.BookingStatus]int `json:"bookings_by_status"`
	TotalBookings     int                          `json:"total_bookings"`
	CompletionRatePct float64                      `json:"completion_rate_pct"`

	NewClients         int `json:"new_clients"`
	GalleriesDelivered int `json:"galleries_delivered"`

	DailyRevenue         []DailyRevenue   `json:"daily_revenue"`
	RevenueByServiceType map[string]int64 `json:"revenue_by_service_type"`

	GeneratedAt time.Time `json:"generated_at"`
}

// round1 rounds to one decimal place
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Pct returns part as a percentage of whole, 0 when whole is 0
func Pct(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return round1(float64(part) * 100 / float64(whole))
}

// Change returns the percentage change from previous to current.
// Growth from nothing counts as 100.
func Change(current, previous int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round1(float64(current-previous) * 100 / float64(previous))
}

// fillDays returns one point per UTC day in [start, end), zero where the series has no value
func fillDays(start, end time.Time, series map[string]int64) []DailyRevenue {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	var out []DailyRevenue
	for day.Before(end) {
		key := day.Format("2006-01-02")
		out = append(out, DailyRevenue{Date: key, RevenueCents: series[key]})
		day = day.AddDate(0, 0, 1)
	}
	return out
}
