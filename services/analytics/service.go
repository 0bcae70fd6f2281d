// Package analytics aggregates revenue, invoice, booking and client activity for dashboards.
package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/reports"
	"go.uber.org/zap"
)

// AnalyticsService computes and caches organization overviews
type AnalyticsService struct {
	payments  repositories.PaymentRepository
	invoices  repositories.InvoiceRepository
	bookings  repositories.BookingRepository
	clients   repositories.ClientRepository
	galleries repositories.GalleryRepository
	cache     Cache
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService instance.
// A nil cache disables caching.
func NewAnalyticsService(repos *repositories.Repositories, cache Cache, ttl time.Duration, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		payments:  repos.Payments,
		invoices:  repos.Invoices,
		bookings:  repos.Bookings,
		clients:   repos.Clients,
		galleries: repos.Galleries,
		cache:     cache,
		ttl:       ttl,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ValidateRange checks that end is after start and the range spans at most a leap year
func ValidateRange(start, end time.Time) error {
	if !end.After(start) {
		return services.ErrInvalidDateRange
	}
	if end.Sub(start) > maxRangeDays*24*time.Hour {
		return services.Wrap(services.ErrInvalidDateRange, fmt.Errorf("range exceeds %d days", maxRangeDays))
	}
	return nil
}

func cacheKey(orgID uuid.UUID, start, end time.Time) string {
	return fmt.Sprintf("analytics:overview:%s:%d:%d", orgID, start.Unix(), end.Unix())
}

// Overview returns the organization's activity in [start, end)
func (s *AnalyticsService) Overview(ctx context.Context, orgID uuid.UUID, start, end time.Time) (*Overview, error) {
	start, end = start.UTC(), end.UTC()
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}

	key := cacheKey(orgID, start, end)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	overview, err := s.compute(ctx, orgID, start, end)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, key, overview)
	return overview, nil
}

func (s *AnalyticsService) fromCache(ctx context.Context, key string) (*Overview, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("analytics cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var overview Overview
	if err := json.Unmarshal([]byte(raw), &overview); err != nil {
		s.logger.Warn("analytics cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &overview, true
}

func (s *AnalyticsService) toCache(ctx context.Context, key string, overview *Overview) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(overview)
	if err != nil {
		s.logger.Warn("failed to encode analytics overview", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
		s.logger.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *AnalyticsService) compute(ctx context.Context, orgID uuid.UUID, start, end time.Time) (*Overview, error) {
	o := &Overview{Start: start, End: end, GeneratedAt: s.now()}
	var err error

	if o.RevenueCents, err = s.payments.SumSucceeded(ctx, orgID, start, end); err != nil {
		return nil, services.WrapInternal("failed to sum revenue", err)
	}
	prevStart := start.Add(-end.Sub(start))
	if o.PreviousRevenueCents, err = s.payments.SumSucceeded(ctx, orgID, prevStart, start); err != nil {
		return nil, services.WrapInternal("failed to sum previous revenue", err)
	}
	o.RevenueChangePct = Change(o.RevenueCents, o.PreviousRevenueCents)

	if o.InvoicesByStatus, err = s.invoices.CountByStatus(ctx, orgID, start, end); err != nil {
		return nil, services.WrapInternal("failed to count invoices", err)
	}
	if o.OutstandingCents, err = s.invoices.OutstandingCents(ctx, orgID); err != nil {
		return nil, services.WrapInternal("failed to sum outstanding invoices", err)
	}

	if o.BookingsByStatus, err = s.bookings.CountByStatus(ctx, orgID, start, end); err != nil {
		return nil, services.WrapInternal("failed to count bookings", err)
	}
	for _, n := range o.BookingsByStatus {
		o.TotalBookings += n
	}
	o.CompletionRatePct = Pct(int64(o.BookingsByStatus[models.BookingStatusCompleted]), int64(o.TotalBookings))

	if o.NewClients, err = s.clients.CountCreated(ctx, orgID, start, end); err != nil {
		return nil, services.WrapInternal("failed to count new clients", err)
	}
	if o.GalleriesDelivered, err = s.galleries.CountDelivered(ctx, orgID, start, end); err != nil {
		return nil, services.WrapInternal("failed to count delivered galleries", err)
	}

	daily, err := s.payments.DailyRevenue(ctx, orgID, start, end)
	if err != nil {
		return nil, services.WrapInternal("failed to load daily revenue", err)
	}
	o.DailyRevenue = fillDays(start, end, daily)

	if o.RevenueByServiceType, err = s.bookings.RevenueByServiceType(ctx, orgID, start, end); err != nil {
		return nil, services.WrapInternal("failed to load revenue by service type", err)
	}

	return o, nil
}

// ExportOverview renders the overview as an XLSX workbook
func (s *AnalyticsService) ExportOverview(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]byte, error) {
	o, err := s.Overview(ctx, orgID, start, end)
	if err != nil {
		return nil, err
	}

	summary := [][]interface{}{
		{"Revenue", reports.Cents(o.RevenueCents)},
		{"Previous Period Revenue", reports.Cents(o.PreviousRevenueCents)},
		{"Revenue Change %", o.RevenueChangePct},
		{"Outstanding", reports.Cents(o.OutstandingCents)},
		{"Bookings", o.TotalBookings},
		{"Completion Rate %", o.CompletionRatePct},
		{"New Clients", o.NewClients},
		{"Galleries Delivered", o.GalleriesDelivered},
	}

	daily := make([][]interface{}, 0, len(o.DailyRevenue))
	for _, d := range o.DailyRevenue {
		daily = append(daily, []interface{}{d.Date, reports.Cents(d.RevenueCents)})
	}

	serviceTypes := make([]string, 0, len(o.RevenueByServiceType))
	for st := range o.RevenueByServiceType {
		serviceTypes = append(serviceTypes, st)
	}
	sort.Strings(serviceTypes)
	byService := make([][]interface{}, 0, len(serviceTypes))
	for _, st := range serviceTypes {
		byService = append(byService, []interface{}{st, reports.Cents(o.RevenueByServiceType[st])})
	}

	data, err := reports.Render(
		reports.Sheet{Name: "Summary", Headers: []string{"Metric", "Value"}, Rows: summary, Widths: []float64{26, 16}},
		reports.Sheet{Name: "Daily Revenue", Headers: []string{"Date", "Revenue"}, Rows: daily, Widths: []float64{14, 14}},
		reports.Sheet{Name: "By Service", Headers: []string{"Service Type", "Revenue"}, Rows: byService, Widths: []float64{20, 14}},
	)
	if err != nil {
		return nil, services.WrapInternal("failed to render analytics export", err)
	}
	return data, nil
}
