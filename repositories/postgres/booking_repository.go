package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

const bookingColumns = `id, org_id, client_id, photographer_id, service_type, title, location,
	starts_at, ends_at, status, price_cents, notes, created_at, updated_at`

// BookingRepository implements the repositories.BookingRepository interface
type BookingRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *DB, logger *zap.Logger) repositories.BookingRepository {
	return &BookingRepository{db: db, logger: logger}
}

func scanBooking(s rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	err := s.Scan(
		&b.ID,
		&b.OrgID,
		&b.ClientID,
		&b.PhotographerID,
		&b.ServiceType,
		&b.Title,
		&b.Location,
		&b.StartsAt,
		&b.EndsAt,
		&b.Status,
		&b.PriceCents,
		&b.Notes,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := []*models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking rows: %w", err)
	}
	return bookings, nil
}

// Create creates a new booking
func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		b.ID, b.OrgID, b.ClientID, b.PhotographerID, b.ServiceType, b.Title, b.Location,
		b.StartsAt, b.EndsAt, b.Status, b.PriceCents, b.Notes, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return wrapError("create booking", err)
	}

	r.logger.Debug("booking created", zap.String("id", b.ID.String()), zap.Time("starts_at", b.StartsAt))
	return nil
}

// GetByID retrieves a booking scoped to its organization
func (r *BookingRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE org_id = $1 AND id = $2`

	b, err := scanBooking(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, orgID, id))
	if err != nil {
		return nil, wrapError("get booking", err)
	}
	return b, nil
}

// List lists bookings matching the filter ordered by start time
func (r *BookingRepository) List(ctx context.Context, orgID uuid.UUID, filter models.BookingFilter) ([]*models.Booking, error) {
	var (
		where = []string{"org_id = $1"}
		args  = []interface{}{orgID}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.PhotographerID != nil {
		add("photographer_id = $%d", *filter.PhotographerID)
	}
	if filter.ClientID != nil {
		add("client_id = $%d", *filter.ClientID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.From != nil {
		add("starts_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("starts_at < $%d", *filter.To)
	}
	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE %s ORDER BY starts_at ASC LIMIT $%d OFFSET $%d`,
		bookingColumns, strings.Join(where, " AND "), len(args)-1, len(args))
	return r.queryBookings(ctx, query, args...)
}

// Update updates a booking
func (r *BookingRepository) Update(ctx context.Context, b *models.Booking) error {
	query := `
		UPDATE bookings
		SET client_id = $3,
		    photographer_id = $4,
		    service_type = $5,
		    title = $6,
		    location = $7,
		    starts_at = $8,
		    ends_at = $9,
		    status = $10,
		    price_cents = $11,
		    notes = $12,
		    updated_at = $13
		WHERE org_id = $1 AND id = $2
	`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		b.OrgID, b.ID, b.ClientID, b.PhotographerID, b.ServiceType, b.Title, b.Location,
		b.StartsAt, b.EndsAt, b.Status, b.PriceCents, b.Notes, b.UpdatedAt,
	)
	if err != nil {
		return wrapError("update booking", err)
	}
	return requireAffected(result, "booking "+b.ID.String())
}

// FindOverlapping returns non-cancelled bookings of the photographer intersecting [start, end)
func (r *BookingRepository) FindOverlapping(ctx context.Context, orgID, photographerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE org_id = $1
		  AND photographer_id = $2
		  AND status <> 'cancelled'
		  AND starts_at < $4
		  AND ends_at > $3
		  AND ($5::uuid IS NULL OR id <> $5)
		ORDER BY starts_at ASC
	`
	return r.queryBookings(ctx, query, orgID, photographerID, start, end, excludeID)
}

// CountByStatus counts bookings starting in [start, end) per status
func (r *BookingRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, start, end time.Time) (map[models.BookingStatus]int, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM bookings
		WHERE org_id = $1 AND starts_at >= $2 AND starts_at < $3
		GROUP BY status
	`, orgID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.BookingStatus]int)
	for rows.Next() {
		var status models.BookingStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan booking count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// RevenueByServiceType sums completed booking prices per service type
func (r *BookingRepository) RevenueByServiceType(ctx context.Context, orgID uuid.UUID, start, end time.Time) (map[string]int64, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, `
		SELECT service_type, COALESCE(SUM(price_cents), 0)
		FROM bookings
		WHERE org_id = $1 AND status = 'completed' AND starts_at >= $2 AND starts_at < $3
		GROUP BY service_type
	`, orgID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue by service type: %w", err)
	}
	defer rows.Close()

	revenue := make(map[string]int64)
	for rows.Next() {
		var serviceType string
		var cents int64
		if err := rows.Scan(&serviceType, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan service revenue: %w", err)
		}
		revenue[serviceType] = cents
	}
	return revenue, rows.Err()
}
