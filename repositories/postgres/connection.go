package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/photoproos/platform/config"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// NewDBFromConn wraps an existing pool, e.g. a sqlmock connection in tests
func NewDBFromConn(conn *sql.DB, logger *zap.Logger) *DB {
	return &DB{DB: conn, logger: logger}
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// Stats returns database connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// InitSchema initializes the database schema
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized successfully")
	return nil
}

// wrapError maps driver errors onto repository sentinels
func wrapError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, repositories.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%s: %w", op, repositories.ErrDuplicate)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// requireAffected turns a zero-row update or delete into ErrNotFound
func requireAffected(result sql.Result, what string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
	}
	return nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS organizations (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		slug VARCHAR(100) NOT NULL UNIQUE,
		currency CHAR(3) NOT NULL DEFAULT 'usd',
		timezone VARCHAR(64) NOT NULL DEFAULT 'UTC',
		plan VARCHAR(32) NOT NULL DEFAULT 'free',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		clerk_user_id VARCHAR(255) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		org_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		role VARCHAR(32) NOT NULL,
		is_super_admin BOOLEAN NOT NULL DEFAULT false,
		stripe_account_id VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY,
		org_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(64) NOT NULL DEFAULT '',
		company VARCHAR(255) NOT NULL DEFAULT '',
		tags TEXT[] NOT NULL DEFAULT '{}',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS galleries (
		id UUID PRIMARY KEY,
		org_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		client_id UUID REFERENCES clients(id) ON DELETE SET NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(32) NOT NULL,
		price_cents BIGINT NOT NULL DEFAULT 0,
		photo_count INTEGER NOT NULL DEFAULT 0,
		delivered_at TIMESTAMPTZ,
		expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY,
		org_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		client_id UUID NOT NULL REFERENCES clients(id),
		number VARCHAR(32) NOT NULL,
		status VARCHAR(32) NOT NULL,
		currency CHAR(3) NOT NULL,
		line_items JSONB NOT NULL DEFAULT '[]',
		subtotal_cents BIGINT NOT NULL DEFAULT 0,
		discount_cents BIGINT NOT NULL DEFAULT 0,
		tax_rate_bps BIGINT NOT NULL DEFAULT 0,
		tax_cents BIGINT NOT NULL DEFAULT 0,
		total_cents BIGINT NOT NULL DEFAULT 0,
		amount_paid_cents BIGINT NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		due_date TIMESTAMPTZ,
		issued_at TIMESTAMPTZ,
		paid_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(org_id, number)
	);

	CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		org_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		client_id UUID NOT NULL REFERENCES clients(id),
		amount_cents BIGINT NOT NULL,
		currency CHAR(3) NOT NULL,
		status VARCHAR(32) NOT NULL,
		provider VARCHAR(32) NOT NULL,
		provider_payment_id VARCHAR(255),
		paid_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		org_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		client_id UUID NOT NULL REFERENCES clients(id),
		photographer_id UUID REFERENCES users(id) ON DELETE SET NULL,
		service_type VARCHAR(64) NOT NULL DEFAULT '',
		title VARCHAR(255) NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		starts_at TIMESTAMPTZ NOT NULL,
		ends_at TIMESTAMPTZ NOT NULL,
		status VARCHAR(32) NOT NULL,
		price_cents BIGINT NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (ends_at > starts_at)
	);

	CREATE TABLE IF NOT EXISTS photographer_rates (
		id UUID PRIMARY KEY,
		org_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		photographer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		service_type VARCHAR(64),
		rate_type VARCHAR(32) NOT NULL,
		rate_value BIGINT NOT NULL,
		min_payout_cents BIGINT,
		max_payout_cents BIGINT,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS payout_batches (
		id UUID PRIMARY KEY,
		org_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		batch_number VARCHAR(64) NOT NULL,
		status VARCHAR(32) NOT NULL,
		currency CHAR(3) NOT NULL,
		total_cents BIGINT NOT NULL,
		item_count INTEGER NOT NULL,
		created_by UUID REFERENCES users(id) ON DELETE SET NULL,
		notes TEXT NOT NULL DEFAULT '',
		processed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(org_id, batch_number)
	);

	CREATE TABLE IF NOT EXISTS photographer_earnings (
		id UUID PRIMARY KEY,
		org_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		photographer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		booking_id UUID REFERENCES bookings(id) ON DELETE SET NULL,
		description TEXT NOT NULL DEFAULT '',
		amount_cents BIGINT NOT NULL,
		status VARCHAR(32) NOT NULL,
		payout_batch_id UUID REFERENCES payout_batches(id) ON DELETE SET NULL,
		earned_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS payout_items (
		id UUID PRIMARY KEY,
		batch_id UUID NOT NULL REFERENCES payout_batches(id) ON DELETE CASCADE,
		org_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		photographer_id UUID NOT NULL REFERENCES users(id),
		amount_cents BIGINT NOT NULL,
		earnings_count INTEGER NOT NULL,
		status VARCHAR(32) NOT NULL,
		transfer_id VARCHAR(255) NOT NULL DEFAULT '',
		failure_reason TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS workflows (
		id UUID PRIMARY KEY,
		org_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		trigger VARCHAR(64) NOT NULL,
		steps JSONB NOT NULL DEFAULT '[]',
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS workflow_executions (
		id UUID PRIMARY KEY,
		workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
		org_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		trigger VARCHAR(64) NOT NULL,
		status VARCHAR(32) NOT NULL,
		steps_run INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		payload JSONB,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS support_tickets (
		id UUID PRIMARY KEY,
		org_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		subject VARCHAR(255) NOT NULL,
		category VARCHAR(64) NOT NULL DEFAULT 'general',
		priority VARCHAR(32) NOT NULL,
		status VARCHAR(32) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS support_messages (
		id UUID PRIMARY KEY,
		ticket_id UUID NOT NULL REFERENCES support_tickets(id) ON DELETE CASCADE,
		author_id UUID NOT NULL,
		is_staff BOOLEAN NOT NULL DEFAULT false,
		body TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS faqs (
		id UUID PRIMARY KEY,
		category VARCHAR(64) NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		is_published BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS roadmap_phases (
		id UUID PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(32) NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS roadmap_items (
		id UUID PRIMARY KEY,
		phase_id UUID NOT NULL REFERENCES roadmap_phases(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(32) NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		votes INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS api_keys (
		id UUID PRIMARY KEY,
		org_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		prefix VARCHAR(16) NOT NULL UNIQUE,
		key_hash VARCHAR(255) NOT NULL,
		scopes TEXT[] NOT NULL DEFAULT '{}',
		created_by UUID REFERENCES users(id) ON DELETE SET NULL,
		last_used_at TIMESTAMPTZ,
		expires_at TIMESTAMPTZ,
		revoked_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS feature_flags (
		id UUID PRIMARY KEY,
		key VARCHAR(100) NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		enabled BOOLEAN NOT NULL DEFAULT false,
		rollout_percent INTEGER NOT NULL DEFAULT 0 CHECK (rollout_percent BETWEEN 0 AND 100),
		org_allowlist TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS social_posts (
		id UUID PRIMARY KEY,
		org_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		platform VARCHAR(32) NOT NULL,
		content TEXT NOT NULL,
		media_urls TEXT[] NOT NULL DEFAULT '{}',
		status VARCHAR(32) NOT NULL,
		scheduled_for TIMESTAMPTZ,
		published_at TIMESTAMPTZ,
		external_id VARCHAR(255) NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY,
		org_id UUID NOT NULL,
		user_id UUID,
		action VARCHAR(100) NOT NULL,
		resource_type VARCHAR(100) NOT NULL,
		resource_id UUID,
		details JSONB,
		ip_address VARCHAR(45),
		user_agent TEXT,
		request_id VARCHAR(255),
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_org_id ON users(org_id);
	CREATE INDEX IF NOT EXISTS idx_clients_org_id ON clients(org_id);
	CREATE INDEX IF NOT EXISTS idx_galleries_org_id ON galleries(org_id);
	CREATE INDEX IF NOT EXISTS idx_invoices_org_status ON invoices(org_id, status);
	CREATE INDEX IF NOT EXISTS idx_invoices_client_id ON invoices(client_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_provider_id ON payments(provider_payment_id) WHERE provider_payment_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_payments_org_paid_at ON payments(org_id, paid_at);
	CREATE INDEX IF NOT EXISTS idx_bookings_org_starts_at ON bookings(org_id, starts_at);
	CREATE INDEX IF NOT EXISTS idx_bookings_photographer ON bookings(photographer_id, starts_at);
	CREATE INDEX IF NOT EXISTS idx_rates_photographer ON photographer_rates(org_id, photographer_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_earnings_booking ON photographer_earnings(booking_id) WHERE booking_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_earnings_payout ON photographer_earnings(org_id, status, payout_batch_id);
	CREATE INDEX IF NOT EXISTS idx_payout_items_batch ON payout_items(batch_id);
	CREATE INDEX IF NOT EXISTS idx_workflows_trigger ON workflows(org_id, trigger) WHERE is_active;
	CREATE INDEX IF NOT EXISTS idx_workflow_executions_org ON workflow_executions(org_id, started_at);
	CREATE INDEX IF NOT EXISTS idx_support_tickets_org ON support_tickets(org_id, status);
	CREATE INDEX IF NOT EXISTS idx_support_messages_ticket ON support_messages(ticket_id);
	CREATE INDEX IF NOT EXISTS idx_roadmap_items_phase ON roadmap_items(phase_id);
	CREATE INDEX IF NOT EXISTS idx_api_keys_org_id ON api_keys(org_id);
	CREATE INDEX IF NOT EXISTS idx_social_posts_due ON social_posts(status, scheduled_for);
	CREATE INDEX IF NOT EXISTS idx_audit_logs_org_id ON audit_logs(org_id);
	CREATE INDEX IF NOT EXISTS idx_audit_logs_user_id ON audit_logs(user_id);
	CREATE INDEX IF NOT EXISTS idx_audit_logs_action ON audit_logs(action);
	CREATE INDEX IF NOT EXISTS idx_audit_logs_timestamp ON audit_logs(timestamp);
	CREATE INDEX IF NOT EXISTS idx_audit_logs_request_id ON audit_logs(request_id);
`
