package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

const clientColumns = `id, org_id, name, email, phone, company, tags, notes, created_at, updated_at`

// ClientRepository implements the repositories.ClientRepository interface
type ClientRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *DB, logger *zap.Logger) repositories.ClientRepository {
	return &ClientRepository{db: db, logger: logger}
}

func scanClient(s rowScanner) (*models.Client, error) {
	c := &models.Client{}
	err := s.Scan(
		&c.ID,
		&c.OrgID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Company,
		pq.Array(&c.Tags),
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return c, nil
}

// Create creates a new client
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		client.ID,
		client.OrgID,
		client.Name,
		client.Email,
		client.Phone,
		client.Company,
		pq.Array(client.Tags),
		client.Notes,
		client.CreatedAt,
		client.UpdatedAt,
	)
	if err != nil {
		return wrapError("create client", err)
	}

	r.logger.Debug("client created", zap.String("id", client.ID.String()))
	return nil
}

// GetByID retrieves a client scoped to its organization
func (r *ClientRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE org_id = $1 AND id = $2`

	client, err := scanClient(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, orgID, id))
	if err != nil {
		return nil, wrapError("get client", err)
	}
	return client, nil
}

// List searches clients by name/email and tag
func (r *ClientRepository) List(ctx context.Context, orgID uuid.UUID, filter models.ClientFilter) ([]*models.Client, error) {
	var (
		where = []string{"org_id = $1"}
		args  = []interface{}{orgID}
	)
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		where = append(where, fmt.Sprintf("$%d = ANY(tags)", len(args)))
	}
	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s FROM clients WHERE %s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		clientColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := []*models.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating client rows: %w", err)
	}
	return clients, nil
}

// Update updates a client
func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	query := `
		UPDATE clients
		SET name = $3,
		    email = $4,
		    phone = $5,
		    company = $6,
		    tags = $7,
		    notes = $8,
		    updated_at = $9
		WHERE org_id = $1 AND id = $2
	`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		client.OrgID,
		client.ID,
		client.Name,
		client.Email,
		client.Phone,
		client.Company,
		pq.Array(client.Tags),
		client.Notes,
		client.UpdatedAt,
	)
	if err != nil {
		return wrapError("update client", err)
	}
	return requireAffected(result, "client "+client.ID.String())
}

// Delete deletes a client
func (r *ClientRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		`DELETE FROM clients WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return requireAffected(result, "client "+id.String())
}

// HasInvoices reports whether any invoice references the client
func (r *ClientRepository) HasInvoices(ctx context.Context, orgID, id uuid.UUID) (bool, error) {
	var exists bool
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM invoices WHERE org_id = $1 AND client_id = $2)`, orgID, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check client invoices: %w", err)
	}
	return exists, nil
}

// CountCreated counts clients created in [start, end)
func (r *ClientRepository) CountCreated(ctx context.Context, orgID uuid.UUID, start, end time.Time) (int, error) {
	var n int
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clients WHERE org_id = $1 AND created_at >= $2 AND created_at < $3`,
		orgID, start, end).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count clients: %w", err)
	}
	return n, nil
}
