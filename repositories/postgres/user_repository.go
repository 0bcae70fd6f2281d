package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

const userColumns = `id, clerk_user_id, email, name, org_id, role, is_super_admin, stripe_account_id, created_at, updated_at`

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

func scanUser(s rowScanner) (*models.User, error) {
	u := &models.User{}
	err := s.Scan(
		&u.ID,
		&u.ClerkUserID,
		&u.Email,
		&u.Name,
		&u.OrgID,
		&u.Role,
		&u.IsSuperAdmin,
		&u.StripeAccountID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		user.ID,
		user.ClerkUserID,
		user.Email,
		user.Name,
		user.OrgID,
		user.Role,
		user.IsSuperAdmin,
		user.StripeAccountID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return wrapError("create user", err)
	}

	r.logger.Debug("user created", zap.String("id", user.ID.String()), zap.String("org_id", user.OrgID.String()))
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapError("get user", err)
	}
	return user, nil
}

// LockForUpdate locks the user row for the current transaction
func (r *UserRepository) LockForUpdate(ctx context.Context, id uuid.UUID) error {
	var locked uuid.UUID
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		return wrapError("lock user", err)
	}
	return nil
}

// GetByClerkUserID retrieves a user by Clerk subject
func (r *UserRepository) GetByClerkUserID(ctx context.Context, clerkUserID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE clerk_user_id = $1`

	user, err := scanUser(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, clerkUserID))
	if err != nil {
		return nil, wrapError("get user by clerk id", err)
	}
	return user, nil
}

// GetByOrgID retrieves all users for an organization
func (r *UserRepository) GetByOrgID(ctx context.Context, orgID uuid.UUID) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE org_id = $1 ORDER BY created_at ASC`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2,
		    name = $3,
		    role = $4,
		    is_super_admin = $5,
		    stripe_account_id = $6,
		    updated_at = $7
		WHERE id = $1
	`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Role,
		user.IsSuperAdmin,
		user.StripeAccountID,
		user.UpdatedAt,
	)
	if err != nil {
		return wrapError("update user", err)
	}

	if err := requireAffected(result, "user "+user.ID.String()); err != nil {
		return err
	}

	r.logger.Debug("user updated", zap.String("id", user.ID.String()))
	return nil
}

// Delete deletes a user
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireAffected(result, "user "+id.String())
}
