package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOrganization() *models.Organization {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &models.Organization{
		ID:        uuid.New(),
		Name:      "Northlight Studio",
		Slug:      "northlight",
		Currency:  "usd",
		Timezone:  "America/New_York",
		Plan:      "pro",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrganizationRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrganizationRepository(db, zap.NewNop())
	org := testOrganization()

	mock.ExpectExec("INSERT INTO organizations").
		WithArgs(org.ID, org.Name, org.Slug, org.Currency, org.Timezone, org.Plan, org.CreatedAt, org.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), org))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationRepository_CreateDuplicateSlug(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrganizationRepository(db, zap.NewNop())

	mock.ExpectExec("INSERT INTO organizations").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), testOrganization())
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestOrganizationRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrganizationRepository(db, zap.NewNop())
	org := testOrganization()

	rows := sqlmock.NewRows([]string{"id", "name", "slug", "currency", "timezone", "plan", "created_at", "updated_at"}).
		AddRow(org.ID.String(), org.Name, org.Slug, org.Currency, org.Timezone, org.Plan, org.CreatedAt, org.UpdatedAt)
	mock.ExpectQuery(regexp.QuoteMeta("FROM organizations WHERE id = $1")).
		WithArgs(org.ID).
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, org, got)
}

func TestOrganizationRepository_GetBySlugNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrganizationRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta("FROM organizations WHERE slug = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestOrganizationRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrganizationRepository(db, zap.NewNop())
	org := testOrganization()

	rows := sqlmock.NewRows([]string{
		"id", "name", "slug", "currency", "timezone", "plan", "created_at", "updated_at",
		"members", "clients", "revenue",
	}).AddRow(org.ID.String(), org.Name, org.Slug, org.Currency, org.Timezone, org.Plan, org.CreatedAt, org.UpdatedAt, 4, 37, 1250000)
	mock.ExpectQuery("FROM organizations o").WithArgs(20, 40).WillReturnRows(rows)

	summaries, err := repo.List(context.Background(), 20, 40)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "northlight", summaries[0].Slug)
	assert.EqualValues(t, 4, summaries[0].MemberCount)
	assert.EqualValues(t, 37, summaries[0].ClientCount)
	assert.EqualValues(t, 1250000, summaries[0].RevenueCents)
}

func TestOrganizationRepository_UpdateMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrganizationRepository(db, zap.NewNop())

	mock.ExpectExec("UPDATE organizations").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), testOrganization())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestOrganizationRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrganizationRepository(db, zap.NewNop())
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM organizations WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}
