package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSocialPostRepository_ClaimDue(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSocialPostRepository(db, zap.NewNop())
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	id, orgID := uuid.New(), uuid.New()
	scheduled := now.Add(-time.Minute)

	rows := sqlmock.NewRows([]string{
		"id", "org_id", "platform", "content", "media_urls", "status", "scheduled_for", "published_at",
		"external_id", "error", "created_at", "updated_at",
	}).AddRow(id.String(), orgID.String(), "instagram", "New work", "{https://cdn.example.com/a.jpg}", "publishing",
		scheduled, nil, "", "", now, now)

	mock.ExpectQuery(`(?s)UPDATE social_posts\s+SET status = 'publishing'.*FOR UPDATE SKIP LOCKED.*RETURNING`).
		WithArgs(now, 50).
		WillReturnRows(rows)

	posts, err := repo.ClaimDue(context.Background(), now, 50)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.SocialPostPublishing, posts[0].Status)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg"}, posts[0].MediaURLs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
