package cms

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/repositories/mocks"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService() (*ContentService, *mocks.ContentRepository) {
	repo := new(mocks.ContentRepository)
	return NewContentService(repo, audit.Nop{}, zap.NewNop()), repo
}

func admin() *models.User {
	u := models.NewUser("staff@photoproos.com", "user_staff", uuid.New(), models.RoleOwner)
	u.IsSuperAdmin = true
	return u
}

func TestContentService_FAQs(t *testing.T) {
	t.Run("public list only asks for published", func(t *testing.T) {
		service, repo := newTestService()
		repo.On("ListFAQs", mock.Anything, true).Return([]*models.FAQ{{Question: "Q"}}, nil)

		faqs, err := service.PublishedFAQs(context.Background())
		require.NoError(t, err)
		assert.Len(t, faqs, 1)
	})

	t.Run("create normalizes category", func(t *testing.T) {
		service, repo := newTestService()
		repo.On("CreateFAQ", mock.Anything, mock.AnythingOfType("*models.FAQ")).Return(nil)

		faq, err := service.CreateFAQ(context.Background(), admin(), FAQInput{
			Category: " Billing ", Question: "Can I pause?", Answer: "Yes.", IsPublished: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "billing", faq.Category)
		assert.True(t, faq.IsPublished)
	})

	t.Run("create requires an answer", func(t *testing.T) {
		service, _ := newTestService()
		_, err := service.CreateFAQ(context.Background(), admin(), FAQInput{Category: "billing", Question: "Q"})
		assert.True(t, services.IsValidationError(err))
	})

	t.Run("update missing", func(t *testing.T) {
		service, repo := newTestService()
		id := uuid.New()
		repo.On("GetFAQ", mock.Anything, id).Return(nil, repositories.ErrNotFound)

		_, err := service.UpdateFAQ(context.Background(), admin(), id, FAQInput{Category: "a", Question: "b", Answer: "c"})
		assert.ErrorIs(t, err, services.ErrContentNotFound)
	})
}

func TestContentService_Roadmap(t *testing.T) {
	service, repo := newTestService()
	now := &models.RoadmapPhase{ID: uuid.New(), Title: "Now", SortOrder: 1}
	next := &models.RoadmapPhase{ID: uuid.New(), Title: "Next", SortOrder: 2}
	items := []*models.RoadmapItem{
		{ID: uuid.New(), PhaseID: now.ID, Title: "Client portal"},
		{ID: uuid.New(), PhaseID: now.ID, Title: "Contracts"},
		{ID: uuid.New(), PhaseID: uuid.New(), Title: "Orphan"},
	}
	repo.On("ListPhases", mock.Anything).Return([]*models.RoadmapPhase{now, next}, nil)
	repo.On("ListItems", mock.Anything).Return(items, nil)

	phases, err := service.Roadmap(context.Background())
	require.NoError(t, err)
	require.Len(t, phases, 2)
	require.Len(t, phases[0].Items, 2)
	assert.Equal(t, "Client portal", phases[0].Items[0].Title)
	assert.Equal(t, "Contracts", phases[0].Items[1].Title)
	assert.Empty(t, phases[1].Items)
}

func TestContentService_Items(t *testing.T) {
	t.Run("create needs an existing phase", func(t *testing.T) {
		service, repo := newTestService()
		phaseID := uuid.New()
		repo.On("GetPhase", mock.Anything, phaseID).Return(nil, repositories.ErrNotFound)

		_, err := service.CreateItem(context.Background(), admin(), ItemInput{PhaseID: phaseID, Title: "Contracts"})
		assert.ErrorIs(t, err, services.ErrContentNotFound)
	})

	t.Run("create defaults to planned", func(t *testing.T) {
		service, repo := newTestService()
		phase := &models.RoadmapPhase{ID: uuid.New()}
		repo.On("GetPhase", mock.Anything, phase.ID).Return(phase, nil)
		repo.On("CreateItem", mock.Anything, mock.AnythingOfType("*models.RoadmapItem")).Return(nil)

		item, err := service.CreateItem(context.Background(), admin(), ItemInput{PhaseID: phase.ID, Title: "Contracts"})
		require.NoError(t, err)
		assert.Equal(t, models.RoadmapPlanned, item.Status)
	})

	t.Run("unknown status", func(t *testing.T) {
		service, _ := newTestService()
		_, err := service.CreateItem(context.Background(), admin(), ItemInput{PhaseID: uuid.New(), Title: "x", Status: "shipped"})
		assert.True(t, services.IsValidationError(err))
	})

	t.Run("vote", func(t *testing.T) {
		service, repo := newTestService()
		id, missing := uuid.New(), uuid.New()
		repo.On("VoteItem", mock.Anything, id).Return(8, nil)
		repo.On("VoteItem", mock.Anything, missing).Return(0, repositories.ErrNotFound)

		votes, err := service.Vote(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 8, votes)

		_, err = service.Vote(context.Background(), missing)
		assert.ErrorIs(t, err, services.ErrContentNotFound)
	})
}
