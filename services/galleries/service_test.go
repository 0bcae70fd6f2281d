package galleries

import (
	"context"
	"testing"
	"time"

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

type recordingDispatcher struct {
	events []models.WorkflowEvent
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, event models.WorkflowEvent) {
	d.events = append(d.events, event)
}

func newTestService() (*GalleryService, *mocks.GalleryRepository, *mocks.ClientRepository, *recordingDispatcher) {
	galleryRepo := new(mocks.GalleryRepository)
	clientRepo := new(mocks.ClientRepository)
	dispatcher := &recordingDispatcher{}
	service := NewGalleryService(galleryRepo, clientRepo, dispatcher, audit.Nop{}, zap.NewNop())
	service.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }
	return service, galleryRepo, clientRepo, dispatcher
}

func TestGalleryService_Create(t *testing.T) {
	orgID, actorID := uuid.New(), uuid.New()

	t.Run("with client", func(t *testing.T) {
		service, galleryRepo, clientRepo, _ := newTestService()
		clientID := uuid.New()
		clientRepo.On("GetByID", mock.Anything, orgID, clientID).Return(models.NewClient(orgID, "Rosa", "rosa@example.com"), nil)
		galleryRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Gallery")).Return(nil)

		gallery, err := service.Create(context.Background(), orgID, actorID, GalleryInput{Name: " Wedding ", ClientID: &clientID, PhotoCount: 400})
		require.NoError(t, err)
		assert.Equal(t, "Wedding", gallery.Name)
		assert.Equal(t, models.GalleryStatusDraft, gallery.Status)
		assert.Equal(t, clientID, *gallery.ClientID)
	})

	t.Run("unknown client", func(t *testing.T) {
		service, _, clientRepo, _ := newTestService()
		clientID := uuid.New()
		clientRepo.On("GetByID", mock.Anything, orgID, clientID).Return(nil, repositories.ErrNotFound)

		_, err := service.Create(context.Background(), orgID, actorID, GalleryInput{Name: "Wedding", ClientID: &clientID})
		assert.ErrorIs(t, err, services.ErrClientNotFound)
	})

	t.Run("blank name", func(t *testing.T) {
		service, _, _, _ := newTestService()
		_, err := service.Create(context.Background(), orgID, actorID, GalleryInput{Name: "  "})
		assert.True(t, services.IsValidationError(err))
	})
}

func TestGalleryService_Deliver(t *testing.T) {
	orgID, actorID := uuid.New(), uuid.New()

	t.Run("draft is delivered and emits gallery_delivered", func(t *testing.T) {
		service, galleryRepo, _, dispatcher := newTestService()
		clientID := uuid.New()
		gallery := models.NewGallery(orgID, "Wedding")
		gallery.ClientID = &clientID
		galleryRepo.On("GetByID", mock.Anything, orgID, gallery.ID).Return(gallery, nil)
		galleryRepo.On("Update", mock.Anything, gallery).Return(nil)

		delivered, err := service.Deliver(context.Background(), orgID, actorID, gallery.ID)
		require.NoError(t, err)
		assert.Equal(t, models.GalleryStatusDelivered, delivered.Status)
		require.NotNil(t, delivered.DeliveredAt)
		assert.Equal(t, service.now(), *delivered.DeliveredAt)

		require.Len(t, dispatcher.events, 1)
		event := dispatcher.events[0]
		assert.Equal(t, models.TriggerGalleryDelivered, event.Trigger)
		assert.Equal(t, clientID, *event.ClientID)
		assert.Equal(t, "Wedding", event.Payload["gallery_name"])
	})

	t.Run("already delivered", func(t *testing.T) {
		service, galleryRepo, _, dispatcher := newTestService()
		gallery := models.NewGallery(orgID, "Wedding")
		gallery.MarkDelivered(time.Now())
		galleryRepo.On("GetByID", mock.Anything, orgID, gallery.ID).Return(gallery, nil)

		_, err := service.Deliver(context.Background(), orgID, actorID, gallery.ID)
		assert.ErrorIs(t, err, services.ErrInvalidTransition)
		assert.Empty(t, dispatcher.events)
	})

	t.Run("missing gallery", func(t *testing.T) {
		service, galleryRepo, _, _ := newTestService()
		id := uuid.New()
		galleryRepo.On("GetByID", mock.Anything, orgID, id).Return(nil, repositories.ErrNotFound)

		_, err := service.Deliver(context.Background(), orgID, actorID, id)
		assert.ErrorIs(t, err, services.ErrGalleryNotFound)
	})
}

func TestGalleryService_Archive(t *testing.T) {
	orgID, actorID := uuid.New(), uuid.New()
	service, galleryRepo, _, _ := newTestService()
	gallery := models.NewGallery(orgID, "Wedding")
	galleryRepo.On("GetByID", mock.Anything, orgID, gallery.ID).Return(gallery, nil)
	galleryRepo.On("Update", mock.Anything, gallery).Return(nil).Once()

	archived, err := service.Archive(context.Background(), orgID, actorID, gallery.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GalleryStatusArchived, archived.Status)

	// archiving twice is a no-op
	_, err = service.Archive(context.Background(), orgID, actorID, gallery.ID)
	require.NoError(t, err)
	galleryRepo.AssertNumberOfCalls(t, "Update", 1)

	_, err = service.Update(context.Background(), orgID, actorID, gallery.ID, GalleryInput{Name: "New"})
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
}
