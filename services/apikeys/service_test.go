package apikeys

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// memoryRepo is an in-memory APIKeyRepository
type memoryRepo struct {
	mu      sync.Mutex
	keys    []*models.APIKey
	touched int
}

func (r *memoryRepo) Create(ctx context.Context, key *models.APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.keys {
		if k.Prefix == key.Prefix {
			return repositories.ErrDuplicate
		}
	}
	copied := *key
	r.keys = append(r.keys, &copied)
	return nil
}

func (r *memoryRepo) find(orgID, id uuid.UUID) *models.APIKey {
	for _, k := range r.keys {
		if k.OrgID == orgID && k.ID == id {
			return k
		}
	}
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if k := r.find(orgID, id); k != nil {
		copied := *k
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *memoryRepo) GetByPrefix(ctx context.Context, prefix string) (*models.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.keys {
		if k.Prefix == prefix {
			copied := *k
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memoryRepo) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.APIKey
	for _, k := range r.keys {
		if k.OrgID == orgID {
			copied := *k
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryRepo) Revoke(ctx context.Context, orgID, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.find(orgID, id)
	if k == nil {
		return repositories.ErrNotFound
	}
	k.RevokedAt = &at
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, k := range r.keys {
		if k.OrgID == orgID && k.ID == id {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *memoryRepo) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched++
	return nil
}

var fixedNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func newTestService() (*APIKeyService, *memoryRepo) {
	repo := &memoryRepo{}
	service := NewAPIKeyService(repo, audit.Nop{}, zap.NewNop())
	service.cost = bcrypt.MinCost
	service.now = func() time.Time { return fixedNow }
	return service, repo
}

func TestGenerateAndParse(t *testing.T) {
	raw, prefix, err := generate()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "ppk_"+prefix+"_"))
	assert.Len(t, raw, len("ppk_")+8+1+32)

	parsed, ok := parse(raw)
	assert.True(t, ok)
	assert.Equal(t, prefix, parsed)

	for _, bad := range []string{"", "ppk_short", "sk_abcdefgh_" + strings.Repeat("a", 32), "ppk_abcdefgh-" + strings.Repeat("a", 32)} {
		_, ok := parse(bad)
		assert.False(t, ok, bad)
	}
}

func TestAPIKeyService_CreateAndVerify(t *testing.T) {
	service, repo := newTestService()
	orgID, actorID := uuid.New(), uuid.New()

	created, err := service.Create(context.Background(), orgID, actorID, CreateInput{
		Name:   "Zapier",
		Scopes: []string{models.ScopeClientsRead, models.ScopeClientsRead, models.ScopeBookingsRead},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{models.ScopeClientsRead, models.ScopeBookingsRead}, created.APIKey.Scopes)
	assert.NotContains(t, created.APIKey.KeyHash, created.Key)
	assert.Equal(t, actorID, *created.APIKey.CreatedBy)

	key, err := service.Verify(context.Background(), created.Key)
	require.NoError(t, err)
	assert.Equal(t, created.APIKey.ID, key.ID)
	assert.Equal(t, fixedNow, *key.LastUsedAt)
	assert.Equal(t, 1, repo.touched)

	// right prefix, wrong secret
	tampered := created.Key[:len(created.Key)-1] + "#"
	_, err = service.Verify(context.Background(), tampered)
	assert.ErrorIs(t, err, services.ErrInvalidAPIKey)

	_, err = service.Verify(context.Background(), "ppk_nope")
	assert.ErrorIs(t, err, services.ErrInvalidAPIKey)
}

func TestAPIKeyService_Create_Validation(t *testing.T) {
	service, _ := newTestService()
	past := fixedNow.Add(-time.Hour)

	_, err := service.Create(context.Background(), uuid.New(), uuid.New(), CreateInput{Name: "x", Scopes: []string{"admin:*"}})
	assert.True(t, services.IsValidationError(err))

	_, err = service.Create(context.Background(), uuid.New(), uuid.New(), CreateInput{Name: "x"})
	assert.True(t, services.IsValidationError(err))

	_, err = service.Create(context.Background(), uuid.New(), uuid.New(), CreateInput{Name: "x", Scopes: []string{models.ScopeClientsRead}, ExpiresAt: &past})
	assert.True(t, services.IsValidationError(err))
}

func TestAPIKeyService_RevokedAndExpired(t *testing.T) {
	service, _ := newTestService()
	orgID := uuid.New()
	tomorrow := fixedNow.Add(24 * time.Hour)

	revoked, err := service.Create(context.Background(), orgID, uuid.New(), CreateInput{Name: "a", Scopes: []string{models.ScopeClientsRead}})
	require.NoError(t, err)
	require.NoError(t, service.Revoke(context.Background(), orgID, uuid.New(), revoked.APIKey.ID))
	_, err = service.Verify(context.Background(), revoked.Key)
	assert.ErrorIs(t, err, services.ErrInvalidAPIKey)

	expiring, err := service.Create(context.Background(), orgID, uuid.New(), CreateInput{Name: "b", Scopes: []string{models.ScopeClientsRead}, ExpiresAt: &tomorrow})
	require.NoError(t, err)
	_, err = service.Verify(context.Background(), expiring.Key)
	require.NoError(t, err)

	service.now = func() time.Time { return tomorrow }
	_, err = service.Verify(context.Background(), expiring.Key)
	assert.ErrorIs(t, err, services.ErrInvalidAPIKey)
}

func TestAPIKeyService_DeleteRemovesFromList(t *testing.T) {
	service, _ := newTestService()
	orgID := uuid.New()

	keep, err := service.Create(context.Background(), orgID, uuid.New(), CreateInput{Name: "keep", Scopes: []string{models.ScopeInvoicesRead}})
	require.NoError(t, err)
	drop, err := service.Create(context.Background(), orgID, uuid.New(), CreateInput{Name: "drop", Scopes: []string{models.ScopeInvoicesRead}})
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), orgID, uuid.New(), drop.APIKey.ID))

	keys, err := service.List(context.Background(), orgID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, keep.APIKey.ID, keys[0].ID)
	assert.Empty(t, keys[0].KeyHash)

	err = service.Delete(context.Background(), orgID, uuid.New(), drop.APIKey.ID)
	assert.True(t, errors.Is(err, services.ErrAPIKeyNotFound))

	_, err = service.Verify(context.Background(), drop.Key)
	assert.ErrorIs(t, err, services.ErrInvalidAPIKey)
}
