// Package apikeys issues and verifies keys for the external API.
package apikeys

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/audit"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	keyPrefix    = "ppk_"
	prefixLength = 8
	secretLength = 32

	prefixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// CreateInput describes a new key
type CreateInput struct {
	Name      string     `json:"name" validate:"required,max=100"`
	Scopes    []string   `json:"scopes" validate:"required,min=1"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// CreatedKey carries the raw key, shown exactly once
type CreatedKey struct {
	Key    string         `json:"key"`
	APIKey *models.APIKey `json:"api_key"`
}

// APIKeyService manages API keys
type APIKeyService struct {
	keyRepo repositories.APIKeyRepository
	audit   audit.Recorder
	logger  *zap.Logger
	cost    int
	now     func() time.Time
}

// NewAPIKeyService creates a new APIKeyService instance
func NewAPIKeyService(keyRepo repositories.APIKeyRepository, recorder audit.Recorder, logger *zap.Logger) *APIKeyService {
	return &APIKeyService{
		keyRepo: keyRepo,
		audit:   recorder,
		logger:  logger,
		cost:    bcrypt.DefaultCost,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func randomString(alphabet string, n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}

// generate returns a raw key and its public prefix
func generate() (raw, prefix string, err error) {
	prefix, err = randomString(prefixAlphabet, prefixLength)
	if err != nil {
		return "", "", err
	}
	secret, err := randomString(secretAlphabet, secretLength)
	if err != nil {
		return "", "", err
	}
	return keyPrefix + prefix + "_" + secret, prefix, nil
}

// parse extracts the prefix of a well-formed raw key
func parse(raw string) (string, bool) {
	if !strings.HasPrefix(raw, keyPrefix) {
		return "", false
	}
	rest := raw[len(keyPrefix):]
	if len(rest) != prefixLength+1+secretLength || rest[prefixLength] != '_' {
		return "", false
	}
	return rest[:prefixLength], true
}

func normalizeScopes(scopes []string) ([]string, error) {
	known := make(map[string]bool, len(models.KnownScopes))
	for _, s := range models.KnownScopes {
		known[s] = true
	}

	out := make([]string, 0, len(scopes))
	seen := make(map[string]bool, len(scopes))
	for _, s := range scopes {
		s = strings.TrimSpace(s)
		if !known[s] {
			return nil, services.Validation("unknown scope").WithDetail("scope", s)
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, services.Validation("at least one scope is required")
	}
	return out, nil
}

// Create issues a key. The raw key is returned once and only its bcrypt hash is stored.
func (s *APIKeyService) Create(ctx context.Context, orgID, actorID uuid.UUID, in CreateInput) (*CreatedKey, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, services.Validation("name is required")
	}
	scopes, err := normalizeScopes(in.Scopes)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, services.Validation("expiry must be in the future")
	}

	raw, prefix, err := generate()
	if err != nil {
		return nil, services.WrapInternal("failed to generate key", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), s.cost)
	if err != nil {
		return nil, services.WrapInternal("failed to hash key", err)
	}

	key := &models.APIKey{
		ID:        uuid.New(),
		OrgID:     orgID,
		Name:      name,
		Prefix:    prefix,
		KeyHash:   string(hash),
		Scopes:    scopes,
		ExpiresAt: in.ExpiresAt,
		CreatedAt: now,
	}
	if actorID != uuid.Nil {
		key.CreatedBy = &actorID
	}

	if err := s.keyRepo.Create(ctx, key); err != nil {
		return nil, services.MapRepoError(err, services.ErrAPIKeyNotFound, "failed to create API key")
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionAPIKeyCreated,
		ResourceType: "api_key",
		ResourceID:   key.ID,
		Details:      map[string]interface{}{"prefix": prefix, "scopes": scopes},
	})
	return &CreatedKey{Key: raw, APIKey: key}, nil
}

// Verify resolves a raw key to an active key record
func (s *APIKeyService) Verify(ctx context.Context, raw string) (*models.APIKey, error) {
	prefix, ok := parse(raw)
	if !ok {
		return nil, services.ErrInvalidAPIKey
	}

	key, err := s.keyRepo.GetByPrefix(ctx, prefix)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrInvalidAPIKey
		}
		return nil, services.WrapInternal("failed to load API key", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(raw)); err != nil {
		return nil, services.ErrInvalidAPIKey
	}

	now := s.now()
	if key.IsRevoked() || key.IsExpired(now) {
		return nil, services.ErrInvalidAPIKey
	}

	if err := s.keyRepo.TouchLastUsed(ctx, key.ID, now); err != nil {
		s.logger.Warn("failed to touch API key", zap.String("key_id", key.ID.String()), zap.Error(err))
	} else {
		key.LastUsedAt = &now
	}
	return key, nil
}

// List returns the organization's keys without hashes
func (s *APIKeyService) List(ctx context.Context, orgID uuid.UUID) ([]*models.APIKey, error) {
	keys, err := s.keyRepo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, services.WrapInternal("failed to list API keys", err)
	}
	for _, k := range keys {
		k.KeyHash = ""
	}
	return keys, nil
}

// Revoke disables a key but keeps it listed
func (s *APIKeyService) Revoke(ctx context.Context, orgID, actorID, id uuid.UUID) error {
	if err := s.keyRepo.Revoke(ctx, orgID, id, s.now()); err != nil {
		return services.MapRepoError(err, services.ErrAPIKeyNotFound, "failed to revoke API key")
	}
	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionAPIKeyRevoked,
		ResourceType: "api_key",
		ResourceID:   id,
	})
	return nil
}

// Delete removes a key entirely
func (s *APIKeyService) Delete(ctx context.Context, orgID, actorID, id uuid.UUID) error {
	if err := s.keyRepo.Delete(ctx, orgID, id); err != nil {
		return services.MapRepoError(err, services.ErrAPIKeyNotFound, "failed to delete API key")
	}
	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionAPIKeyDeleted,
		ResourceType: "api_key",
		ResourceID:   id,
	})
	return nil
}
