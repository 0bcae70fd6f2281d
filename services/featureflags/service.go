// Package featureflags evaluates per-organization feature gates.
package featureflags

import (
	"context"
	"errors"
	"hash/fnv"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/audit"
	"go.uber.org/zap"
)

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,63}$`)

// FlagInput is the editable part of a flag
type FlagInput struct {
	Key            string      `json:"key" validate:"required,max=64"`
	Description    string      `json:"description" validate:"max=500"`
	Enabled        bool        `json:"enabled"`
	RolloutPercent int         `json:"rollout_percent" validate:"gte=0,lte=100"`
	OrgAllowlist   []uuid.UUID `json:"org_allowlist"`
}

// FeatureFlagService manages and evaluates feature flags
type FeatureFlagService struct {
	flagRepo repositories.FeatureFlagRepository
	cache    *FlagCache
	audit    audit.Recorder
	logger   *zap.Logger
}

// NewFeatureFlagService creates a new FeatureFlagService instance
func NewFeatureFlagService(flagRepo repositories.FeatureFlagRepository, cache *FlagCache, recorder audit.Recorder, logger *zap.Logger) *FeatureFlagService {
	return &FeatureFlagService{
		flagRepo: flagRepo,
		cache:    cache,
		audit:    recorder,
		logger:   logger,
	}
}

// Bucket maps a (flag, organization) pair onto 0..99 with FNV-1a
func Bucket(key string, orgID uuid.UUID) int {
	h := fnv.New32a()
	h.Write([]byte(key + ":" + orgID.String()))
	return int(h.Sum32() % 100)
}

// Evaluate decides a flag for an organization: disabled flags are off,
// allowlisted organizations are on, everyone else falls in or out of the rollout.
func Evaluate(flag *models.FeatureFlag, orgID uuid.UUID) bool {
	if flag == nil || !flag.Enabled {
		return false
	}
	if flag.Allows(orgID) {
		return true
	}
	return Bucket(flag.Key, orgID) < flag.RolloutPercent
}

func (in FlagInput) validate() error {
	if !keyPattern.MatchString(in.Key) {
		return services.Validation("flag key must be lowercase letters, digits and underscores").WithDetail("key", in.Key)
	}
	if in.RolloutPercent < 0 || in.RolloutPercent > 100 {
		return services.Validation("rollout percent must be between 0 and 100")
	}
	return nil
}

func (s *FeatureFlagService) lookup(ctx context.Context, key string) (*models.FeatureFlag, error) {
	if flag, ok := s.cache.Get(key); ok {
		return flag, nil
	}

	flag, err := s.flagRepo.GetByKey(ctx, key)
	if errors.Is(err, repositories.ErrNotFound) {
		s.cache.Set(key, nil)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, flag)
	return flag, nil
}

// IsEnabled evaluates one flag. Unknown flags are off.
func (s *FeatureFlagService) IsEnabled(ctx context.Context, key string, orgID uuid.UUID) (bool, error) {
	flag, err := s.lookup(ctx, key)
	if err != nil {
		return false, services.WrapInternal("failed to load feature flag", err)
	}
	return Evaluate(flag, orgID), nil
}

// EvaluateAll evaluates every flag for an organization
func (s *FeatureFlagService) EvaluateAll(ctx context.Context, orgID uuid.UUID) (map[string]bool, error) {
	flags, err := s.flagRepo.List(ctx)
	if err != nil {
		return nil, services.WrapInternal("failed to list feature flags", err)
	}

	out := make(map[string]bool, len(flags))
	for _, f := range flags {
		s.cache.Set(f.Key, f)
		out[f.Key] = Evaluate(f, orgID)
	}
	return out, nil
}

// List returns every flag
func (s *FeatureFlagService) List(ctx context.Context) ([]*models.FeatureFlag, error) {
	flags, err := s.flagRepo.List(ctx)
	if err != nil {
		return nil, services.WrapInternal("failed to list feature flags", err)
	}
	return flags, nil
}

// Get returns one flag
func (s *FeatureFlagService) Get(ctx context.Context, key string) (*models.FeatureFlag, error) {
	flag, err := s.flagRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrFeatureFlagNotFound, "failed to load feature flag")
	}
	return flag, nil
}

// Create adds a flag
func (s *FeatureFlagService) Create(ctx context.Context, actor *models.User, in FlagInput) (*models.FeatureFlag, error) {
	in.Key = strings.TrimSpace(in.Key)
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	flag := &models.FeatureFlag{
		ID:             uuid.New(),
		Key:            in.Key,
		Description:    in.Description,
		Enabled:        in.Enabled,
		RolloutPercent: in.RolloutPercent,
		OrgAllowlist:   in.OrgAllowlist,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if flag.OrgAllowlist == nil {
		flag.OrgAllowlist = []uuid.UUID{}
	}

	if err := s.flagRepo.Create(ctx, flag); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, services.ErrDuplicateKey
		}
		return nil, services.WrapInternal("failed to create feature flag", err)
	}

	s.cache.Invalidate(flag.Key)
	s.record(ctx, actor, flag, "created")
	return flag, nil
}

// Update replaces a flag's settings. The key cannot change.
func (s *FeatureFlagService) Update(ctx context.Context, actor *models.User, key string, in FlagInput) (*models.FeatureFlag, error) {
	in.Key = key
	if err := in.validate(); err != nil {
		return nil, err
	}
	flag, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	flag.Description = in.Description
	flag.Enabled = in.Enabled
	flag.RolloutPercent = in.RolloutPercent
	flag.OrgAllowlist = in.OrgAllowlist
	if flag.OrgAllowlist == nil {
		flag.OrgAllowlist = []uuid.UUID{}
	}
	flag.UpdatedAt = time.Now().UTC()

	if err := s.flagRepo.Update(ctx, flag); err != nil {
		return nil, services.MapRepoError(err, services.ErrFeatureFlagNotFound, "failed to update feature flag")
	}

	s.cache.Invalidate(key)
	s.record(ctx, actor, flag, "updated")
	return flag, nil
}

// Toggle flips a flag on or off
func (s *FeatureFlagService) Toggle(ctx context.Context, actor *models.User, key string) (*models.FeatureFlag, error) {
	flag, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	flag.Enabled = !flag.Enabled
	flag.UpdatedAt = time.Now().UTC()

	if err := s.flagRepo.Update(ctx, flag); err != nil {
		return nil, services.MapRepoError(err, services.ErrFeatureFlagNotFound, "failed to toggle feature flag")
	}

	s.cache.Invalidate(key)
	s.record(ctx, actor, flag, "toggled")
	return flag, nil
}

// Delete removes a flag
func (s *FeatureFlagService) Delete(ctx context.Context, actor *models.User, key string) error {
	if err := s.flagRepo.Delete(ctx, key); err != nil {
		return services.MapRepoError(err, services.ErrFeatureFlagNotFound, "failed to delete feature flag")
	}
	s.cache.Invalidate(key)
	s.logger.Info("feature flag deleted", zap.String("key", key), zap.String("actor_id", actor.ID.String()))
	return nil
}

// CacheStats exposes the flag cache statistics
func (s *FeatureFlagService) CacheStats() CacheStats {
	return s.cache.Stats()
}

func (s *FeatureFlagService) record(ctx context.Context, actor *models.User, flag *models.FeatureFlag, change string) {
	s.audit.Record(ctx, audit.Entry{
		OrgID:        actor.OrgID,
		UserID:       actor.ID,
		Action:       models.AuditActionFeatureFlagChange,
		ResourceType: "feature_flag",
		ResourceID:   flag.ID,
		Details: map[string]interface{}{
			"key":             flag.Key,
			"change":          change,
			"enabled":         flag.Enabled,
			"rollout_percent": flag.RolloutPercent,
		},
	})
}
