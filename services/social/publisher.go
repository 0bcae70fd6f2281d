package social

import (
	"context"
	"fmt"

	"github.com/photoproos/platform/models"
	"go.uber.org/zap"
)

// Publisher sends a post to its social network and returns the network's post id
type Publisher interface {
	Publish(ctx context.Context, post *models.SocialPost) (string, error)
}

// LogPublisher logs posts instead of calling the networks. Connected-account OAuth is not wired yet.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a LogPublisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the post and returns a synthetic external id
func (p *LogPublisher) Publish(ctx context.Context, post *models.SocialPost) (string, error) {
	p.logger.Info("social post published",
		zap.String("org_id", post.OrgID.String()),
		zap.String("post_id", post.ID.String()),
		zap.String("platform", string(post.Platform)),
		zap.Int("media", len(post.MediaURLs)),
	)
	return fmt.Sprintf("%s_%s", post.Platform, post.ID.String()[:8]), nil
}
