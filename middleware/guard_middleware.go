package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/photoproos/platform/services/ratelimit"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// FeatureChecker evaluates feature flags for an organization
type FeatureChecker interface {
	IsEnabled(ctx context.Context, key string, orgID uuid.UUID) (bool, error)
}

// RejectionCounter counts rate limited requests
type RejectionCounter interface {
	RateLimited(scope string)
}

// GuardMiddleware enforces per-key request limits and feature gates
type GuardMiddleware struct {
	features FeatureChecker
	limiter  *ratelimit.Limiter
	counter  RejectionCounter
	logger   *zap.Logger
}

// NewGuardMiddleware creates a new GuardMiddleware. counter may be nil.
func NewGuardMiddleware(features FeatureChecker, limiter *ratelimit.Limiter, counter RejectionCounter, logger *zap.Logger) *GuardMiddleware {
	return &GuardMiddleware{
		features: features,
		limiter:  limiter,
		counter:  counter,
		logger:   logger,
	}
}

// RateLimit throttles requests per organization and user, per API key on the
// external API, and per client IP otherwise
func (m *GuardMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, scope := limitKey(r)
		m.limit(w, r, next, key, scope)
	})
}

// RateLimitByIP throttles requests per client IP. It runs before credentials
// are checked so failed verifications are throttled too.
func (m *GuardMiddleware) RateLimitByIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.limit(w, r, next, "ip:"+clientIP(r), "ip")
	})
}

func (m *GuardMiddleware) limit(w http.ResponseWriter, r *http.Request, next http.Handler, key, scope string) {
	if m.limiter.Allow(key) {
		next.ServeHTTP(w, r)
		return
	}

	retry := int(math.Ceil(m.limiter.RetryAfter().Seconds()))
	if retry < 1 {
		retry = 1
	}
	if m.counter != nil {
		m.counter.RateLimited(scope)
	}
	m.logger.Warn("rate limit exceeded",
		zap.String("request_id", GetRequestIDFromContext(r.Context())),
		zap.String("key", key),
		zap.String("path", r.URL.Path))

	w.Header().Set("Retry-After", strconv.Itoa(retry))
	_ = utils.WriteTooManyRequests(w, "", map[string]interface{}{"retry_after_seconds": retry})
}

func limitKey(r *http.Request) (string, string) {
	ctx := r.Context()
	if key := GetAPIKeyFromContext(ctx); key != nil {
		return "apikey:" + key.ID.String(), "api_key"
	}
	if user := GetUserFromContext(ctx); user != nil {
		return ratelimit.ScopeKey(user.OrgID, &user.ID), "user"
	}
	return "ip:" + clientIP(r), "ip"
}

// clientIP is the remote address without its port
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RequireFeature hides a route unless the flag is on for the caller's organization.
// It must run after tenant resolution.
func (m *GuardMiddleware) RequireFeature(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			orgID := GetOrgIDFromContext(ctx)
			if orgID == uuid.Nil {
				_ = utils.WriteUnauthorized(w, "Missing tenant information")
				return
			}

			enabled, err := m.features.IsEnabled(ctx, key, orgID)
			if err != nil {
				m.logger.Error("feature evaluation failed",
					zap.String("request_id", GetRequestIDFromContext(ctx)),
					zap.String("feature", key),
					zap.Error(err))
				_ = utils.WriteInternalServerError(w, "Failed to evaluate feature")
				return
			}
			if !enabled {
				_ = utils.WriteNotFound(w, "Feature not available")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
