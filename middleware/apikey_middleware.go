package middleware

import (
	"context"
	"net/http"

	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// APIKeyHeader carries the raw key on external API requests
const APIKeyHeader = "X-API-Key"

// KeyVerifier checks a raw API key
type KeyVerifier interface {
	Verify(ctx context.Context, raw string) (*models.APIKey, error)
}

// APIKeyMiddleware authenticates the external API
type APIKeyMiddleware struct {
	verifier KeyVerifier
	logger   *zap.Logger
}

// NewAPIKeyMiddleware creates a new APIKeyMiddleware
func NewAPIKeyMiddleware(verifier KeyVerifier, logger *zap.Logger) *APIKeyMiddleware {
	return &APIKeyMiddleware{verifier: verifier, logger: logger}
}

// RequireAPIKey verifies X-API-Key and scopes the request to the key's organization
func (m *APIKeyMiddleware) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		raw := r.Header.Get(APIKeyHeader)
		if raw == "" {
			_ = utils.WriteUnauthorized(w, "Missing API key")
			return
		}

		key, err := m.verifier.Verify(ctx, raw)
		if err != nil {
			if services.IsUnauthorizedError(err) {
				_ = utils.WriteUnauthorized(w, "Invalid API key")
				return
			}
			m.logger.Error("api key verification failed",
				zap.String("request_id", GetRequestIDFromContext(ctx)),
				zap.Error(err))
			_ = utils.WriteInternalServerError(w, "")
			return
		}

		ctx = WithAPIKey(ctx, key)
		ctx = WithOrgID(ctx, key.OrgID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireScope rejects keys that lack scope
func (m *APIKeyMiddleware) RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := GetAPIKeyFromContext(r.Context())
			if key == nil {
				_ = utils.WriteUnauthorized(w, "Missing API key")
				return
			}
			if !key.HasScope(scope) {
				_ = utils.WriteForbidden(w, "API key lacks scope "+scope)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
