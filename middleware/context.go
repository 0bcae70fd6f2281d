package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/photoproos/platform/clerk"
	"github.com/photoproos/platform/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	// SessionKey is the context key for the verified Clerk session
	SessionKey contextKey = "session"

	// UserKey is the context key for the resolved user row
	UserKey contextKey = "user"

	// OrgIDKey is the context key for organization ID
	OrgIDKey contextKey = "org_id"

	// APIKeyKey is the context key for the key that authenticated an external request
	APIKeyKey contextKey = "api_key"
)

// GetRequestIDFromContext retrieves the request ID set by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// GetSessionFromContext retrieves the Clerk session from context
func GetSessionFromContext(ctx context.Context) *clerk.Session {
	if session, ok := ctx.Value(SessionKey).(*clerk.Session); ok {
		return session
	}
	return nil
}

// WithSession adds a Clerk session to the context
func WithSession(ctx context.Context, session *clerk.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// GetUserFromContext retrieves the authenticated user from context
func GetUserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(UserKey).(*models.User); ok {
		return user
	}
	return nil
}

// WithUser adds the authenticated user to the context
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetOrgIDFromContext retrieves the organization ID from context
func GetOrgIDFromContext(ctx context.Context) uuid.UUID {
	if orgID, ok := ctx.Value(OrgIDKey).(uuid.UUID); ok {
		return orgID
	}
	return uuid.Nil
}

// WithOrgID adds an organization ID to the context
func WithOrgID(ctx context.Context, orgID uuid.UUID) context.Context {
	return context.WithValue(ctx, OrgIDKey, orgID)
}

// GetAPIKeyFromContext retrieves the API key of an external request
func GetAPIKeyFromContext(ctx context.Context) *models.APIKey {
	if key, ok := ctx.Value(APIKeyKey).(*models.APIKey); ok {
		return key
	}
	return nil
}

// WithAPIKey adds the verified API key to the context
func WithAPIKey(ctx context.Context, key *models.APIKey) context.Context {
	return context.WithValue(ctx, APIKeyKey, key)
}
