package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/photoproos/platform/clerk"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// TokenValidator verifies a Clerk session token
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*clerk.Session, error)
}

// UserResolver maps a Clerk subject to its user row
type UserResolver interface {
	ResolveUser(ctx context.Context, clerkUserID string) (*models.User, error)
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	validator TokenValidator
	users     UserResolver
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator, users UserResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		users:     users,
		logger:    logger,
	}
}

// sessionCookieName is the cookie Clerk's frontend SDK sets
const sessionCookieName = "__session"

// RequireAuth requires a valid Clerk session token. The user row is attached
// when one exists; a signed-in person who has not created an organization yet
// passes with a session only.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := extractToken(r)
		if token == "" {
			m.logger.Debug("missing token", zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		session, err := m.validator.ValidateToken(ctx, token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}
		ctx = WithSession(ctx, session)

		user, err := m.users.ResolveUser(ctx, session.UserID)
		switch {
		case err == nil:
			if session.SuperAdmin {
				user.IsSuperAdmin = true
			}
			ctx = WithUser(ctx, user)
		case services.IsNotFoundError(err):
			m.logger.Debug("session without user row",
				zap.String("request_id", requestID),
				zap.String("clerk_user_id", session.UserID))
		default:
			m.logger.Error("failed to resolve user",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteInternalServerError(w, "Failed to load user")
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireMembership requires a user row and scopes the request to its organization.
// It must run after RequireAuth.
func (m *AuthMiddleware) RequireMembership(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		user := GetUserFromContext(ctx)
		if user == nil {
			if GetSessionFromContext(ctx) == nil {
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}
			_ = utils.WriteForbidden(w, "Create or join an organization first")
			return
		}

		ctx = WithOrgID(ctx, user.OrgID)
		m.logger.Debug("tenant resolved",
			zap.String("request_id", GetRequestIDFromContext(ctx)),
			zap.String("org_id", user.OrgID.String()),
			zap.String("user_id", user.ID.String()))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole allows users holding one of roles. Super admins always pass.
func (m *AuthMiddleware) RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r.Context())
			if user == nil {
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}

			if !user.IsSuperAdmin && !hasRole(user.Role, roles) {
				m.logger.Warn("insufficient permissions",
					zap.String("request_id", GetRequestIDFromContext(r.Context())),
					zap.String("user_id", user.ID.String()),
					zap.String("role", string(user.Role)))
				_ = utils.WriteForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperAdmin restricts a route to the platform console
func (m *AuthMiddleware) RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil {
			_ = utils.WriteUnauthorized(w, "Authentication required")
			return
		}
		if !user.IsSuperAdmin {
			_ = utils.WriteForbidden(w, "Super admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func hasRole(role models.UserRole, allowed []models.UserRole) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// extractToken reads the Bearer token, falling back to the __session cookie
func extractToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
