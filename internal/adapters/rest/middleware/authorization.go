package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/platform/logger"
	"github.com/pharmaseek/marketplace/backend/internal/platform/ownership"
)

// AuthorizationMiddleware provides ownership-based authorization for HTTP
// handlers. It consults the ownership registry for the resource type named
// in the route; admins bypass the check entirely. Services still re-derive
// ownership themselves, so this is a cheap early rejection, not the last
// line of defense.
type AuthorizationMiddleware struct {
	registry ownership.Registry
	logger   logger.Logger
}

// NewAuthorizationMiddleware creates a new authorization middleware
func NewAuthorizationMiddleware(registry ownership.Registry, logger logger.Logger) *AuthorizationMiddleware {
	return &AuthorizationMiddleware{
		registry: registry,
		logger:   logger,
	}
}

// RequireOwnership creates a middleware that only lets resource owners (or
// admins) through. The resource ID is read from the named URL parameter.
func (m *AuthorizationMiddleware) RequireOwnership(resourceType, urlParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			principal, ok := GetPrincipal(ctx)
			if !ok {
				m.logger.Warn(ctx, "principal not found in context")
				WriteJSONError(w, ErrorCodeUnauthorized, "Authentication required", http.StatusUnauthorized)
				return
			}

			if principal.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			resourceIDStr := chi.URLParam(r, urlParam)
			if resourceIDStr == "" {
				m.logger.Warn(ctx, "resource ID not found in URL", "param", urlParam)
				WriteJSONError(w, ErrorCodeValidationError, "Invalid request parameters", http.StatusBadRequest)
				return
			}

			resourceID, err := uuid.Parse(resourceIDStr)
			if err != nil {
				m.logger.Warn(ctx, "invalid resource ID",
					"resource_id", resourceIDStr,
					"error", err,
				)
				WriteJSONError(w, ErrorCodeValidationError, "Invalid request parameters", http.StatusBadRequest)
				return
			}

			owns, err := m.registry.CheckOwnership(ctx, principal.ID, resourceType, resourceID)
			if err != nil {
				m.logger.Error(ctx, "failed to check ownership",
					"user_id", principal.ID,
					"resource_type", resourceType,
					"resource_id", resourceID,
					"error", err,
				)
				WriteJSONError(w, ErrorCodeInternalServerError, "Failed to check permissions", http.StatusInternalServerError)
				return
			}

			if !owns {
				m.logger.Warn(ctx, "ownership denied",
					"user_id", principal.ID,
					"resource_type", resourceType,
					"resource_id", resourceID,
				)
				WriteJSONError(w, ErrorCodeForbidden, "Insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
