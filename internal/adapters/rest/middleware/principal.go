package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/pharmaseek/marketplace/backend/internal/authz"
	"github.com/pharmaseek/marketplace/backend/internal/platform/logger"
	"github.com/pharmaseek/marketplace/backend/internal/users/ports"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// PrincipalKey is the context key for the resolved principal
	PrincipalKey contextKey = "principal"
)

// PrincipalResolver bridges the external authentication provider and our
// internal domain. It takes the verified subject claim (set by the JWT
// middleware upstream) and resolves it to the internal user, placing an
// authz.Principal in the context so all downstream services operate on the
// canonical user ID and role.
//
// NOTE: This middleware introduces a database query into the hot path of
// every authenticated request. A custom claim carrying the internal user ID
// would remove the lookup, at the cost of coupling token issuance to our
// user table.
type PrincipalResolver struct {
	userRepo ports.UserRepository
	logger   logger.Logger
}

// NewPrincipalResolver creates a new principal resolver middleware
func NewPrincipalResolver(userRepo ports.UserRepository, logger logger.Logger) *PrincipalResolver {
	return &PrincipalResolver{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Middleware resolves the JWT subject to an internal principal.
// It must be placed AFTER the JWT middleware.
func (a *PrincipalResolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		subject, ok := GetJWTSubject(ctx)
		if !ok {
			a.logger.Warn(ctx, "subject not found in context")
			WriteJSONError(w, ErrorCodeUnauthorized, "Authentication required", http.StatusUnauthorized)
			return
		}

		user, err := a.userRepo.FindBySubject(ctx, subject)
		if err != nil {
			if errors.Is(err, ports.ErrUserNotFound) {
				WriteJSONError(w, ErrorCodeNotFound, "User profile not found", http.StatusNotFound)
				return
			}
			a.logger.Error(ctx, "failed to resolve principal",
				"subject", subject,
				"error", err,
			)
			WriteJSONError(w, ErrorCodeInternalServerError, "Failed to resolve user", http.StatusInternalServerError)
			return
		}

		principal := authz.Principal{
			ID:   user.ID,
			Role: user.Role,
		}
		ctx = SetPrincipal(ctx, principal)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPrincipal is a helper function to get the principal from the request context
func GetPrincipal(ctx context.Context) (authz.Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(authz.Principal)
	return principal, ok
}

// SetPrincipal is a helper function to set the principal in the request context
func SetPrincipal(ctx context.Context, principal authz.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, principal)
}
