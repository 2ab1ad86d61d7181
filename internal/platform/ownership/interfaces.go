package ownership

import (
	"context"

	"github.com/google/uuid"
)

// Checker defines the interface for checking resource ownership.
// Each module with owner-gated resources (pharmacies, medicines) implements
// this against its own persisted foreign-key chain.
type Checker interface {
	// CheckOwnership verifies if a user owns a specific resource
	CheckOwnership(ctx context.Context, userID uuid.UUID, resourceID uuid.UUID) (bool, error)
}

// Registry holds ownership checkers for different resource types.
// The REST authorization middleware uses it to gate owner-only mutations
// before the request reaches a handler.
type Registry interface {
	// RegisterChecker registers an ownership checker for a resource type
	RegisterChecker(resourceType string, checker Checker)

	// GetChecker retrieves the ownership checker for a resource type
	GetChecker(resourceType string) (Checker, bool)

	// CheckOwnership checks ownership for any registered resource type
	CheckOwnership(ctx context.Context, userID uuid.UUID, resourceType string, resourceID uuid.UUID) (bool, error)
}
