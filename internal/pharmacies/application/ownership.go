package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/pharmacies/ports"
	"github.com/pharmaseek/marketplace/backend/internal/platform/logger"
	"github.com/pharmaseek/marketplace/backend/internal/platform/ownership"
)

// PharmacyOwnershipChecker checks ownership of pharmacies.
// It depends directly on the repository, not the service, so every check
// reads the current persisted owner.
type PharmacyOwnershipChecker struct {
	repo   ports.PharmacyRepository
	logger logger.Logger
}

// NewPharmacyOwnershipChecker creates a new pharmacy ownership checker
func NewPharmacyOwnershipChecker(repo ports.PharmacyRepository, logger logger.Logger) *PharmacyOwnershipChecker {
	return &PharmacyOwnershipChecker{
		repo:   repo,
		logger: logger,
	}
}

// CheckOwnership checks if a user owns a specific pharmacy.
// Implements the ownership.Checker interface.
func (c *PharmacyOwnershipChecker) CheckOwnership(ctx context.Context, userID uuid.UUID, resourceID uuid.UUID) (bool, error) {
	ownerID, err := c.repo.GetOwner(ctx, resourceID)
	if err != nil {
		if errors.Is(err, ports.ErrPharmacyNotFound) {
			// Pharmacy doesn't exist, so user doesn't own it
			return false, nil
		}
		c.logger.Error(ctx, "failed to get pharmacy owner", "error", err, "pharmacyID", resourceID)
		return false, err
	}

	return ownerID == userID, nil
}

// RegisterPharmacyOwnership registers the pharmacy ownership checker with the registry
func RegisterPharmacyOwnership(registry ownership.Registry, repo ports.PharmacyRepository, logger logger.Logger) {
	checker := NewPharmacyOwnershipChecker(repo, logger)
	registry.RegisterChecker("pharmacies", checker)
}
