package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/medicines/ports"
	pharmacyports "github.com/pharmaseek/marketplace/backend/internal/pharmacies/ports"
	"github.com/pharmaseek/marketplace/backend/internal/platform/logger"
	"github.com/pharmaseek/marketplace/backend/internal/platform/ownership"
)

// MedicineOwnershipChecker checks ownership of medicines transitively:
// medicine -> pharmacy -> owner.
type MedicineOwnershipChecker struct {
	medicines  ports.MedicineRepository
	pharmacies pharmacyports.PharmacyRepository
	logger     logger.Logger
}

// NewMedicineOwnershipChecker creates a new medicine ownership checker
func NewMedicineOwnershipChecker(
	medicines ports.MedicineRepository,
	pharmacies pharmacyports.PharmacyRepository,
	logger logger.Logger,
) *MedicineOwnershipChecker {
	return &MedicineOwnershipChecker{
		medicines:  medicines,
		pharmacies: pharmacies,
		logger:     logger,
	}
}

// CheckOwnership checks if a user owns the pharmacy a medicine belongs to.
// Implements the ownership.Checker interface.
func (c *MedicineOwnershipChecker) CheckOwnership(ctx context.Context, userID uuid.UUID, resourceID uuid.UUID) (bool, error) {
	pharmacyID, err := c.medicines.GetPharmacy(ctx, resourceID)
	if err != nil {
		if errors.Is(err, ports.ErrMedicineNotFound) {
			return false, nil
		}
		c.logger.Error(ctx, "failed to get medicine pharmacy", "error", err, "medicineID", resourceID)
		return false, err
	}

	ownerID, err := c.pharmacies.GetOwner(ctx, pharmacyID)
	if err != nil {
		if errors.Is(err, pharmacyports.ErrPharmacyNotFound) {
			return false, nil
		}
		c.logger.Error(ctx, "failed to get pharmacy owner", "error", err, "pharmacyID", pharmacyID)
		return false, err
	}

	return ownerID == userID, nil
}

// RegisterMedicineOwnership registers the medicine ownership checker with the registry
func RegisterMedicineOwnership(
	registry ownership.Registry,
	medicines ports.MedicineRepository,
	pharmacies pharmacyports.PharmacyRepository,
	logger logger.Logger,
) {
	checker := NewMedicineOwnershipChecker(medicines, pharmacies, logger)
	registry.RegisterChecker("medicines", checker)
}
