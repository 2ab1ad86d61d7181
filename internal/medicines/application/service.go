package application

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pharmaseek/marketplace/backend/internal/authz"
	"github.com/pharmaseek/marketplace/backend/internal/medicines/domain"
	"github.com/pharmaseek/marketplace/backend/internal/medicines/ports"
	pharmacyports "github.com/pharmaseek/marketplace/backend/internal/pharmacies/ports"
	"github.com/pharmaseek/marketplace/backend/internal/platform/apperror"
	"github.com/pharmaseek/marketplace/backend/internal/platform/eventbus"
	"github.com/pharmaseek/marketplace/backend/internal/platform/events"
	"github.com/pharmaseek/marketplace/backend/internal/platform/logger"
	"github.com/shopspring/decimal"
)

// Error definitions for service operations
var (
	ErrMedicineNotFound = apperror.New(
		apperror.CodeNotFound,
		apperror.BusinessCodeMedicineNotFound,
		"medicine not found",
		http.StatusNotFound,
	)

	ErrPharmacyNotFound = apperror.New(
		apperror.CodeNotFound,
		apperror.BusinessCodePharmacyNotFound,
		"pharmacy not found",
		http.StatusNotFound,
	)

	ErrInvalidMedicineData = apperror.New(
		apperror.CodeValidationFailed,
		apperror.BusinessCodeInvalidFormat,
		"invalid medicine data",
		http.StatusBadRequest,
	)

	ErrNotMedicineOwner = apperror.New(
		apperror.CodeForbidden,
		apperror.BusinessCodePermissionDenied,
		"not authorized to manage this medicine",
		http.StatusForbidden,
	)
)

// MedicinesService handles medicine-related business logic. Ownership of a
// medicine is resolved transitively through its pharmacy's current
// persisted owner on every mutating call.
type MedicinesService struct {
	repo       ports.MedicineRepository
	pharmacies pharmacyports.PharmacyRepository
	eventBus   *eventbus.Bus
	logger     logger.Logger
	sanitizer  *bluemonday.Policy
}

// NewMedicinesService creates a new medicines service
func NewMedicinesService(
	repo ports.MedicineRepository,
	pharmacies pharmacyports.PharmacyRepository,
	eventBus *eventbus.Bus,
	logger logger.Logger,
) *MedicinesService {
	return &MedicinesService{
		repo:       repo,
		pharmacies: pharmacies,
		eventBus:   eventBus,
		logger:     logger,
		sanitizer:  bluemonday.UGCPolicy(),
	}
}

// CreateMedicineParams contains parameters for listing a new medicine
type CreateMedicineParams struct {
	PharmacyID  uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
}

// CreateMedicine lists a new medicine under a pharmacy the principal owns
func (s *MedicinesService) CreateMedicine(ctx context.Context, principal authz.Principal, params CreateMedicineParams) (*domain.Medicine, error) {
	ownerID, err := s.pharmacies.GetOwner(ctx, params.PharmacyID)
	if err != nil {
		if errors.Is(err, pharmacyports.ErrPharmacyNotFound) {
			return nil, ErrPharmacyNotFound
		}
		s.logger.Error(ctx, "failed to resolve pharmacy owner", "error", err, "pharmacyID", params.PharmacyID)
		return nil, s.internalError("failed to create medicine")
	}

	rel := authz.RelationNone
	if ownerID == principal.ID {
		rel = authz.RelationOwner
	}
	if !authz.Allowed(principal.Role, rel, authz.ResourceMedicine, authz.ActionCreate) {
		return nil, ErrNotMedicineOwner
	}

	sanitized := s.sanitizer.Sanitize(params.Description)

	medicine, err := domain.NewMedicine(params.PharmacyID, params.Name, sanitized, params.Price)
	if err != nil {
		return nil, ErrInvalidMedicineData.WithDetails(err.Error())
	}

	if err := s.repo.Create(ctx, medicine); err != nil {
		s.logger.Error(ctx, "failed to create medicine", "error", err)
		return nil, s.internalError("failed to create medicine")
	}

	s.eventBus.Publish(ctx, eventbus.Event{
		Topic: events.MedicineCreatedTopic,
		Payload: events.MedicineCreatedEvent{
			MedicineID: medicine.ID,
			PharmacyID: medicine.PharmacyID,
			Name:       medicine.Name,
			OccurredAt: time.Now(),
		},
	})

	return medicine, nil
}

// UpdateMedicineParams contains parameters for updating a medicine
type UpdateMedicineParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
}

// UpdateMedicine updates an existing medicine
func (s *MedicinesService) UpdateMedicine(ctx context.Context, principal authz.Principal, id uuid.UUID, params UpdateMedicineParams) (*domain.Medicine, error) {
	medicine, err := s.getMedicineByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rel, err := s.relationTo(ctx, principal, medicine)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(principal.Role, rel, authz.ResourceMedicine, authz.ActionUpdate) {
		return nil, ErrNotMedicineOwner
	}

	sanitized := s.sanitizer.Sanitize(params.Description)

	if err := medicine.UpdateDetails(params.Name, sanitized, params.Price); err != nil {
		return nil, ErrInvalidMedicineData.WithDetails(err.Error())
	}

	if err := s.repo.Update(ctx, medicine); err != nil {
		s.logger.Error(ctx, "failed to update medicine", "error", err, "medicineID", id)
		return nil, s.internalError("failed to update medicine")
	}

	return medicine, nil
}

// SetAvailability toggles the availability flag. This is the only path
// that changes availability; reservation transitions never touch it.
func (s *MedicinesService) SetAvailability(ctx context.Context, principal authz.Principal, id uuid.UUID, available bool) (*domain.Medicine, error) {
	medicine, err := s.getMedicineByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rel, err := s.relationTo(ctx, principal, medicine)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(principal.Role, rel, authz.ResourceMedicine, authz.ActionUpdate) {
		return nil, ErrNotMedicineOwner
	}

	medicine.SetAvailability(available)

	if err := s.repo.Update(ctx, medicine); err != nil {
		s.logger.Error(ctx, "failed to update availability", "error", err, "medicineID", id)
		return nil, s.internalError("failed to update medicine")
	}

	s.eventBus.Publish(ctx, eventbus.Event{
		Topic: events.MedicineAvailabilityChangedTopic,
		Payload: events.MedicineAvailabilityChangedEvent{
			MedicineID: medicine.ID,
			ActorID:    principal.ID,
			Available:  available,
			OccurredAt: time.Now(),
		},
	})

	return medicine, nil
}

// DeleteMedicine removes a medicine. Existing reservations keep their
// medicine reference; no cascade happens here.
func (s *MedicinesService) DeleteMedicine(ctx context.Context, principal authz.Principal, id uuid.UUID) error {
	medicine, err := s.getMedicineByID(ctx, id)
	if err != nil {
		return err
	}

	rel, err := s.relationTo(ctx, principal, medicine)
	if err != nil {
		return err
	}
	if !authz.Allowed(principal.Role, rel, authz.ResourceMedicine, authz.ActionDelete) {
		return ErrNotMedicineOwner
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error(ctx, "failed to delete medicine", "error", err, "medicineID", id)
		return s.internalError("failed to delete medicine")
	}

	s.eventBus.Publish(ctx, eventbus.Event{
		Topic: events.MedicineDeletedTopic,
		Payload: events.MedicineDeletedEvent{
			MedicineID: id,
			ActorID:    principal.ID,
			OccurredAt: time.Now(),
		},
	})

	return nil
}

// GetMedicine retrieves a medicine by ID
func (s *MedicinesService) GetMedicine(ctx context.Context, id uuid.UUID) (*domain.Medicine, error) {
	return s.getMedicineByID(ctx, id)
}

// ListMedicines retrieves medicines matching the filter with a total count
func (s *MedicinesService) ListMedicines(ctx context.Context, filter ports.ListFilter) ([]*domain.Medicine, int, error) {
	medicines, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error(ctx, "failed to list medicines", "error", err)
		return nil, 0, s.internalError("failed to list medicines")
	}

	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.logger.Error(ctx, "failed to count medicines", "error", err)
		return nil, 0, s.internalError("failed to list medicines")
	}

	return medicines, count, nil
}

// Private helpers

// relationTo resolves the principal's relation to a medicine through the
// pharmacy's current persisted owner, never a cached value.
func (s *MedicinesService) relationTo(ctx context.Context, principal authz.Principal, medicine *domain.Medicine) (authz.Relation, error) {
	ownerID, err := s.pharmacies.GetOwner(ctx, medicine.PharmacyID)
	if err != nil {
		if errors.Is(err, pharmacyports.ErrPharmacyNotFound) {
			// Orphaned medicine; nobody but an admin can manage it.
			return authz.RelationNone, nil
		}
		s.logger.Error(ctx, "failed to resolve pharmacy owner", "error", err, "pharmacyID", medicine.PharmacyID)
		return authz.RelationNone, s.internalError("failed to resolve ownership")
	}

	if ownerID == principal.ID {
		return authz.RelationOwner, nil
	}
	return authz.RelationNone, nil
}

func (s *MedicinesService) getMedicineByID(ctx context.Context, id uuid.UUID) (*domain.Medicine, error) {
	medicine, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrMedicineNotFound) {
			return nil, ErrMedicineNotFound
		}
		s.logger.Error(ctx, "failed to find medicine", "error", err, "medicineID", id)
		return nil, s.internalError("failed to retrieve medicine")
	}
	return medicine, nil
}

func (s *MedicinesService) internalError(msg string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInternalError,
		apperror.BusinessCodeGeneral,
		msg,
		http.StatusInternalServerError,
	)
}
