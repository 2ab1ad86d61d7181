package application

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/authz"
	"github.com/pharmaseek/marketplace/backend/internal/pharmacies/domain"
	"github.com/pharmaseek/marketplace/backend/internal/pharmacies/ports"
	"github.com/pharmaseek/marketplace/backend/internal/platform/apperror"
	"github.com/pharmaseek/marketplace/backend/internal/platform/eventbus"
	"github.com/pharmaseek/marketplace/backend/internal/platform/events"
	"github.com/pharmaseek/marketplace/backend/internal/platform/logger"
)

// Error definitions for service operations
var (
	ErrPharmacyNotFound = apperror.New(
		apperror.CodeNotFound,
		apperror.BusinessCodePharmacyNotFound,
		"pharmacy not found",
		http.StatusNotFound,
	)

	ErrAlreadyHasPharmacy = apperror.New(
		apperror.CodeConflict,
		apperror.BusinessCodePharmacyExists,
		"user already has a pharmacy",
		http.StatusConflict,
	)

	ErrDuplicateLicense = apperror.New(
		apperror.CodeConflict,
		apperror.BusinessCodeDuplicateLicense,
		"license already registered",
		http.StatusConflict,
	)

	ErrInvalidPharmacyData = apperror.New(
		apperror.CodeValidationFailed,
		apperror.BusinessCodeInvalidFormat,
		"invalid pharmacy data",
		http.StatusBadRequest,
	)

	ErrNotPharmacyOwner = apperror.New(
		apperror.CodeForbidden,
		apperror.BusinessCodePermissionDenied,
		"not authorized to manage this pharmacy",
		http.StatusForbidden,
	)
)

// PharmaciesService handles pharmacy-related business logic
type PharmaciesService struct {
	repo     ports.PharmacyRepository
	eventBus *eventbus.Bus
	logger   logger.Logger
}

// NewPharmaciesService creates a new pharmacies service
func NewPharmaciesService(
	repo ports.PharmacyRepository,
	eventBus *eventbus.Bus,
	logger logger.Logger,
) *PharmaciesService {
	return &PharmaciesService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreatePharmacyParams contains parameters for registering a pharmacy
type CreatePharmacyParams struct {
	Name    string
	Address string
	License string
}

// CreatePharmacy registers a new pharmacy owned by the principal. A user
// may own at most one pharmacy; the license must be globally unique.
func (s *PharmaciesService) CreatePharmacy(ctx context.Context, principal authz.Principal, params CreatePharmacyParams) (*domain.Pharmacy, error) {
	if !authz.Allowed(principal.Role, authz.RelationNone, authz.ResourcePharmacy, authz.ActionCreate) {
		return nil, ErrNotPharmacyOwner
	}

	_, err := s.repo.FindByOwner(ctx, principal.ID)
	if err == nil {
		return nil, ErrAlreadyHasPharmacy
	}
	if !errors.Is(err, ports.ErrPharmacyNotFound) {
		s.logger.Error(ctx, "failed to check existing pharmacy", "error", err, "ownerID", principal.ID)
		return nil, s.internalError("failed to create pharmacy")
	}

	pharmacy, err := domain.NewPharmacy(principal.ID, params.Name, params.Address, params.License)
	if err != nil {
		return nil, ErrInvalidPharmacyData.WithDetails(err.Error())
	}

	// Advisory pre-check; the store's unique constraint is authoritative.
	exists, err := s.repo.LicenseExists(ctx, pharmacy.License)
	if err != nil {
		s.logger.Error(ctx, "failed to check license", "error", err, "license", pharmacy.License)
		return nil, s.internalError("failed to create pharmacy")
	}
	if exists {
		return nil, ErrDuplicateLicense
	}

	if err := s.repo.Create(ctx, pharmacy); err != nil {
		if errors.Is(err, ports.ErrDuplicateLicense) {
			return nil, ErrDuplicateLicense
		}
		s.logger.Error(ctx, "failed to create pharmacy", "error", err)
		return nil, s.internalError("failed to create pharmacy")
	}

	s.eventBus.Publish(ctx, eventbus.Event{
		Topic: events.PharmacyCreatedTopic,
		Payload: events.PharmacyCreatedEvent{
			PharmacyID: pharmacy.ID,
			OwnerID:    pharmacy.OwnerID,
			License:    pharmacy.License,
			OccurredAt: time.Now(),
		},
	})

	return pharmacy, nil
}

// UpdatePharmacyParams contains parameters for updating a pharmacy
type UpdatePharmacyParams struct {
	Name    string
	Address string
}

// UpdatePharmacy updates a pharmacy's presentation details. Ownership is
// re-derived from the current persisted owner on every call.
func (s *PharmaciesService) UpdatePharmacy(ctx context.Context, principal authz.Principal, id uuid.UUID, params UpdatePharmacyParams) (*domain.Pharmacy, error) {
	pharmacy, err := s.getPharmacyByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.Allowed(principal.Role, s.relationTo(principal, pharmacy), authz.ResourcePharmacy, authz.ActionUpdate) {
		return nil, ErrNotPharmacyOwner
	}

	if err := pharmacy.UpdateDetails(params.Name, params.Address); err != nil {
		return nil, ErrInvalidPharmacyData.WithDetails(err.Error())
	}

	if err := s.repo.Update(ctx, pharmacy); err != nil {
		s.logger.Error(ctx, "failed to update pharmacy", "error", err, "pharmacyID", id)
		return nil, s.internalError("failed to update pharmacy")
	}

	return pharmacy, nil
}

// SetVerified toggles the verification flag. Only the owner or an admin
// may do this.
func (s *PharmaciesService) SetVerified(ctx context.Context, principal authz.Principal, id uuid.UUID, verified bool) (*domain.Pharmacy, error) {
	pharmacy, err := s.getPharmacyByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.Allowed(principal.Role, s.relationTo(principal, pharmacy), authz.ResourcePharmacy, authz.ActionVerify) {
		return nil, ErrNotPharmacyOwner
	}

	pharmacy.SetVerified(verified)

	if err := s.repo.Update(ctx, pharmacy); err != nil {
		s.logger.Error(ctx, "failed to update verification", "error", err, "pharmacyID", id)
		return nil, s.internalError("failed to update pharmacy")
	}

	s.eventBus.Publish(ctx, eventbus.Event{
		Topic: events.PharmacyVerifiedTopic,
		Payload: events.PharmacyVerifiedEvent{
			PharmacyID: pharmacy.ID,
			ActorID:    principal.ID,
			Verified:   verified,
			OccurredAt: time.Now(),
		},
	})

	return pharmacy, nil
}

// DeletePharmacy removes a pharmacy. Existing reservations keep their
// snapshotted pharmacy reference; no cascade happens here.
func (s *PharmaciesService) DeletePharmacy(ctx context.Context, principal authz.Principal, id uuid.UUID) error {
	pharmacy, err := s.getPharmacyByID(ctx, id)
	if err != nil {
		return err
	}

	if !authz.Allowed(principal.Role, s.relationTo(principal, pharmacy), authz.ResourcePharmacy, authz.ActionDelete) {
		return ErrNotPharmacyOwner
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error(ctx, "failed to delete pharmacy", "error", err, "pharmacyID", id)
		return s.internalError("failed to delete pharmacy")
	}

	s.eventBus.Publish(ctx, eventbus.Event{
		Topic: events.PharmacyDeletedTopic,
		Payload: events.PharmacyDeletedEvent{
			PharmacyID: id,
			ActorID:    principal.ID,
			OccurredAt: time.Now(),
		},
	})

	return nil
}

// GetPharmacy retrieves a pharmacy by ID
func (s *PharmaciesService) GetPharmacy(ctx context.Context, id uuid.UUID) (*domain.Pharmacy, error) {
	return s.getPharmacyByID(ctx, id)
}

// ListPharmacies retrieves pharmacies matching the filter with a total count
func (s *PharmaciesService) ListPharmacies(ctx context.Context, filter ports.ListFilter) ([]*domain.Pharmacy, int, error) {
	pharmacies, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error(ctx, "failed to list pharmacies", "error", err)
		return nil, 0, s.internalError("failed to list pharmacies")
	}

	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.logger.Error(ctx, "failed to count pharmacies", "error", err)
		return nil, 0, s.internalError("failed to list pharmacies")
	}

	return pharmacies, count, nil
}

// Private helpers

func (s *PharmaciesService) relationTo(principal authz.Principal, pharmacy *domain.Pharmacy) authz.Relation {
	if pharmacy.OwnerID == principal.ID {
		return authz.RelationOwner
	}
	return authz.RelationNone
}

func (s *PharmaciesService) getPharmacyByID(ctx context.Context, id uuid.UUID) (*domain.Pharmacy, error) {
	pharmacy, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrPharmacyNotFound) {
			return nil, ErrPharmacyNotFound
		}
		s.logger.Error(ctx, "failed to find pharmacy", "error", err, "pharmacyID", id)
		return nil, s.internalError("failed to retrieve pharmacy")
	}
	return pharmacy, nil
}

func (s *PharmaciesService) internalError(msg string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInternalError,
		apperror.BusinessCodeGeneral,
		msg,
		http.StatusInternalServerError,
	)
}
