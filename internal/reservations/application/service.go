package application

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/authz"
	medicineports "github.com/pharmaseek/marketplace/backend/internal/medicines/ports"
	pharmacyports "github.com/pharmaseek/marketplace/backend/internal/pharmacies/ports"
	"github.com/pharmaseek/marketplace/backend/internal/platform/apperror"
	"github.com/pharmaseek/marketplace/backend/internal/platform/eventbus"
	"github.com/pharmaseek/marketplace/backend/internal/platform/events"
	"github.com/pharmaseek/marketplace/backend/internal/platform/logger"
	"github.com/pharmaseek/marketplace/backend/internal/platform/metrics"
	"github.com/pharmaseek/marketplace/backend/internal/platform/postgres"
	"github.com/pharmaseek/marketplace/backend/internal/reservations/domain"
	"github.com/pharmaseek/marketplace/backend/internal/reservations/ports"
)

// Error definitions for service operations
var (
	ErrReservationNotFound = apperror.New(
		apperror.CodeNotFound,
		apperror.BusinessCodeReservationNotFound,
		"reservation not found",
		http.StatusNotFound,
	)

	ErrMedicineNotFound = apperror.New(
		apperror.CodeNotFound,
		apperror.BusinessCodeMedicineNotFound,
		"medicine not found",
		http.StatusNotFound,
	)

	ErrMedicineUnavailable = apperror.New(
		apperror.CodeConflict,
		apperror.BusinessCodeMedicineUnavailable,
		"medicine is not available for reservation",
		http.StatusConflict,
	)

	ErrDuplicatePendingReservation = apperror.New(
		apperror.CodeConflict,
		apperror.BusinessCodeDuplicateReservation,
		"a pending reservation for this medicine already exists",
		http.StatusConflict,
	)

	ErrNotAuthorized = apperror.New(
		apperror.CodeForbidden,
		apperror.BusinessCodePermissionDenied,
		"not authorized to manage this reservation",
		http.StatusForbidden,
	)

	ErrInvalidStatus = apperror.New(
		apperror.CodeValidationFailed,
		apperror.BusinessCodeInvalidStatus,
		"invalid reservation status",
		http.StatusBadRequest,
	)
)

// ReservationsService handles the reservation workflow. Creation runs its
// precondition checks and insert in one transaction; status changes are
// authorized per target status against the principal's relation to the
// reservation.
type ReservationsService struct {
	repo       ports.ReservationRepository
	medicines  medicineports.MedicineRepository
	pharmacies pharmacyports.PharmacyRepository
	txManager  postgres.TransactionManager
	eventBus   *eventbus.Bus
	metrics    *metrics.Metrics
	logger     logger.Logger
}

// NewReservationsService creates a new reservations service
func NewReservationsService(
	repo ports.ReservationRepository,
	medicines medicineports.MedicineRepository,
	pharmacies pharmacyports.PharmacyRepository,
	txManager postgres.TransactionManager,
	eventBus *eventbus.Bus,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *ReservationsService {
	return &ReservationsService{
		repo:       repo,
		medicines:  medicines,
		pharmacies: pharmacies,
		txManager:  txManager,
		eventBus:   eventBus,
		metrics:    metrics,
		logger:     logger,
	}
}

// CreateReservation reserves a medicine for the principal. The medicine
// must exist and be available, and the principal must not already hold a
// pending reservation for it; the checks and the insert are one
// transaction. The reservation records the medicine's pharmacy as it is
// at this moment.
func (s *ReservationsService) CreateReservation(ctx context.Context, principal authz.Principal, medicineID uuid.UUID) (*domain.Reservation, error) {
	if !authz.Allowed(principal.Role, authz.RelationNone, authz.ResourceReservation, authz.ActionCreate) {
		return nil, ErrNotAuthorized
	}

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		s.logger.Error(ctx, "failed to begin transaction", "error", err)
		return nil, s.internalError("failed to create reservation")
	}
	defer tx.Rollback(ctx)

	medicineRepo := s.medicines.WithTx(tx.Tx())
	reservationRepo := s.repo.WithTx(tx.Tx())

	medicine, err := medicineRepo.FindByID(ctx, medicineID)
	if err != nil {
		if errors.Is(err, medicineports.ErrMedicineNotFound) {
			return nil, ErrMedicineNotFound
		}
		s.logger.Error(ctx, "failed to find medicine", "error", err, "medicineID", medicineID)
		return nil, s.internalError("failed to create reservation")
	}

	if !medicine.Availability {
		return nil, ErrMedicineUnavailable
	}

	hasPending, err := reservationRepo.HasPendingForMedicine(ctx, principal.ID, medicineID)
	if err != nil {
		s.logger.Error(ctx, "failed to check pending reservations", "error", err, "medicineID", medicineID)
		return nil, s.internalError("failed to create reservation")
	}
	if hasPending {
		return nil, ErrDuplicatePendingReservation
	}

	reservation, err := domain.NewReservation(principal.ID, medicineID, medicine.PharmacyID)
	if err != nil {
		return nil, ErrInvalidStatus.WithDetails(err.Error())
	}

	if err := reservationRepo.Create(ctx, reservation); err != nil {
		s.logger.Error(ctx, "failed to create reservation", "error", err)
		return nil, s.internalError("failed to create reservation")
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error(ctx, "failed to commit reservation", "error", err)
		return nil, s.internalError("failed to create reservation")
	}

	s.metrics.ReservationsCreated.Inc()

	s.eventBus.Publish(ctx, eventbus.Event{
		Topic: events.ReservationCreatedTopic,
		Payload: events.ReservationCreatedEvent{
			ReservationID: reservation.ID,
			RequesterID:   reservation.RequesterID,
			MedicineID:    reservation.MedicineID,
			PharmacyID:    reservation.PharmacyID,
			OccurredAt:    time.Now(),
		},
	})

	return reservation, nil
}

// SetStatus applies a status transition. Who may move a reservation into a
// given status depends on the principal's relation: only the servicing
// pharmacy confirms, either side cancels, and only admins may set any
// other status. The current status places no restriction of its own.
func (s *ReservationsService) SetStatus(ctx context.Context, principal authz.Principal, id uuid.UUID, status domain.Status) (*domain.Reservation, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	reservation, err := s.getReservationByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rel, err := s.relationTo(ctx, principal, reservation)
	if err != nil {
		return nil, err
	}

	action, ok := actionForStatus(status)
	if !ok {
		// No non-admin rule targets this status; the admin bypass in the
		// policy is the only way through.
		if !principal.IsAdmin() {
			return nil, ErrNotAuthorized
		}
	} else if !authz.Allowed(principal.Role, rel, authz.ResourceReservation, action) {
		return nil, ErrNotAuthorized
	}

	oldStatus := reservation.Status
	if err := reservation.SetStatus(status); err != nil {
		return nil, ErrInvalidStatus
	}

	if err := s.repo.Update(ctx, reservation); err != nil {
		s.logger.Error(ctx, "failed to update reservation", "error", err, "reservationID", id)
		return nil, s.internalError("failed to update reservation")
	}

	s.metrics.ReservationTransitions.WithLabelValues(string(oldStatus), string(status)).Inc()

	s.eventBus.Publish(ctx, eventbus.Event{
		Topic: events.ReservationStatusChangedTopic,
		Payload: events.ReservationStatusChangedEvent{
			ReservationID: reservation.ID,
			ActorID:       principal.ID,
			OldStatus:     string(oldStatus),
			NewStatus:     string(status),
			OccurredAt:    time.Now(),
		},
	})

	return reservation, nil
}

// DeleteReservation permanently removes a reservation. Either participant
// may delete, regardless of status.
func (s *ReservationsService) DeleteReservation(ctx context.Context, principal authz.Principal, id uuid.UUID) error {
	reservation, err := s.getReservationByID(ctx, id)
	if err != nil {
		return err
	}

	rel, err := s.relationTo(ctx, principal, reservation)
	if err != nil {
		return err
	}
	if !authz.Allowed(principal.Role, rel, authz.ResourceReservation, authz.ActionDelete) {
		return ErrNotAuthorized
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error(ctx, "failed to delete reservation", "error", err, "reservationID", id)
		return s.internalError("failed to delete reservation")
	}

	s.eventBus.Publish(ctx, eventbus.Event{
		Topic: events.ReservationDeletedTopic,
		Payload: events.ReservationDeletedEvent{
			ReservationID: id,
			ActorID:       principal.ID,
			OccurredAt:    time.Now(),
		},
	})

	return nil
}

// GetReservation retrieves a reservation visible to the principal.
// Reservations are private to their participants.
func (s *ReservationsService) GetReservation(ctx context.Context, principal authz.Principal, id uuid.UUID) (*domain.Reservation, error) {
	reservation, err := s.getReservationByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rel, err := s.relationTo(ctx, principal, reservation)
	if err != nil {
		return nil, err
	}
	if rel == authz.RelationNone && !principal.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	return reservation, nil
}

// ListMyReservations retrieves the principal's own reservations
func (s *ReservationsService) ListMyReservations(ctx context.Context, principal authz.Principal, status *domain.Status, limit, offset int) ([]*domain.Reservation, int, error) {
	filter := ports.ListFilter{
		RequesterID: &principal.ID,
		Status:      status,
		Limit:       limit,
		Offset:      offset,
	}
	return s.list(ctx, filter)
}

// ListAllReservations retrieves reservations across all participants.
// Admin only.
func (s *ReservationsService) ListAllReservations(ctx context.Context, principal authz.Principal, status *domain.Status, limit, offset int) ([]*domain.Reservation, int, error) {
	if !principal.IsAdmin() {
		return nil, 0, ErrNotAuthorized
	}

	filter := ports.ListFilter{
		Status: status,
		Limit:  limit,
		Offset: offset,
	}
	return s.list(ctx, filter)
}

// ListPharmacyReservations retrieves reservations serviced by a pharmacy.
// Only the pharmacy's owner or an admin may see them.
func (s *ReservationsService) ListPharmacyReservations(ctx context.Context, principal authz.Principal, pharmacyID uuid.UUID, status *domain.Status, limit, offset int) ([]*domain.Reservation, int, error) {
	if !principal.IsAdmin() {
		ownerID, err := s.pharmacies.GetOwner(ctx, pharmacyID)
		if err != nil {
			if errors.Is(err, pharmacyports.ErrPharmacyNotFound) {
				return nil, 0, ErrNotAuthorized
			}
			s.logger.Error(ctx, "failed to resolve pharmacy owner", "error", err, "pharmacyID", pharmacyID)
			return nil, 0, s.internalError("failed to list reservations")
		}
		if ownerID != principal.ID {
			return nil, 0, ErrNotAuthorized
		}
	}

	filter := ports.ListFilter{
		PharmacyID: &pharmacyID,
		Status:     status,
		Limit:      limit,
		Offset:     offset,
	}
	return s.list(ctx, filter)
}

// Private helpers

// actionForStatus maps a target status to the policy action gating it.
// Statuses without a mapping have no non-admin rule at all.
func actionForStatus(status domain.Status) (authz.Action, bool) {
	switch status {
	case domain.StatusConfirmed:
		return authz.ActionConfirm, true
	case domain.StatusCancelled:
		return authz.ActionCancel, true
	}
	return "", false
}

// relationTo resolves the principal's relation to a reservation. The
// servicing side is resolved against the pharmacy's current persisted
// owner; if the snapshotted pharmacy no longer exists, nobody holds the
// servicing relation.
func (s *ReservationsService) relationTo(ctx context.Context, principal authz.Principal, reservation *domain.Reservation) (authz.Relation, error) {
	if reservation.RequesterID == principal.ID {
		return authz.RelationRequester, nil
	}

	ownerID, err := s.pharmacies.GetOwner(ctx, reservation.PharmacyID)
	if err != nil {
		if errors.Is(err, pharmacyports.ErrPharmacyNotFound) {
			return authz.RelationNone, nil
		}
		s.logger.Error(ctx, "failed to resolve pharmacy owner", "error", err, "pharmacyID", reservation.PharmacyID)
		return authz.RelationNone, s.internalError("failed to resolve ownership")
	}

	if ownerID == principal.ID {
		return authz.RelationServicingPharmacy, nil
	}
	return authz.RelationNone, nil
}

func (s *ReservationsService) list(ctx context.Context, filter ports.ListFilter) ([]*domain.Reservation, int, error) {
	reservations, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error(ctx, "failed to list reservations", "error", err)
		return nil, 0, s.internalError("failed to list reservations")
	}

	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.logger.Error(ctx, "failed to count reservations", "error", err)
		return nil, 0, s.internalError("failed to list reservations")
	}

	return reservations, count, nil
}

func (s *ReservationsService) getReservationByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrReservationNotFound) {
			return nil, ErrReservationNotFound
		}
		s.logger.Error(ctx, "failed to find reservation", "error", err, "reservationID", id)
		return nil, s.internalError("failed to retrieve reservation")
	}
	return reservation, nil
}

func (s *ReservationsService) internalError(msg string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInternalError,
		apperror.BusinessCodeGeneral,
		msg,
		http.StatusInternalServerError,
	)
}
