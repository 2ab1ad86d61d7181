package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pharmaseek/marketplace/backend/internal/reservations/domain"
)

// Repository errors - the canonical errors repository implementations
// should return. The PostgreSQL implementation translates pgx.ErrNoRows
// to these.
var (
	// ErrReservationNotFound is returned when a reservation cannot be found
	ErrReservationNotFound = errors.New("reservation not found")
)

// ListFilter contains filtering and pagination options for listing reservations
type ListFilter struct {
	// RequesterID filters by the requesting consumer (nil means all)
	RequesterID *uuid.UUID

	// PharmacyID filters by the servicing pharmacy (nil means all)
	PharmacyID *uuid.UUID

	// Status filters by lifecycle state (nil means all)
	Status *domain.Status

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns a sensible default filter
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:  20,
		Offset: 0,
	}
}

// ReservationRepository defines the interface for reservation persistence
type ReservationRepository interface {
	// Create saves a new reservation
	Create(ctx context.Context, reservation *domain.Reservation) error

	// FindByID retrieves a reservation by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)

	// Update modifies an existing reservation
	Update(ctx context.Context, reservation *domain.Reservation) error

	// Delete removes a reservation permanently
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves reservations matching the filter
	List(ctx context.Context, filter ListFilter) ([]*domain.Reservation, error)

	// Count returns the total number of reservations matching the filter
	Count(ctx context.Context, filter ListFilter) (int, error)

	// HasPendingForMedicine reports whether the requester already holds a
	// pending reservation for the medicine
	HasPendingForMedicine(ctx context.Context, requesterID, medicineID uuid.UUID) (bool, error)

	// WithTx returns a repository bound to the given transaction so the
	// creation preconditions and insert run atomically
	WithTx(tx pgx.Tx) ReservationRepository
}
