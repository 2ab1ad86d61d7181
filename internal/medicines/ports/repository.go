package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pharmaseek/marketplace/backend/internal/medicines/domain"
)

// Repository errors - the canonical errors repository implementations
// should return. The PostgreSQL implementation translates pgx.ErrNoRows
// to these.
var (
	// ErrMedicineNotFound is returned when a medicine cannot be found
	ErrMedicineNotFound = errors.New("medicine not found")
)

// ListFilter contains filtering and pagination options for listing medicines
type ListFilter struct {
	// PharmacyID filters by the listing pharmacy (nil means all)
	PharmacyID *uuid.UUID

	// AvailableOnly restricts results to medicines currently available
	AvailableOnly bool

	// SearchQuery matches against the medicine name
	SearchQuery string

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

// MedicineRepository defines the interface for medicine persistence
type MedicineRepository interface {
	// Create saves a new medicine
	Create(ctx context.Context, medicine *domain.Medicine) error

	// FindByID retrieves a medicine by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Medicine, error)

	// Update modifies an existing medicine
	Update(ctx context.Context, medicine *domain.Medicine) error

	// Delete removes a medicine
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves medicines matching the filter
	List(ctx context.Context, filter ListFilter) ([]*domain.Medicine, error)

	// Count returns the total number of medicines matching the filter
	Count(ctx context.Context, filter ListFilter) (int, error)

	// GetPharmacy retrieves just the owning pharmacy ID for a medicine
	// (first hop of the transitive ownership chain)
	GetPharmacy(ctx context.Context, medicineID uuid.UUID) (uuid.UUID, error)

	// WithTx returns a repository bound to the given transaction so the
	// reservation workflow can read medicine state atomically with its
	// insert
	WithTx(tx pgx.Tx) MedicineRepository
}
