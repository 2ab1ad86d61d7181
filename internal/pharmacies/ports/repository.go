package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/pharmacies/domain"
)

// Repository errors - the canonical errors repository implementations
// should return. The PostgreSQL implementation translates pgx.ErrNoRows
// and license unique violations to these.
var (
	// ErrPharmacyNotFound is returned when a pharmacy cannot be found
	ErrPharmacyNotFound = errors.New("pharmacy not found")

	// ErrDuplicateLicense is returned when the license uniqueness
	// constraint is violated at write time
	ErrDuplicateLicense = errors.New("license already registered")
)

// ListFilter contains filtering and pagination options for listing pharmacies
type ListFilter struct {
	// Verified filters by verification state (nil means all)
	Verified *bool

	// SearchQuery matches against name and address
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

// PharmacyRepository defines the interface for pharmacy persistence
type PharmacyRepository interface {
	// Create saves a new pharmacy; returns ErrDuplicateLicense when the
	// license is already registered
	Create(ctx context.Context, pharmacy *domain.Pharmacy) error

	// FindByID retrieves a pharmacy by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Pharmacy, error)

	// FindByOwner retrieves the pharmacy owned by a user, if any.
	// Returns ErrPharmacyNotFound when the user owns none.
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Pharmacy, error)

	// Update modifies an existing pharmacy
	Update(ctx context.Context, pharmacy *domain.Pharmacy) error

	// Delete removes a pharmacy
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves pharmacies matching the filter
	List(ctx context.Context, filter ListFilter) ([]*domain.Pharmacy, error)

	// Count returns the total number of pharmacies matching the filter
	Count(ctx context.Context, filter ListFilter) (int, error)

	// LicenseExists checks if a license is already in use
	LicenseExists(ctx context.Context, license string) (bool, error)

	// GetOwner retrieves just the owner ID for a pharmacy (for ownership
	// checks against the current persisted owner)
	GetOwner(ctx context.Context, pharmacyID uuid.UUID) (uuid.UUID, error)
}
