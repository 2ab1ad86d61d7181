package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/platform/validator"
)

// Business rule constants
const (
	MaxNameLength    = 120
	MaxAddressLength = 250
)

// Validation errors
var (
	ErrInvalidName    = errors.New("name is required and must not exceed 120 characters")
	ErrInvalidAddress = errors.New("address is required and must not exceed 250 characters")
	ErrInvalidLicense = errors.New("license identifier is malformed")
	ErrInvalidOwnerID = errors.New("owner ID is required")
)

// Pharmacy is a storefront owned by exactly one user. The license is a
// globally unique identifier; uniqueness itself is enforced at write time
// by the store, not here.
type Pharmacy struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Address   string
	License   string
	Verified  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPharmacy creates a pharmacy with validation. New pharmacies start
// unverified.
func NewPharmacy(ownerID uuid.UUID, name, address, license string) (*Pharmacy, error) {
	if ownerID == uuid.Nil {
		return nil, ErrInvalidOwnerID
	}

	if err := validateName(name); err != nil {
		return nil, err
	}

	if err := validateAddress(address); err != nil {
		return nil, err
	}

	license = validator.NormalizeLicense(license)
	if err := validator.ValidateLicenseFormat(license); err != nil {
		return nil, ErrInvalidLicense
	}

	now := time.Now()
	return &Pharmacy{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Address:   address,
		License:   license,
		Verified:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateDetails updates the mutable presentation fields with validation.
// The license and owner are fixed at creation.
func (p *Pharmacy) UpdateDetails(name, address string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := validateAddress(address); err != nil {
		return err
	}

	p.Name = name
	p.Address = address
	p.UpdatedAt = time.Now()
	return nil
}

// SetVerified toggles the verification flag
func (p *Pharmacy) SetVerified(verified bool) {
	p.Verified = verified
	p.UpdatedAt = time.Now()
}

func validateName(name string) error {
	if name == "" || len(name) > MaxNameLength {
		return ErrInvalidName
	}
	return nil
}

func validateAddress(address string) error {
	if address == "" || len(address) > MaxAddressLength {
		return ErrInvalidAddress
	}
	return nil
}
