package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Business rule constants
const (
	MaxNameLength        = 150
	MaxDescriptionLength = 2000
)

// Validation errors
var (
	ErrInvalidName        = errors.New("name is required and must not exceed 150 characters")
	ErrInvalidDescription = errors.New("description must not exceed 2000 characters")
	ErrNegativePrice      = errors.New("price must be non-negative")
	ErrInvalidPharmacyID  = errors.New("pharmacy ID is required")
)

// Medicine is a product listed by exactly one pharmacy. Availability is a
// stored flag: reservations may only be created against an available
// medicine, and nothing flips the flag automatically.
type Medicine struct {
	ID           uuid.UUID
	PharmacyID   uuid.UUID
	Name         string
	Description  string // Sanitized HTML
	Price        decimal.Decimal
	Availability bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewMedicine creates a medicine with validation. New medicines start
// available.
func NewMedicine(pharmacyID uuid.UUID, name, description string, price decimal.Decimal) (*Medicine, error) {
	if pharmacyID == uuid.Nil {
		return nil, ErrInvalidPharmacyID
	}

	if err := validateName(name); err != nil {
		return nil, err
	}

	if err := validateDescription(description); err != nil {
		return nil, err
	}

	if price.IsNegative() {
		return nil, ErrNegativePrice
	}

	now := time.Now()
	return &Medicine{
		ID:           uuid.New(),
		PharmacyID:   pharmacyID,
		Name:         name,
		Description:  description,
		Price:        price,
		Availability: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// UpdateDetails updates name, description and price with validation
func (m *Medicine) UpdateDetails(name, description string, price decimal.Decimal) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := validateDescription(description); err != nil {
		return err
	}
	if price.IsNegative() {
		return ErrNegativePrice
	}

	m.Name = name
	m.Description = description
	m.Price = price
	m.UpdatedAt = time.Now()
	return nil
}

// SetAvailability toggles the availability flag
func (m *Medicine) SetAvailability(available bool) {
	m.Availability = available
	m.UpdatedAt = time.Now()
}

func validateName(name string) error {
	if name == "" || len(name) > MaxNameLength {
		return ErrInvalidName
	}
	return nil
}

func validateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return ErrInvalidDescription
	}
	return nil
}
