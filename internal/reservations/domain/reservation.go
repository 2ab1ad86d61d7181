package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// IsValid reports whether the status is a known lifecycle state
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status is an end state of the usual
// lifecycle. Note that transitions are authorized per target status, not
// blocked on the current one, so a terminal status is descriptive only.
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// ParseStatus converts a string into a Status
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Validation errors
var (
	ErrInvalidStatus      = errors.New("invalid reservation status")
	ErrInvalidRequesterID = errors.New("requester ID is required")
	ErrInvalidMedicineID  = errors.New("medicine ID is required")
	ErrInvalidPharmacyID  = errors.New("pharmacy ID is required")
)

// Reservation is a consumer's claim on a medicine. PharmacyID is a
// snapshot of the medicine's pharmacy taken at creation time; later
// changes to the medicine do not move the reservation.
type Reservation struct {
	ID          uuid.UUID
	RequesterID uuid.UUID
	MedicineID  uuid.UUID
	PharmacyID  uuid.UUID
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewReservation creates a pending reservation
func NewReservation(requesterID, medicineID, pharmacyID uuid.UUID) (*Reservation, error) {
	if requesterID == uuid.Nil {
		return nil, ErrInvalidRequesterID
	}
	if medicineID == uuid.Nil {
		return nil, ErrInvalidMedicineID
	}
	if pharmacyID == uuid.Nil {
		return nil, ErrInvalidPharmacyID
	}

	now := time.Now()
	return &Reservation{
		ID:          uuid.New(),
		RequesterID: requesterID,
		MedicineID:  medicineID,
		PharmacyID:  pharmacyID,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SetStatus applies a status unconditionally. Which transitions a caller
// may perform is decided by the authorization policy, not here.
func (r *Reservation) SetStatus(status Status) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	return nil
}
