package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/platform/eventbus"
)

// Event topics for medicines
const (
	MedicineCreatedTopic             eventbus.Topic = "medicines.created"
	MedicineAvailabilityChangedTopic eventbus.Topic = "medicines.availability_changed"
	MedicineDeletedTopic             eventbus.Topic = "medicines.deleted"
)

// MedicineCreatedEvent is published when a pharmacy adds a medicine
type MedicineCreatedEvent struct {
	MedicineID uuid.UUID
	PharmacyID uuid.UUID
	Name       string
	OccurredAt time.Time
}

// MedicineAvailabilityChangedEvent is published when the availability flag
// is toggled. Reservation transitions never publish this; availability is
// only changed explicitly by the owner.
type MedicineAvailabilityChangedEvent struct {
	MedicineID uuid.UUID
	ActorID    uuid.UUID
	Available  bool
	OccurredAt time.Time
}

// MedicineDeletedEvent is published when a medicine is removed
type MedicineDeletedEvent struct {
	MedicineID uuid.UUID
	ActorID    uuid.UUID
	OccurredAt time.Time
}
