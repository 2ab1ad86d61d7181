package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/platform/eventbus"
)

// Event topics for reservations
const (
	ReservationCreatedTopic       eventbus.Topic = "reservations.created"
	ReservationStatusChangedTopic eventbus.Topic = "reservations.status_changed"
	ReservationDeletedTopic       eventbus.Topic = "reservations.deleted"
)

// ReservationCreatedEvent is published when a consumer reserves a medicine
type ReservationCreatedEvent struct {
	ReservationID uuid.UUID
	RequesterID   uuid.UUID
	MedicineID    uuid.UUID
	PharmacyID    uuid.UUID // Snapshot taken at creation time
	OccurredAt    time.Time
}

// ReservationStatusChangedEvent is published on every status transition
type ReservationStatusChangedEvent struct {
	ReservationID uuid.UUID
	ActorID       uuid.UUID // Principal who applied the transition
	OldStatus     string
	NewStatus     string
	OccurredAt    time.Time
}

// ReservationDeletedEvent is published when a reservation is hard-deleted
type ReservationDeletedEvent struct {
	ReservationID uuid.UUID
	ActorID       uuid.UUID
	OccurredAt    time.Time
}
