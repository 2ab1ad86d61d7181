package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/platform/eventbus"
)

// Event topics for pharmacies
const (
	PharmacyCreatedTopic  eventbus.Topic = "pharmacies.created"
	PharmacyVerifiedTopic eventbus.Topic = "pharmacies.verified"
	PharmacyDeletedTopic  eventbus.Topic = "pharmacies.deleted"
)

// PharmacyCreatedEvent is published when a pharmacy owner registers a pharmacy
type PharmacyCreatedEvent struct {
	PharmacyID uuid.UUID
	OwnerID    uuid.UUID
	License    string
	OccurredAt time.Time
}

// PharmacyVerifiedEvent is published when the verified flag changes
type PharmacyVerifiedEvent struct {
	PharmacyID uuid.UUID
	ActorID    uuid.UUID
	Verified   bool
	OccurredAt time.Time
}

// PharmacyDeletedEvent is published when a pharmacy is removed
type PharmacyDeletedEvent struct {
	PharmacyID uuid.UUID
	ActorID    uuid.UUID
	OccurredAt time.Time
}
