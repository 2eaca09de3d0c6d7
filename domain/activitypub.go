package domain

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a persisted record of a federation action. Rows are created
// once by the envelope factories and never mutated; the outbox collection
// reads them back in creation order.
type Activity struct {
	Id         uuid.UUID
	ApId       string // federated activity id; deduplicates inbound redeliveries
	Type       string // Create, Block, Lock, Flag, ...
	ActorURI   string
	ObjectURI  string
	AudienceId *uuid.UUID // owning magazine, nil for instance-level actions
	RawJSON    string     // the rendered activity document
	Local      bool
	CreatedAt  time.Time
}

// Report records a piece of content reported for moderation
type Report struct {
	Id        uuid.UUID
	Reporter  *User
	Reported  *User
	Target    Content // nil when only an actor is reported
	Magazine  *Magazine
	Reason    string
	CreatedAt time.Time
}

// DeliveryQueueItem represents an item in the outbound delivery queue
type DeliveryQueueItem struct {
	Id           uuid.UUID
	InboxURI     string
	ActorId      uuid.UUID // local signing actor
	ActivityJSON string
	Attempts     int
	NextRetryAt  time.Time
	CreatedAt    time.Time
}
