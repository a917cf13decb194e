package bus

import "time"

// Event is an envelope for in-process domain events. Kind is a dotted,
// namespace-prefixed name ("wa.chats.upsert", "session.status_changed",
// "mirror.snapshot_written"); Payload is the kind-specific value.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
