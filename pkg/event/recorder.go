package event

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Recorder collects the events of one operation. It is not safe for
// concurrent use.
type Recorder struct {
	events []Event
}

// Record appends an event.
func (r *Recorder) Record(kind Kind, accountID uuid.UUID, at time.Time, payload map[string]string) {
	r.events = append(r.events, New(kind, accountID, at, payload))
}

// Events returns the recorded events in order.
func (r *Recorder) Events() []Event {
	return slices.Clone(r.events)
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	return len(r.events)
}

// Reset drops every recorded event.
func (r *Recorder) Reset() {
	r.events = r.events[:0]
}
