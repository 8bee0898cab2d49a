package event

import (
	"time"

	"github.com/google/uuid"
)

// Event describes one change announced on a subject.
// An Event is immutable once published: listeners receive it by value and the
// old and new values must be treated as read-only.
//easyjson:json
type Event struct {
	ID       uuid.UUID   `json:"id"`
	Name     string      `json:"name"`
	OldValue interface{} `json:"old_value"`
	NewValue interface{} `json:"new_value"`
	Time     time.Time   `json:"time"`
}

// New stamps a new event for the given property name.
func New(name string, oldValue, newValue interface{}) Event {
	return Event{
		ID:       uuid.New(),
		Name:     name,
		OldValue: oldValue,
		NewValue: newValue,
		Time:     time.Now().UTC(),
	}
}

// GetSubject creates a bus subject name from the prefix and the event name.
func (e Event) GetSubject(prefix string) string {
	if prefix == "" {
		return e.Name
	}
	return prefix + "_" + e.Name
}
