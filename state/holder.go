// Package state holds client-side views of server properties. A Holder keeps
// the latest value of each property it follows and re-announces changes on
// its own subject, so UI components subscribe to the holder rather than to
// the connection.
package state

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/teamlint/puppr/event"
	"github.com/teamlint/puppr/subject"
)

// Source is where a holder gets its events from.
type Source interface {
	Subscribe(l subject.Listener, names ...string) (bool, error)
	Unsubscribe(l subject.Listener, names ...string) (bool, error)
}

// Holder caches the latest value per property name.
type Holder struct {
	subject *subject.Subject
	source  Source
	names   []string

	mu     sync.RWMutex
	values map[string]interface{}
}

// NewHolder subscribes a holder named name on source for names. No names
// means every property.
func NewHolder(name string, source Source, names ...string) (*Holder, error) {
	h := &Holder{
		subject: subject.New(name),
		source:  source,
		names:   names,
		values:  make(map[string]interface{}),
	}
	if _, err := source.Subscribe(h, names...); err != nil {
		return nil, errors.Wrap(err, "subscribe holder")
	}
	return h, nil
}

func (h *Holder) String() string {
	return "holder-" + h.subject.Name()
}

// Notify records evt and re-publishes it to the holder's own listeners.
func (h *Holder) Notify(ctx context.Context, evt event.Event) error {
	h.mu.Lock()
	h.values[evt.Name] = evt.NewValue
	h.mu.Unlock()
	return h.subject.PublishEvent(ctx, evt)
}

// Value returns the latest value seen for name.
func (h *Holder) Value(name string) (interface{}, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.values[name]
	return v, ok
}

// Subject returns the subject UI listeners subscribe to.
func (h *Holder) Subject() *subject.Subject {
	return h.subject
}

// Close detaches the holder from its source and drops its listeners.
func (h *Holder) Close() error {
	if _, err := h.source.Unsubscribe(h); err != nil {
		return err
	}
	h.subject.Clear()
	return nil
}
