package subject

import (
	"sync"

	"github.com/teamlint/puppr/event"
)

// Subscription is one listener's registration on a subject.
type Subscription struct {
	ID       uint64
	Listener Listener
	Filter   event.Filter
}

// Registry is the ordered set of subscriptions of one subject.
//
// Every mutation installs a fresh slice, so a slice returned by Snapshot is
// never modified afterwards and can be iterated without holding the lock.
// A listener holds at most one subscription: Put replaces an existing one
// in place, keeping its position.
type Registry struct {
	mu     sync.RWMutex
	subs   []Subscription
	nextID uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Put registers l with filter f. It reports whether an existing
// subscription of l was replaced.
func (r *Registry) Put(l Listener, f event.Filter) (Subscription, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	sub := Subscription{ID: r.nextID, Listener: l, Filter: f}

	subs := make([]Subscription, len(r.subs), len(r.subs)+1)
	copy(subs, r.subs)
	for i := range subs {
		if subs[i].Listener == l {
			subs[i] = sub
			r.subs = subs
			return sub, true
		}
	}
	r.subs = append(subs, sub)
	return sub, false
}

// Remove drops names from l's subscription, or the whole subscription when no
// names are given. A Named subscription left without names is dropped.
// Names cannot be removed from an All subscription; Remove returns false then.
func (r *Registry) Remove(l Listener, names ...string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(l)
	if i < 0 {
		return false
	}
	if len(names) == 0 {
		r.subs = without(r.subs, i)
		return true
	}

	sub := r.subs[i]
	if sub.Filter.IsAll() {
		return false
	}
	removed := false
	for _, n := range names {
		if sub.Filter.Match(n) {
			removed = true
			break
		}
	}
	if !removed {
		return false
	}
	rest := sub.Filter.Without(names...)
	if rest.Len() == 0 {
		r.subs = without(r.subs, i)
		return true
	}
	subs := make([]Subscription, len(r.subs))
	copy(subs, r.subs)
	subs[i].Filter = rest
	r.subs = subs
	return true
}

// Evict drops the subscription with the given id. A subscription replaced
// since the id was handed out is left alone.
func (r *Registry) Evict(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.subs {
		if r.subs[i].ID == id {
			r.subs = without(r.subs, i)
			return true
		}
	}
	return false
}

// Lookup returns l's current subscription.
func (r *Registry) Lookup(l Listener) (Subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sub := range r.subs {
		if sub.Listener == l {
			return sub, true
		}
	}
	return Subscription{}, false
}

// Snapshot returns the subscriptions in registration order.
// The returned slice must not be modified.
func (r *Registry) Snapshot() []Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.subs
}

// Len returns the number of subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Clear removes all subscriptions.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.subs = nil
	r.mu.Unlock()
}

func (r *Registry) indexOf(l Listener) int {
	for i := range r.subs {
		if r.subs[i].Listener == l {
			return i
		}
	}
	return -1
}

// without returns a new slice without element i.
func without(subs []Subscription, i int) []Subscription {
	out := make([]Subscription, 0, len(subs)-1)
	out = append(out, subs[:i]...)
	return append(out, subs[i+1:]...)
}
