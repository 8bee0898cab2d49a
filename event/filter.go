package event

import (
	"sort"
	"strings"
)

// Filter is a listener's interest: every event, or a named subset.
// The zero value matches every event.
type Filter struct {
	named bool
	names map[string]struct{}
}

// All returns the filter matching every event name.
func All() Filter {
	return Filter{}
}

// Named returns a filter matching only the given names.
// Named with no names matches nothing.
func Named(names ...string) Filter {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return Filter{named: true, names: set}
}

// FilterOf maps a subscribe-style name list to a filter: no names means All.
func FilterOf(names ...string) Filter {
	if len(names) == 0 {
		return All()
	}
	return Named(names...)
}

// IsAll reports whether f matches every name.
func (f Filter) IsAll() bool {
	return !f.named
}

// Match reports whether an event with the given name passes the filter.
func (f Filter) Match(name string) bool {
	if !f.named {
		return true
	}
	_, ok := f.names[name]
	return ok
}

// Names returns the sorted names of a Named filter, nil for All.
func (f Filter) Names() []string {
	if !f.named {
		return nil
	}
	names := make([]string, 0, len(f.names))
	for n := range f.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of names of a Named filter, 0 for All.
func (f Filter) Len() int {
	return len(f.names)
}

// Without returns a copy of a Named filter with the given names removed.
// All is returned unchanged.
func (f Filter) Without(names ...string) Filter {
	if !f.named {
		return f
	}
	set := make(map[string]struct{}, len(f.names))
	for n := range f.names {
		set[n] = struct{}{}
	}
	for _, n := range names {
		delete(set, n)
	}
	return Filter{named: true, names: set}
}

// Equal reports whether both filters match exactly the same names.
func (f Filter) Equal(o Filter) bool {
	if f.named != o.named || len(f.names) != len(o.names) {
		return false
	}
	for n := range f.names {
		if _, ok := o.names[n]; !ok {
			return false
		}
	}
	return true
}

func (f Filter) String() string {
	if !f.named {
		return "*"
	}
	return "[" + strings.Join(f.Names(), ",") + "]"
}
