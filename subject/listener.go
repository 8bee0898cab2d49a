package subject

import (
	"context"
	"fmt"
	"reflect"

	"github.com/teamlint/puppr/event"
)

// Listener receives the events of a subject it is subscribed to.
//
// In-process listeners usually return nil. A listener that forwards events
// across a process boundary returns a *TransportError once its endpoint is
// gone, which removes it from the subject.
type Listener interface {
	Notify(ctx context.Context, evt event.Event) error
}

type funcListener struct {
	fn func(ctx context.Context, evt event.Event) error
}

func (f *funcListener) Notify(ctx context.Context, evt event.Event) error {
	return f.fn(ctx, evt)
}

// Func adapts fn to a Listener. Every call returns a distinct listener, so
// keep the result to unsubscribe it later.
func Func(fn func(ctx context.Context, evt event.Event) error) Listener {
	return &funcListener{fn: fn}
}

// checkListener validates a listener for use as a registry key.
func checkListener(op string, l Listener) error {
	if l == nil {
		return &RegistrationError{Op: op, Err: ErrNilListener}
	}
	v := reflect.ValueOf(l)
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return &RegistrationError{Op: op, Err: ErrNilListener}
	}
	if !v.Type().Comparable() {
		return &RegistrationError{Op: op, Err: ErrListenerNotComparable}
	}
	return nil
}

// listenerName is used in logs.
func listenerName(l Listener) string {
	if s, ok := l.(fmt.Stringer); ok {
		return s.String()
	}
	if reflect.ValueOf(l).Kind() == reflect.Ptr {
		return fmt.Sprintf("%T(%p)", l, l)
	}
	return fmt.Sprintf("%T", l)
}
