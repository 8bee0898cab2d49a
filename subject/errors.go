package subject

import (
	"fmt"

	"github.com/pkg/errors"
)

// Variables with registration and publish errors.
var (
	ErrNilListener           = errors.New("listener is nil")
	ErrListenerNotComparable = errors.New("listener is not comparable")
	ErrEmptyEventName        = errors.New("event name is empty")
	ErrTransport             = errors.New("listener is unreachable")
	ErrListenerPanic         = errors.New("listener panicked")
)

// RegistrationError reports invalid subscribe or unsubscribe arguments.
type RegistrationError struct {
	Op  string
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// ProgrammingError reports a publish call that can never be valid.
type ProgrammingError struct {
	Err error
}

func (e *ProgrammingError) Error() string {
	return fmt.Sprintf("publish: %v", e.Err)
}

func (e *ProgrammingError) Unwrap() error { return e.Err }

// TransportError is returned by a listener whose endpoint cannot be reached.
// The dispatcher evicts the listener's subscription when it sees one.
type TransportError struct {
	Listener string
	Err      error
}

// NewTransportError wraps err as a transport failure of the named listener.
func NewTransportError(listener string, err error) *TransportError {
	return &TransportError{Listener: listener, Err: err}
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("listener %s: %v", e.Listener, ErrTransport)
	}
	return fmt.Sprintf("listener %s: %v: %v", e.Listener, ErrTransport, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransport) hold for every TransportError.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// IsTransport reports whether err is, or wraps, a transport failure.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}
