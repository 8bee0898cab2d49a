package server

import "fmt"

// Service info message.
const (
	StartServiceMessage = "service was started"
	StopServiceMessage  = "service was stopped"
)

// serviceErr stops the service loop; any other error on the error channel
// is only logged.
type serviceErr struct {
	Caller string
	Err    error
}

func newServiceError(caller string, err error) *serviceErr {
	return &serviceErr{Caller: caller, Err: err}
}

func (e *serviceErr) Error() string {
	return fmt.Sprintf("%s: %v", e.Caller, e.Err)
}

func (e *serviceErr) Unwrap() error { return e.Err }
