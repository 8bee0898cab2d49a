package subject

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/teamlint/puppr/event"
)

type listenerMock struct {
	mock.Mock
}

func (l *listenerMock) Notify(ctx context.Context, evt event.Event) error {
	args := l.Called(ctx, evt)
	return args.Error(0)
}

// recorder keeps every event it is notified of.
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) Notify(_ context.Context, evt event.Event) error {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
	return nil
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.events))
	for _, evt := range r.events {
		names = append(names, evt.Name)
	}
	return names
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
