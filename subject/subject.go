package subject

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/teamlint/puppr/event"
)

// DefaultMaxDeferred bounds the events queued, over one outermost publish, by
// re-entrant publishes of a name that is still being dispatched.
const DefaultMaxDeferred = 1024

// Subject is a broadcast point. Each owning component creates its own.
//
// Publish delivers synchronously on the caller's goroutine, in subscription
// order, to a snapshot of the registry. Subscribe and Unsubscribe may be
// called at any time, including from inside a listener; such changes take
// effect on the next publish.
//
// A listener that publishes the name it is being notified for must pass on
// the ctx it received. The subject then queues that event and delivers it
// once the current delivery loop finishes, instead of recursing.
type Subject struct {
	name        string
	registry    *Registry
	metrics     Metrics
	maxDeferred int
	logger      *logrus.Entry
}

// Option configures a Subject.
type Option func(*Subject)

// WithMetrics sets the metrics hook.
func WithMetrics(m Metrics) Option {
	return func(s *Subject) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithMaxDeferred sets the bound on queued re-entrant events.
func WithMaxDeferred(n int) Option {
	return func(s *Subject) {
		if n > 0 {
			s.maxDeferred = n
		}
	}
}

// WithLogger sets the base log entry.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Subject) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a subject. The name only appears in logs and metrics.
func New(name string, opts ...Option) *Subject {
	s := &Subject{
		name:        name,
		registry:    NewRegistry(),
		metrics:     nopMetrics{},
		maxDeferred: DefaultMaxDeferred,
		logger:      logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithField("subject", name)
	return s
}

// Name returns the subject name.
func (s *Subject) Name() string {
	return s.name
}

// Subscribe registers l for the given names, or for every event when no
// names are given. Subscribing a registered listener again replaces its filter.
func (s *Subject) Subscribe(l Listener, names ...string) (bool, error) {
	return s.SubscribeFilter(l, event.FilterOf(names...))
}

// SubscribeFilter registers l with an explicit filter.
func (s *Subject) SubscribeFilter(l Listener, f event.Filter) (bool, error) {
	if err := checkListener("subscribe", l); err != nil {
		return false, err
	}
	sub, replaced := s.registry.Put(l, f)
	s.logger.WithFields(logrus.Fields{
		"listener": listenerName(l),
		"filter":   f.String(),
		"replaced": replaced,
		"sub_id":   sub.ID,
	}).Debugln("listener subscribed")
	return true, nil
}

// Unsubscribe removes l, or only the given names from its filter.
// Removing a listener that is not registered returns false.
func (s *Subject) Unsubscribe(l Listener, names ...string) (bool, error) {
	if err := checkListener("unsubscribe", l); err != nil {
		return false, err
	}
	ok := s.registry.Remove(l, names...)
	if ok {
		s.logger.WithField("listener", listenerName(l)).
			WithField("names", names).
			Debugln("listener unsubscribed")
	}
	return ok, nil
}

// Publish announces a change of the named property.
func (s *Subject) Publish(name string, oldValue, newValue interface{}) error {
	return s.PublishContext(context.Background(), name, oldValue, newValue)
}

// PublishContext is Publish carrying ctx to the listeners.
func (s *Subject) PublishContext(ctx context.Context, name string, oldValue, newValue interface{}) error {
	if name == "" {
		return &ProgrammingError{Err: ErrEmptyEventName}
	}
	s.deliver(ctx, event.New(name, oldValue, newValue))
	return nil
}

// PublishEvent re-announces an existing event unchanged, e.g. one received
// from another process.
func (s *Subject) PublishEvent(ctx context.Context, evt event.Event) error {
	if evt.Name == "" {
		return &ProgrammingError{Err: ErrEmptyEventName}
	}
	s.deliver(ctx, evt)
	return nil
}

// Len returns the number of subscriptions.
func (s *Subject) Len() int {
	return s.registry.Len()
}

// Subscriptions returns a snapshot of the current subscriptions.
func (s *Subject) Subscriptions() []Subscription {
	return s.registry.Snapshot()
}

// Clear drops every subscription.
func (s *Subject) Clear() {
	s.registry.Clear()
}
