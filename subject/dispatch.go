package subject

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/teamlint/puppr/event"
)

type dispatchKey struct {
	s *Subject
}

// dispatch tracks one outermost publish call on a subject and every publish
// made from its listeners with the ctx they were given.
type dispatch struct {
	mu     sync.Mutex
	active map[string]int
	queue  []event.Event
	queued int
	done   bool
}

func newDispatch() *dispatch {
	return &dispatch{active: make(map[string]int)}
}

// deferEvent queues evt if its name is being delivered. It reports whether the
// caller must not deliver evt itself, and whether evt was dropped.
func (d *dispatch) deferEvent(evt event.Event, max int) (deferred, dropped bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.done || d.active[evt.Name] == 0 {
		return false, false
	}
	if d.queued >= max {
		return true, true
	}
	d.queued++
	d.queue = append(d.queue, evt)
	return true, false
}

func (d *dispatch) enter(name string) {
	d.mu.Lock()
	d.active[name]++
	d.mu.Unlock()
}

func (d *dispatch) leave(name string) {
	d.mu.Lock()
	d.active[name]--
	d.mu.Unlock()
}

// next pops a queued event, marking the dispatch done once the queue is empty.
func (d *dispatch) next() (event.Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.queue) == 0 {
		d.done = true
		return event.Event{}, false
	}
	evt := d.queue[0]
	d.queue = d.queue[1:]
	return evt, true
}

func (s *Subject) deliver(ctx context.Context, evt event.Event) {
	s.metrics.Published(s.name, evt.Name)

	if d, ok := ctx.Value(dispatchKey{s}).(*dispatch); ok {
		deferred, dropped := d.deferEvent(evt, s.maxDeferred)
		switch {
		case dropped:
			s.logger.WithField("event", evt.Name).
				WithField("max_deferred", s.maxDeferred).
				Warnln("deferred event queue is full, event dropped")
			return
		case deferred:
			s.logger.WithField("event", evt.Name).Debugln("re-entrant publish deferred")
			return
		}
		if !d.done {
			s.fanout(ctx, d, evt)
			return
		}
	}

	d := newDispatch()
	ctx = context.WithValue(ctx, dispatchKey{s}, d)
	s.fanout(ctx, d, evt)
	for {
		next, ok := d.next()
		if !ok {
			return
		}
		s.fanout(ctx, d, next)
	}
}

// fanout invokes every matching subscription of the current snapshot.
func (s *Subject) fanout(ctx context.Context, d *dispatch, evt event.Event) {
	d.enter(evt.Name)
	defer d.leave(evt.Name)

	for _, sub := range s.registry.Snapshot() {
		if !sub.Filter.Match(evt.Name) {
			continue
		}
		err := s.invoke(ctx, sub, evt)
		switch {
		case err == nil:
			s.metrics.Delivered(s.name, evt.Name)
		case IsTransport(err):
			if s.registry.Evict(sub.ID) {
				s.metrics.Evicted(s.name)
				s.logger.WithError(err).WithFields(logrus.Fields{
					"listener": listenerName(sub.Listener),
					"event":    evt.Name,
					"sub_id":   sub.ID,
				}).Warnln("listener unreachable, subscription evicted")
			}
		default:
			s.metrics.Failed(s.name, evt.Name)
			s.logger.WithError(err).
				WithField("listener", listenerName(sub.Listener)).
				WithField("event", evt.Name).
				Errorln("listener failed")
		}
	}
}

// invoke calls the listener, turning a panic into an error.
func (s *Subject) invoke(ctx context.Context, sub Subscription, evt event.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrListenerPanic, "%v", r)
			s.logger.WithField("stack", string(debug.Stack())).
				Debugln("listener panic stack")
		}
	}()
	return sub.Listener.Notify(ctx, evt)
}
