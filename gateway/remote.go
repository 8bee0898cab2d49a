package gateway

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/teamlint/puppr/event"
	"github.com/teamlint/puppr/subject"
)

// ErrGatewayFailed is returned by a remote that already saw a transport error.
var ErrGatewayFailed = errors.New("gateway failed")

// State of a gateway.
type State int32

// Gateway states. Failed is terminal.
const (
	Connected State = iota
	Failed
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Conn is the write side of a websocket connection.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Remote is the server-side stub of one connected client. It is registered
// on the server subject and forwards every event it receives to the client.
type Remote struct {
	id           uuid.UUID
	conn         Conn
	writeTimeout time.Duration

	mu       sync.Mutex // serializes writes
	state    int32
	failOnce sync.Once
	failed   chan struct{}
	err      error
}

// NewRemote wraps conn. writeTimeout bounds each frame write; zero means no
// deadline beyond the one carried by the notify context.
func NewRemote(conn Conn, writeTimeout time.Duration) *Remote {
	return &Remote{
		id:           uuid.New(),
		conn:         conn,
		writeTimeout: writeTimeout,
		failed:       make(chan struct{}),
	}
}

// ID returns the session id.
func (r *Remote) ID() uuid.UUID {
	return r.id
}

func (r *Remote) String() string {
	return "gateway-" + r.id.String()
}

// State returns the current state.
func (r *Remote) State() State {
	return State(atomic.LoadInt32(&r.state))
}

// Failed is closed when the remote enters the Failed state.
func (r *Remote) Failed() <-chan struct{} {
	return r.failed
}

// Err returns the error that failed the remote.
func (r *Remote) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Notify forwards evt to the client.
func (r *Remote) Notify(ctx context.Context, evt event.Event) error {
	if r.State() == Failed {
		return subject.NewTransportError(r.String(), ErrGatewayFailed)
	}
	data, err := Encode(Frame{Type: FrameEvent, Event: &evt})
	if err != nil {
		return err
	}
	if err := r.write(ctx, websocket.TextMessage, data); err != nil {
		return subject.NewTransportError(r.String(), err)
	}
	return nil
}

// Ping sends a websocket ping to the client.
func (r *Remote) Ping(ctx context.Context) error {
	if r.State() == Failed {
		return subject.NewTransportError(r.String(), ErrGatewayFailed)
	}
	if err := r.write(ctx, websocket.PingMessage, nil); err != nil {
		return subject.NewTransportError(r.String(), err)
	}
	return nil
}

// Close moves the remote to Failed and closes the connection.
func (r *Remote) Close() error {
	r.fail(nil)
	return nil
}

func (r *Remote) write(ctx context.Context, messageType int, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if deadline, ok := r.deadline(ctx); ok {
		if err := r.conn.SetWriteDeadline(deadline); err != nil {
			r.failLocked(err)
			return err
		}
	}
	if err := r.conn.WriteMessage(messageType, data); err != nil {
		r.failLocked(err)
		return err
	}
	return nil
}

// deadline picks the earlier of the context deadline and the write timeout.
func (r *Remote) deadline(ctx context.Context) (time.Time, bool) {
	var deadline time.Time
	if r.writeTimeout > 0 {
		deadline = time.Now().Add(r.writeTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	return deadline, !deadline.IsZero()
}

func (r *Remote) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failLocked(err)
}

func (r *Remote) failLocked(err error) {
	r.failOnce.Do(func() {
		atomic.StoreInt32(&r.state, int32(Failed))
		r.err = err
		if err != nil {
			logrus.WithField("gateway", r.id).WithError(err).Warnln("gateway failed")
		}
		_ = r.conn.Close()
		close(r.failed)
	})
}
