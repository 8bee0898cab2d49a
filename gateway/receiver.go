package gateway

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/teamlint/puppr/event"
)

// Reader is the read side of a websocket connection.
type Reader interface {
	ReadMessage() (messageType int, data []byte, err error)
}

// Publisher re-announces received events; *subject.Subject implements it.
type Publisher interface {
	PublishEvent(ctx context.Context, evt event.Event) error
}

// Receiver is the client end of a gateway: it reads event frames and
// re-publishes each event unchanged on the client-local subject.
type Receiver struct {
	conn  Reader
	local Publisher
}

// NewReceiver creates a receiver publishing onto local.
func NewReceiver(conn Reader, local Publisher) *Receiver {
	return &Receiver{conn: conn, local: local}
}

// Run reads until the connection fails. It never reconnects.
// The returned error is the read error that ended the loop.
func (r *Receiver) Run(ctx context.Context) error {
	for {
		messageType, data, err := r.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "read frame")
		}
		if messageType != websocket.TextMessage {
			continue
		}
		f, err := Decode(data)
		if err != nil {
			logrus.WithError(err).Warnln("drop malformed frame")
			continue
		}
		if f.Type != FrameEvent {
			logrus.WithField("type", f.Type).Debugln("ignore frame")
			continue
		}
		if err := r.local.PublishEvent(ctx, *f.Event); err != nil {
			logrus.WithError(err).WithField("event", f.Event.Name).Warnln("re-publish failed")
		}
	}
}
