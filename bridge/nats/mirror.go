package nats

import (
	"context"

	"github.com/nats-io/stan.go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/teamlint/puppr/config"
	"github.com/teamlint/puppr/event"
	"github.com/teamlint/puppr/subject"
)

const (
	ErrNatsConnection = "nats connection error"
)

// Conn is the part of stan.Conn the mirror needs.
type Conn interface {
	Publish(subject string, data []byte) error
	Close() error
}

// Mirror copies every event it is notified of to NATS Streaming.
type Mirror struct {
	conn   Conn
	prefix string
}

// New return new Mirror instance.
func New(conn Conn, prefix string) *Mirror {
	return &Mirror{conn: conn, prefix: prefix}
}

// String names the mirror in logs.
func (m *Mirror) String() string {
	return "nats-mirror"
}

// Notify serializes the event and publishes it on the bus.
func (m *Mirror) Notify(_ context.Context, evt event.Event) error {
	msg, err := evt.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	if err := m.conn.Publish(evt.GetSubject(m.prefix), msg); err != nil {
		if lost(err) {
			return subject.NewTransportError(m.String(), err)
		}
		return errors.Wrap(err, "publish event")
	}
	return nil
}

// Close NATS connection.
func (m *Mirror) Close() error {
	return m.conn.Close()
}

func lost(err error) bool {
	return errors.Is(err, stan.ErrConnectionClosed) || errors.Is(err, stan.ErrBadConnection)
}

// Register connects to NATS Streaming and subscribes a mirror on s for the
// configured names. It returns nil when no publisher is configured.
func Register(cfg config.PublisherCfg, s *subject.Subject) (*Mirror, error) {
	if cfg.Type == "" {
		return nil, nil
	}
	sc, err := stan.Connect(cfg.ClusterID, cfg.ClientID, stan.NatsURL(cfg.Address))
	if err != nil {
		return nil, errors.Wrap(err, ErrNatsConnection)
	}
	m := New(sc, cfg.TopicPrefix)
	if _, err := s.Subscribe(m, cfg.Names...); err != nil {
		_ = sc.Close()
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"address": cfg.Address,
		"names":   event.FilterOf(cfg.Names...).String(),
	}).Infoln("nats mirror registered")
	return m, nil
}
