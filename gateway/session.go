package gateway

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/teamlint/puppr/subject"
)

// SessionConfig tunes a server-side gateway session.
type SessionConfig struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	PongTimeout  time.Duration
	ReadLimit    int64
}

// Session serves one client connection on the server: it owns the client's
// Remote and applies the client's subscribe/unsubscribe frames to it on the
// server subject.
type Session struct {
	conn    *websocket.Conn
	remote  *Remote
	subject *subject.Subject
	cfg     SessionConfig
	logger  *logrus.Entry
}

// NewSession creates a session for an upgraded connection.
func NewSession(conn *websocket.Conn, s *subject.Subject, cfg SessionConfig) *Session {
	remote := NewRemote(conn, cfg.WriteTimeout)
	return &Session{
		conn:    conn,
		remote:  remote,
		subject: s,
		cfg:     cfg,
		logger: logrus.WithFields(logrus.Fields{
			"gateway": remote.ID(),
			"remote":  conn.RemoteAddr().String(),
		}),
	}
}

// Remote returns the session's gateway listener.
func (s *Session) Remote() *Remote {
	return s.remote
}

// Serve reads control frames until the client goes away, the gateway fails
// or ctx is done. The gateway is unsubscribed before Serve returns.
func (s *Session) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.cleanup()

	if s.cfg.ReadLimit > 0 {
		s.conn.SetReadLimit(s.cfg.ReadLimit)
	}
	if s.cfg.PongTimeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
		s.conn.SetPongHandler(func(string) error {
			return s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
		})
	}

	go s.watch(ctx)
	s.logger.Infoln("gateway connected")

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Infoln("client closed connection")
				return nil
			}
			if s.remote.State() == Failed || ctx.Err() != nil {
				return nil
			}
			s.logger.WithError(err).Warnln("read control frame")
			return err
		}
		if messageType != websocket.TextMessage {
			continue
		}
		f, err := Decode(data)
		if err != nil {
			s.logger.WithError(err).Warnln("drop malformed frame")
			continue
		}
		s.apply(f)
	}
}

func (s *Session) apply(f Frame) {
	logger := s.logger.WithField("names", f.Names)
	switch f.Type {
	case FrameSubscribe:
		if _, err := s.subject.Subscribe(s.remote, f.Names...); err != nil {
			logger.WithError(err).Errorln("subscribe gateway")
			return
		}
		logger.Debugln("gateway subscribed")
	case FrameUnsubscribe:
		ok, err := s.subject.Unsubscribe(s.remote, f.Names...)
		if err != nil {
			logger.WithError(err).Errorln("unsubscribe gateway")
			return
		}
		logger.WithField("removed", ok).Debugln("gateway unsubscribed")
	default:
		logger.WithField("type", f.Type).Debugln("ignore frame")
	}
}

// watch pings the client and closes the connection when ctx is done or
// the gateway fails, which unblocks the read loop.
func (s *Session) watch(ctx context.Context) {
	var tick <-chan time.Time
	if s.cfg.PingInterval > 0 {
		ticker := time.NewTicker(s.cfg.PingInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			_ = s.remote.Close()
			return
		case <-s.remote.Failed():
			return
		case <-tick:
			if err := s.remote.Ping(ctx); err != nil {
				s.logger.WithError(err).Debugln("ping failed")
				return
			}
		}
	}
}

func (s *Session) cleanup() {
	if _, err := s.subject.Unsubscribe(s.remote); err != nil {
		s.logger.WithError(err).Errorln("unsubscribe gateway")
	}
	_ = s.remote.Close()
	s.logger.WithField("state", s.remote.State()).Infoln("gateway disconnected")
}
