package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/teamlint/puppr/config"
	"github.com/teamlint/puppr/gateway"
	"github.com/teamlint/puppr/metrics"
	"github.com/teamlint/puppr/model"
	"github.com/teamlint/puppr/store"
	"github.com/teamlint/puppr/subject"
)

const errorBufferSize = 100

// SubjectName is the name of the server-side subject.
const SubjectName = "server"

// Server owns the server subject and serves gateways, the business API,
// health and metrics over HTTP.
type Server struct {
	config   config.Config
	store    model.Store
	subject  *subject.Subject
	manager  *model.Manager
	metrics  *metrics.Collector
	upgrader websocket.Upgrader
	http     *http.Server

	ctx        context.Context
	cancel     context.CancelFunc
	sessionsMu sync.Mutex
	sessions   sync.WaitGroup
	closers    []io.Closer
	stopOnce   sync.Once
	stopErr    error
	errChannel chan error
}

// New create and initialize new server instance.
func New(cfg *config.Config, st model.Store) *Server {
	collector := metrics.New()
	s := &Server{
		config:  *cfg,
		store:   st,
		metrics: collector,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		errChannel: make(chan error, errorBufferSize),
	}
	s.subject = subject.New(SubjectName,
		subject.WithMetrics(collector),
		subject.WithMaxDeferred(cfg.Subject.MaxDeferred),
	)
	s.manager = model.NewManager(st, s.subject)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.http = &http.Server{
		Addr:        cfg.Server.Address,
		Handler:     s.Handler(),
		BaseContext: func(net.Listener) context.Context { return s.ctx },
	}
	return s
}

// Subject returns the server subject.
func (s *Server) Subject() *subject.Subject {
	return s.subject
}

// Manager returns the business manager announcing on the server subject.
func (s *Server) Manager() *model.Manager {
	return s.manager
}

// Metrics returns the server's collector.
func (s *Server) Metrics() *metrics.Collector {
	return s.metrics
}

// AddCloser registers c to be closed by Stop.
func (s *Server) AddCloser(c io.Closer) {
	s.closers = append(s.closers, c)
}

// Handler returns the server's HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+s.config.Server.EventsPath, s.serveEvents)
	mux.HandleFunc("POST /api/{entity}/{action}", s.serveAPI)
	mux.HandleFunc("GET /healthz", s.serveHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	return mux
}

// acquireSession reserves a session slot unless the server is stopping.
func (s *Server) acquireSession() bool {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if s.ctx.Err() != nil {
		return false
	}
	s.sessions.Add(1)
	return true
}

func (s *Server) serveEvents(w http.ResponseWriter, r *http.Request) {
	if !s.acquireSession() {
		http.Error(w, "server is stopping", http.StatusServiceUnavailable)
		return
	}
	defer s.sessions.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warnln("websocket upgrade")
		return
	}

	s.metrics.GatewayConnected()
	defer s.metrics.GatewayDisconnected()

	session := gateway.NewSession(conn, s.subject, gateway.SessionConfig{
		WriteTimeout: s.config.Server.WriteTimeout,
		PingInterval: s.config.Server.PingInterval,
		PongTimeout:  s.config.Server.PongTimeout,
		ReadLimit:    s.config.Server.ReadLimit,
	})
	if err := session.Serve(r.Context()); err != nil {
		logrus.WithError(err).WithField("gateway", session.Remote()).Debugln("session ended")
	}
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request) {
	if !s.store.IsAlive() {
		http.Error(w, store.ErrConnectionIsLost.Error(), http.StatusServiceUnavailable)
		return
	}
	_, _ = io.WriteString(w, "ok")
}

// Process is main service entry point.
func (s *Server) Process() error {
	logrus.WithFields(logrus.Fields{
		"address":      s.config.Server.Address,
		"logger_level": s.config.Logger.Level,
	}).Infoln(StartServiceMessage)

	g, ctx := errgroup.WithContext(s.ctx)
	g.Go(func() error {
		err := s.http.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return newServiceError("ListenAndServe()", err)
	})
	g.Go(func() error {
		return s.loop(ctx)
	})
	return g.Wait()
}

func (s *Server) loop(ctx context.Context) error {
	var serviceErr *serviceErr

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	refresh := time.NewTicker(s.config.Server.RefreshConnection)
	defer refresh.Stop()
	for {
		select {
		case <-refresh.C:
			if !s.store.IsAlive() {
				s.errChannel <- newServiceError("IsAlive()", store.ErrConnectionIsLost)
			}
			logrus.WithFields(logrus.Fields{
				"subscriptions": s.subject.Len(),
			}).Debugln("refresh")
		case err := <-s.errChannel:
			if errors.As(err, &serviceErr) {
				logrus.WithError(err).Errorln("service error")
				if stopErr := s.Stop(); stopErr != nil {
					logrus.WithError(stopErr).Errorln("s.Stop() error")
				}
				return err
			}
			logrus.Errorln(err)
		case <-signalChan:
			return s.Stop()
		case <-ctx.Done():
			return s.Stop()
		}
	}
}

// Stop is a finalizer function. It is safe to call more than once.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		timeout := s.config.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := s.http.Shutdown(ctx); err != nil {
			s.stopErr = errors.Wrap(err, "shutdown http")
		}
		// hijacked websocket connections are not tracked by Shutdown
		s.sessionsMu.Lock()
		s.cancel()
		s.sessionsMu.Unlock()
		s.sessions.Wait()
		s.subject.Clear()

		for _, c := range s.closers {
			if err := c.Close(); err != nil && s.stopErr == nil {
				s.stopErr = err
			}
		}
		if err := s.store.Close(); err != nil && s.stopErr == nil {
			s.stopErr = err
		}
		logrus.Infoln(StopServiceMessage)
	})
	return s.stopErr
}
