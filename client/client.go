// Package client connects a process to a puppr server. Events arriving over
// the gateway are re-published on the client's local subject, where UI state
// holders subscribe.
package client

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/teamlint/puppr/config"
	"github.com/teamlint/puppr/gateway"
	"github.com/teamlint/puppr/model"
	"github.com/teamlint/puppr/server"
	"github.com/teamlint/puppr/subject"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SubjectName is the name of the client-local subject.
const SubjectName = "client"

// ErrClosed is returned by calls on a closed client.
var ErrClosed = errors.New("client closed")

// Client is one connection to the server.
type Client struct {
	cfg     config.ClientCfg
	conn    *websocket.Conn
	subject *subject.Subject
	http    *http.Client

	writeMu sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
	once    sync.Once
}

// Dial connects to cfg.URL and subscribes the gateway for cfg.Names.
// Only the initial connection is retried; a connection lost later is
// reported through Done and Err.
func Dial(ctx context.Context, cfg config.ClientCfg, opts ...subject.Option) (*Client, error) {
	conn, err := dial(ctx, cfg)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c := &Client{
		cfg:     cfg,
		conn:    conn,
		subject: subject.New(SubjectName, opts...),
		http:    &http.Client{Timeout: cfg.HandshakeTimeout},
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	if err := c.send(gateway.Frame{Type: gateway.FrameSubscribe, Names: cfg.Names}); err != nil {
		cancel()
		_ = conn.Close()
		return nil, err
	}

	go func() {
		defer close(c.done)
		c.err = gateway.NewReceiver(conn, c.subject).Run(runCtx)
		if runCtx.Err() == nil {
			logrus.WithError(c.err).Warnln("gateway connection lost")
		}
	}()
	return c, nil
}

func dial(ctx context.Context, cfg config.ClientCfg) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: cfg.HandshakeTimeout,
	}
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = cfg.DialTimeout

	var conn *websocket.Conn
	operation := func() error {
		var (
			resp *http.Response
			err  error
		)
		conn, resp, err = dialer.DialContext(ctx, cfg.URL, nil)
		if err != nil && resp != nil && resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(errors.Wrapf(err, "handshake status %d", resp.StatusCode))
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logrus.WithError(err).WithField("retry_in", wait).Warnln("dial server")
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, errors.Wrapf(err, "dial %s", cfg.URL)
	}
	logrus.WithField("url", cfg.URL).Infoln("connected")
	return conn, nil
}

func (c *Client) send(f gateway.Frame) error {
	data, err := gateway.Encode(f)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.cfg.HandshakeTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.HandshakeTimeout))
	}
	return errors.Wrapf(c.conn.WriteMessage(websocket.TextMessage, data), "send %s frame", f.Type)
}

// Subject returns the client-local subject.
func (c *Client) Subject() *subject.Subject {
	return c.subject
}

// Subscribe registers l on the client-local subject.
func (c *Client) Subscribe(l subject.Listener, names ...string) (bool, error) {
	return c.subject.Subscribe(l, names...)
}

// Unsubscribe removes l, or some of its names, from the client-local subject.
func (c *Client) Unsubscribe(l subject.Listener, names ...string) (bool, error) {
	return c.subject.Unsubscribe(l, names...)
}

// Refilter replaces the names the server forwards to this client. No names
// means every event.
func (c *Client) Refilter(names ...string) error {
	if c.closed() {
		return ErrClosed
	}
	return c.send(gateway.Frame{Type: gateway.FrameSubscribe, Names: names})
}

// Mute stops the server forwarding names, or everything when none are given.
func (c *Client) Mute(names ...string) error {
	if c.closed() {
		return ErrClosed
	}
	return c.send(gateway.Frame{Type: gateway.FrameUnsubscribe, Names: names})
}

// Call runs a business operation on the server and decodes its result
// into out, which may be nil.
func (c *Client) Call(ctx context.Context, entity, action string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}
	url := strings.TrimSuffix(c.cfg.APIURL, "/") + "/" + entity + "/" + action
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "call %s/%s", entity, action)
	}
	defer resp.Body.Close()

	var r server.Response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return errors.Wrapf(err, "decode %s/%s response", entity, action)
	}
	if resp.StatusCode != http.StatusOK {
		return errorOf(resp.StatusCode, r.Error)
	}
	if out != nil && len(r.Result) > 0 {
		return errors.Wrap(json.Unmarshal(r.Result, out), "decode result")
	}
	return nil
}

// errorOf restores the business error behind an API status.
func errorOf(status int, msg string) error {
	switch status {
	case http.StatusBadRequest:
		return errors.Wrap(model.ErrInvalid, msg)
	case http.StatusNotFound:
		return errors.Wrap(model.ErrNotFound, msg)
	case http.StatusConflict:
		if strings.Contains(msg, model.ErrAlreadyLiked.Error()) {
			return errors.Wrap(model.ErrAlreadyLiked, msg)
		}
		return errors.Wrap(model.ErrExists, msg)
	default:
		return errors.Errorf("server error %d: %s", status, msg)
	}
}

// Done is closed when the gateway connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the error that ended the connection, once Done is closed.
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Close ends the connection and drops every local listener.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		c.cancel()
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.conn.Close()
		<-c.done
		c.subject.Clear()
	})
	return err
}
