package caster

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/muurk/reccaster/internal/catalog"
	"github.com/muurk/reccaster/internal/discovery"
	"github.com/muurk/reccaster/internal/logging"
	"github.com/muurk/reccaster/internal/protocol"
)

// Receiver yields server announcements. discovery.Listener implements it.
//
// Receive returns discovery.ErrNoAnnouncement when nothing arrived within
// its poll interval, and an error wrapping net.ErrClosed once the
// underlying socket is closed.
type Receiver interface {
	Receive(ctx context.Context) (protocol.Announcement, error)
}

// Dialer opens TCP connections. *net.Dialer implements it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Caster drives the reccaster state machine: it discovers a server, uploads
// the catalog and keeps the session alive, returning to discovery after any
// failure.
//
// A Caster is not safe for concurrent use; Run owns it until it returns.
type Caster struct {
	catalog   *catalog.Catalog
	receiver  Receiver
	dialer    Dialer
	cfg       Config
	backoff   backoff.BackOff
	observers []Observer

	state State

	conn      net.Conn
	framed    *protocol.Conn
	stopWatch func() bool

	// retry is set when the last session failed; the next dial waits for
	// the backoff delay first
	retry bool
}

// New creates a caster for cat that discovers servers through receiver
func New(cat *catalog.Catalog, receiver Receiver, opts ...Option) *Caster {
	c := &Caster{
		catalog:  cat,
		receiver: receiver,
		dialer:   defaultDialer(),
		cfg:      DefaultConfig(),
		state:    Discovering{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.backoff == nil {
		c.backoff = c.cfg.newBackOff()
	}

	return c
}

// State returns the current state
func (c *Caster) State() State {
	return c.state
}

// Run steps the state machine until ctx is done or the receiver is closed.
// Network and protocol failures never end Run; they return the caster to
// Discovering.
func (c *Caster) Run(ctx context.Context) error {
	defer c.closeConn()

	logging.Info("Reccaster started",
		zap.Int("records", c.catalog.Len()),
		zap.Int("client_properties", len(c.catalog.PropertyKeys())),
	)

	for {
		if err := c.Step(ctx); err != nil {
			logging.Info("Reccaster stopped", zap.Error(err))
			return err
		}
	}
}

// Step performs the I/O of the current state once and applies the
// resulting transition. It returns an error only when ctx is done or the
// receiver has been closed.
func (c *Caster) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var ev Event
	switch s := c.state.(type) {
	case Discovering:
		ann, err := c.receiver.Receive(ctx)
		switch {
		case err == nil:
			ev = AnnouncementReceived{Announcement: ann}
		case errors.Is(err, discovery.ErrNoAnnouncement):
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, net.ErrClosed):
			return fmt.Errorf("announcement listener closed: %w", err)
		case isAnnouncementError(err):
			// already logged with a hex dump by the listener
			ev = ReceiveFailed{Err: err}
		default:
			logging.Error("Failed to receive announcement", zap.Error(err))
			ev = ReceiveFailed{Err: err}
		}

	case Handshaking:
		if c.conn == nil {
			if err := c.waitBackOff(ctx); err != nil {
				return err
			}
			conn, err := c.dial(ctx, s.Announcement)
			if err != nil {
				ev = ConnectFailed{Err: err}
				break
			}
			c.attach(ctx, conn)
		}
		ev = c.readEvent(c.cfg.HandshakeTimeout)

	case Uploading:
		ev = c.upload()

	case KeepingAlive:
		ev = c.readEvent(c.cfg.KeepaliveTimeout)
	}

	if err := ctx.Err(); err != nil {
		c.closeConn()
		return err
	}

	c.apply(ev)
	return nil
}

// apply runs Transition, sends its replies and records the new state
func (c *Caster) apply(ev Event) {
	from := c.state
	next, replies := Transition(from, ev)

	for _, msg := range replies {
		if err := c.send(msg); err != nil {
			ev = SendFailed{Err: err}
			next, _ = Transition(next, ev)
			break
		}
	}

	c.setState(from, next, ev.String())
}

func (c *Caster) setState(from, to State, reason string) {
	c.state = to

	if from.Name() == to.Name() {
		return
	}

	switch to.(type) {
	case Discovering:
		c.closeConn()
		c.retry = true
		logging.Warn("Session ended", zap.String("state", from.Name()), zap.String("reason", reason))
	case KeepingAlive:
		c.backoff.Reset()
		c.retry = false
	}

	logging.LogTransition(from.String(), to.String(), reason)
	for _, o := range c.observers {
		o.StateChanged(from, to, reason)
	}
}

// waitBackOff sleeps for the reconnect delay if the previous session failed
func (c *Caster) waitBackOff(ctx context.Context) error {
	if !c.retry {
		return nil
	}

	delay := c.backoff.NextBackOff()
	if delay == backoff.Stop {
		delay = c.cfg.ReconnectMax
	}
	if delay <= 0 {
		return nil
	}

	logging.Debug("Waiting before reconnect", zap.Duration("delay", delay))

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Caster) dial(ctx context.Context, ann protocol.Announcement) (net.Conn, error) {
	if c.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ConnectTimeout)
		defer cancel()
	}

	addr := ann.Endpoint().String()
	conn, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	logging.LogConnection(addr, "connected")
	return conn, nil
}

// attach takes ownership of conn. It is closed when ctx is done so blocked
// reads and writes return promptly.
func (c *Caster) attach(ctx context.Context, conn net.Conn) {
	c.conn = conn
	c.framed = protocol.NewConn(conn)
	c.stopWatch = context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
}

func (c *Caster) closeConn() {
	if c.conn == nil {
		return
	}
	if c.stopWatch != nil {
		c.stopWatch()
	}
	_ = c.conn.Close()
	logging.LogConnection(c.remoteAddr(), "closed")

	c.conn = nil
	c.framed = nil
	c.stopWatch = nil
}

func (c *Caster) remoteAddr() string {
	if c.conn == nil || c.conn.RemoteAddr() == nil {
		return ""
	}
	return c.conn.RemoteAddr().String()
}

// readEvent waits for the next message, bounded by timeout when positive
func (c *Caster) readEvent(timeout time.Duration) Event {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return StreamFailed{Err: err}
	}

	msg, err := c.framed.ReadMessage()
	if err != nil {
		return StreamFailed{Err: err}
	}

	c.frame(Received, msg)
	return MessageReceived{Message: msg}
}

func (c *Caster) send(msg protocol.Message) error {
	if c.conn == nil {
		return errors.New("no connection")
	}

	var deadline time.Time
	if c.cfg.SendTimeout > 0 {
		deadline = time.Now().Add(c.cfg.SendTimeout)
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}

	if err := c.framed.WriteMessage(msg); err != nil {
		return err
	}

	c.frame(Sent, msg)
	return nil
}

// upload sends the whole upload plan. Any failure abandons the upload.
func (c *Caster) upload() Event {
	plan := UploadPlan(c.catalog)
	for _, msg := range plan {
		if err := c.send(msg); err != nil {
			return SendFailed{Err: err}
		}
	}

	logging.Info("Catalog uploaded",
		zap.String("remote_addr", c.remoteAddr()),
		zap.Int("records", c.catalog.Len()),
		zap.Int("messages", len(plan)),
	)
	return UploadCompleted{}
}

func (c *Caster) frame(dir Direction, msg protocol.Message) {
	logging.LogFrame(c.remoteAddr(), string(dir), msg.ID().String(), msg.String())
	for _, o := range c.observers {
		o.FrameExchanged(dir, msg)
	}
}

func isAnnouncementError(err error) bool {
	return errors.Is(err, protocol.ErrTooShort) ||
		errors.Is(err, protocol.ErrBadMagic) ||
		errors.Is(err, protocol.ErrUnsupportedVersion) ||
		errors.Is(err, protocol.ErrUnsupportedAddressFamily)
}
