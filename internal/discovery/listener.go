package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/reccaster/internal/logging"
	"github.com/muurk/reccaster/internal/protocol"
)

const (
	// DefaultPollInterval bounds how long one Receive waits for a datagram
	DefaultPollInterval = time.Second

	// maxDatagram is larger than any announcement; longer datagrams are truncated
	maxDatagram = 1500
)

// ErrNoAnnouncement is returned by Receive when no datagram arrived within
// the poll interval. It is not a failure: callers simply poll again.
var ErrNoAnnouncement = errors.New("discovery: no announcement received")

// Listener receives RecSync announcements on a UDP port
type Listener struct {
	conn *net.UDPConn

	// PollInterval is the maximum time a single Receive blocks
	PollInterval time.Duration

	buf []byte
}

// Listen binds the announcement socket. address may be empty to listen on
// all IPv4 interfaces; port 0 picks an ephemeral port.
//
// A bind failure is returned to the caller: without the socket no server
// can ever be discovered.
func Listen(ctx context.Context, address string, port int) (*Listener, error) {
	lc := net.ListenConfig{Control: reuseControl}

	hostPort := net.JoinHostPort(address, strconv.Itoa(port))
	pc, err := lc.ListenPacket(ctx, "udp4", hostPort)
	if err != nil {
		return nil, fmt.Errorf("failed to bind announcement listener on %s: %w", hostPort, err)
	}

	logging.Info("Listening for announcements", zap.String("address", pc.LocalAddr().String()))

	return &Listener{
		conn:         pc.(*net.UDPConn),
		PollInterval: DefaultPollInterval,
		buf:          make([]byte, maxDatagram),
	}, nil
}

// LocalAddr returns the bound socket address
func (l *Listener) LocalAddr() netip.AddrPort {
	return l.conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

// Close releases the socket. Pending and future Receive calls fail with net.ErrClosed.
func (l *Listener) Close() error {
	return l.conn.Close()
}

// Receive waits up to PollInterval for one datagram and parses it.
//
// It returns ErrNoAnnouncement when nothing arrived, ctx.Err() when ctx is
// done, a wrapped protocol error when the datagram was not a valid
// announcement, or the socket error otherwise.
func (l *Listener) Receive(ctx context.Context) (protocol.Announcement, error) {
	srv, err := l.receive(ctx)
	if err != nil {
		return protocol.Announcement{}, err
	}
	return srv.Announcement, nil
}

func (l *Listener) receive(ctx context.Context) (*Server, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	poll := l.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	deadline := time.Now().Add(poll)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := l.conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %w", err)
	}

	// Unblock the read as soon as ctx is cancelled
	stop := context.AfterFunc(ctx, func() {
		_ = l.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	n, src, err := l.conn.ReadFromUDPAddrPort(l.buf)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, ErrNoAnnouncement
		}
		return nil, fmt.Errorf("failed to receive announcement: %w", err)
	}

	data := l.buf[:n]
	ann, err := protocol.ParseAnnouncement(data, src)
	if err != nil {
		logging.LogDatagram(src.String(), data, err)
		return nil, fmt.Errorf("invalid announcement from %s: %w", src, err)
	}

	logging.Debug("Announcement received",
		zap.String("source", src.String()),
		zap.String("server", ann.Endpoint().String()),
		zap.Uint32("key", ann.ServerKey),
	)

	return &Server{
		Announcement: ann,
		Source:       src,
		DiscoveredAt: time.Now(),
	}, nil
}

// Watch calls fn for every valid announcement until ctx is done or the
// listener is closed. Invalid datagrams are logged and skipped.
func (l *Listener) Watch(ctx context.Context, fn func(*Server)) error {
	for {
		srv, err := l.receive(ctx)
		switch {
		case err == nil:
			fn(srv)
		case errors.Is(err, ErrNoAnnouncement):
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, net.ErrClosed):
			return err
		default:
			logging.Debug("Receive failed", zap.Error(err))
		}
	}
}

// Scan listens for timeout and returns every distinct server heard, in the
// order first seen. Repeated announcements update DiscoveredAt.
func (l *Listener) Scan(ctx context.Context, timeout time.Duration) ([]*Server, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	servers := make([]*Server, 0)
	seen := make(map[netip.AddrPort]*Server)

	err := l.Watch(ctx, func(srv *Server) {
		if prev, ok := seen[srv.Endpoint()]; ok {
			prev.Announcement = srv.Announcement
			prev.DiscoveredAt = srv.DiscoveredAt
			prev.Count++
			return
		}
		srv.Count = 1
		seen[srv.Endpoint()] = srv
		servers = append(servers, srv)
	})
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return servers, err
	}

	return servers, nil
}
