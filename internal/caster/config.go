package caster

import (
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Default timeouts and reconnect intervals
const (
	DefaultConnectTimeout   = 5 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultSendTimeout      = 10 * time.Second
	DefaultKeepaliveTimeout = 0 // wait for pings forever

	DefaultReconnectInitial = 500 * time.Millisecond
	DefaultReconnectMax     = 30 * time.Second
)

// Config holds the caster's timeouts. A zero duration disables that timeout.
type Config struct {
	// ConnectTimeout bounds the TCP connect to an announced server
	ConnectTimeout time.Duration

	// HandshakeTimeout bounds the wait for ServerGreet after connecting
	HandshakeTimeout time.Duration

	// SendTimeout bounds each message write
	SendTimeout time.Duration

	// KeepaliveTimeout is the longest silence tolerated while keeping alive
	KeepaliveTimeout time.Duration

	// ReconnectInitial and ReconnectMax bound the delay before dialing
	// again after a session failed
	ReconnectInitial time.Duration
	ReconnectMax     time.Duration
}

// DefaultConfig returns the default timeouts
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:   DefaultConnectTimeout,
		HandshakeTimeout: DefaultHandshakeTimeout,
		SendTimeout:      DefaultSendTimeout,
		KeepaliveTimeout: DefaultKeepaliveTimeout,
		ReconnectInitial: DefaultReconnectInitial,
		ReconnectMax:     DefaultReconnectMax,
	}
}

// newBackOff builds the reconnect policy. It never gives up.
func (c Config) newBackOff() backoff.BackOff {
	if c.ReconnectInitial <= 0 {
		return &backoff.ZeroBackOff{}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.ReconnectInitial
	b.MaxInterval = c.ReconnectMax
	if b.MaxInterval < b.InitialInterval {
		b.MaxInterval = b.InitialInterval
	}
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Option configures a Caster
type Option func(*Caster)

// WithConfig sets timeouts and reconnect intervals
func WithConfig(cfg Config) Option {
	return func(c *Caster) {
		c.cfg = cfg
	}
}

// WithDialer replaces the TCP dialer
func WithDialer(d Dialer) Option {
	return func(c *Caster) {
		c.dialer = d
	}
}

// WithBackOff replaces the reconnect policy derived from Config
func WithBackOff(b backoff.BackOff) Option {
	return func(c *Caster) {
		c.backoff = b
	}
}

// WithObserver registers an observer for transitions and frames
func WithObserver(o Observer) Option {
	return func(c *Caster) {
		c.observers = append(c.observers, o)
	}
}

// defaultDialer is used when no Dialer option is given
func defaultDialer() Dialer {
	return &net.Dialer{}
}
