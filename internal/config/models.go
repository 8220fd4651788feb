package config

import (
	"fmt"
	"time"

	"github.com/muurk/reccaster/internal/caster"
	"github.com/muurk/reccaster/internal/catalog"
	"github.com/muurk/reccaster/internal/logging"
	"github.com/muurk/reccaster/internal/protocol"
)

// CurrentVersion is the only config file version this build reads
const CurrentVersion = 1

// Config represents the entire reccaster configuration file.
type Config struct {
	Version    int               `yaml:"version"`
	Listen     Listen            `yaml:"listen"`
	Timeouts   Timeouts          `yaml:"timeouts"`
	Reconnect  Reconnect         `yaml:"reconnect"`
	LogLevel   string            `yaml:"log_level,omitempty"`
	Properties map[string]string `yaml:"properties,omitempty"` // Client-level properties (ENGINEER, HOSTNAME, ...)
	Records    []Record          `yaml:"records"`
}

// Listen selects where announcements are received.
type Listen struct {
	Address string `yaml:"address,omitempty"` // Empty listens on all IPv4 interfaces
	Port    int    `yaml:"port"`              // UDP announcement port (5049)
}

// Timeouts bound each network wait. Zero disables a timeout.
type Timeouts struct {
	Connect   time.Duration `yaml:"connect"`   // TCP connect to the announced server
	Handshake time.Duration `yaml:"handshake"` // Wait for ServerGreet
	Send      time.Duration `yaml:"send"`      // Each message write
	Keepalive time.Duration `yaml:"keepalive"` // Longest silence between pings
}

// Reconnect bounds the exponential delay before reconnecting after a failed session.
type Reconnect struct {
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
}

// Record is one record entry in the configuration file.
type Record struct {
	Name       string            `yaml:"name"`
	Type       string            `yaml:"type"`
	Alias      string            `yaml:"alias,omitempty"`
	Properties map[string]string `yaml:"properties,omitempty"`
}

// New creates a Config with default values and no records.
func New() *Config {
	return &Config{
		Version: CurrentVersion,
		Listen: Listen{
			Port: protocol.AnnouncementPort,
		},
		Timeouts: Timeouts{
			Connect:   caster.DefaultConnectTimeout,
			Handshake: caster.DefaultHandshakeTimeout,
			Send:      caster.DefaultSendTimeout,
			Keepalive: caster.DefaultKeepaliveTimeout,
		},
		Reconnect: Reconnect{
			InitialInterval: caster.DefaultReconnectInitial,
			MaxInterval:     caster.DefaultReconnectMax,
		},
	}
}

// Example returns a configuration with sample records, written by "reccaster init".
func Example() *Config {
	cfg := New()
	cfg.LogLevel = "info"
	cfg.Properties = map[string]string{
		"ENGINEER": "controls-group",
		"HOSTNAME": "ioc-example-01",
	}
	cfg.Records = []Record{
		{
			Name:  "EXAMPLE:TEMP",
			Type:  "ai",
			Alias: "LAB:TEMPERATURE",
			Properties: map[string]string{
				"EGU":  "degC",
				"DESC": "Chamber temperature",
			},
		},
		{
			Name: "EXAMPLE:SETPOINT",
			Type: "ao",
			Properties: map[string]string{
				"EGU": "degC",
			},
		},
		{
			Name: "EXAMPLE:STATUS",
			Type: "mbbi",
		},
	}
	return cfg
}

// Validate checks every value that can be checked without the network.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}

	if c.Listen.Port < 0 || c.Listen.Port > 65535 {
		return fmt.Errorf("listen.port %d out of range", c.Listen.Port)
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"timeouts.connect", c.Timeouts.Connect},
		{"timeouts.handshake", c.Timeouts.Handshake},
		{"timeouts.send", c.Timeouts.Send},
		{"timeouts.keepalive", c.Timeouts.Keepalive},
		{"reconnect.initial_interval", c.Reconnect.InitialInterval},
		{"reconnect.max_interval", c.Reconnect.MaxInterval},
	}
	for _, d := range durations {
		if d.value < 0 {
			return fmt.Errorf("%s must not be negative, got %s", d.name, d.value)
		}
	}

	if c.LogLevel != "" {
		if _, err := logging.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}

	if _, err := c.Catalog(); err != nil {
		return err
	}

	return nil
}

// Catalog builds the record catalog described by the file.
func (c *Config) Catalog() (*catalog.Catalog, error) {
	records := make([]catalog.Record, 0, len(c.Records))
	for _, r := range c.Records {
		records = append(records, catalog.Record{
			Name:       r.Name,
			Type:       r.Type,
			Alias:      r.Alias,
			Properties: r.Properties,
		})
	}

	cat, err := catalog.New(records, c.Properties)
	if err != nil {
		return nil, fmt.Errorf("invalid records: %w", err)
	}
	return cat, nil
}

// CasterConfig returns the caster timeouts and reconnect policy.
func (c *Config) CasterConfig() caster.Config {
	return caster.Config{
		ConnectTimeout:   c.Timeouts.Connect,
		HandshakeTimeout: c.Timeouts.Handshake,
		SendTimeout:      c.Timeouts.Send,
		KeepaliveTimeout: c.Timeouts.Keepalive,
		ReconnectInitial: c.Reconnect.InitialInterval,
		ReconnectMax:     c.Reconnect.MaxInterval,
	}
}
