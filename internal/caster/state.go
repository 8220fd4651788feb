package caster

import (
	"fmt"

	"github.com/muurk/reccaster/internal/protocol"
)

// State is the connection state of a reccaster. The concrete types are
// Discovering, Handshaking, Uploading and KeepingAlive.
type State interface {
	fmt.Stringer

	// Name returns the state name without any payload
	Name() string

	isState()
}

// Discovering waits for a server announcement
type Discovering struct{}

// Handshaking connects to an announced server and waits for its greeting
type Handshaking struct {
	Announcement protocol.Announcement
}

// Uploading sends the record catalog
type Uploading struct{}

// KeepingAlive answers server pings after a completed upload
type KeepingAlive struct{}

func (Discovering) Name() string { return "Discovering" }
func (Handshaking) Name() string { return "Handshaking" }
func (Uploading) Name() string { return "Uploading" }
func (KeepingAlive) Name() string { return "KeepingAlive" }

func (Discovering) String() string { return "Discovering" }
func (s Handshaking) String() string {
	return fmt.Sprintf("Handshaking(%s)", s.Announcement.Endpoint())
}
func (Uploading) String() string { return "Uploading" }
func (KeepingAlive) String() string { return "KeepingAlive" }

func (Discovering) isState() {}
func (Handshaking) isState() {}
func (Uploading) isState() {}
func (KeepingAlive) isState() {}
