package discovery

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/muurk/reccaster/internal/protocol"
)

// Server is a RecSync server heard on the announcement port
type Server struct {
	// Announcement is the parsed datagram
	Announcement protocol.Announcement

	// Source is the address the datagram came from
	Source netip.AddrPort

	// DiscoveredAt is when the latest announcement arrived
	DiscoveredAt time.Time

	// Count is how many announcements Scan merged into this entry
	Count int
}

// Endpoint returns the TCP address the server advertises
func (s *Server) Endpoint() netip.AddrPort {
	return s.Announcement.Endpoint()
}

// String returns a human-readable string representation of the server
func (s *Server) String() string {
	return fmt.Sprintf("RecSync server %s (key 0x%08x) via %s", s.Endpoint(), s.Announcement.ServerKey, s.Source)
}
