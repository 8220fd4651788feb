package protocol

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// Announcement is a decoded UDP discovery datagram
//
// Datagram layout (big-endian, at least 16 bytes):
//
//	[0-1]   magic "RC"
//	[2]     version (0)
//	[3]     reserved
//	[4-7]   server IPv4 address
//	[8-9]   server TCP port
//	[10-11] reserved
//	[12-15] server key
type Announcement struct {
	Magic      uint16
	ServerAddr netip.Addr
	ServerPort uint16
	ServerKey  uint32
}

// Endpoint returns the TCP address to dial
func (a Announcement) Endpoint() netip.AddrPort {
	return netip.AddrPortFrom(a.ServerAddr, a.ServerPort)
}

// String returns a debug representation of the announcement
func (a Announcement) String() string {
	return fmt.Sprintf("Announcement{server=%s, key=0x%08x}", a.Endpoint(), a.ServerKey)
}

// limitedBroadcast is 255.255.255.255
var limitedBroadcast = netip.AddrFrom4([4]byte{255, 255, 255, 255})

// ParseAnnouncement validates and decodes one announcement datagram.
//
// src is the datagram's source address. It replaces the advertised server
// address when that is the limited broadcast address, since such
// announcements carry no usable return address. Only IPv4 is supported.
// Reserved bytes are ignored.
func ParseAnnouncement(data []byte, src netip.AddrPort) (Announcement, error) {
	if len(data) < AnnouncementSize {
		return Announcement{}, fmt.Errorf("%w: %d bytes (minimum %d)", ErrTooShort, len(data), AnnouncementSize)
	}

	magic := binary.BigEndian.Uint16(data[0:2])
	if magic != Magic {
		return Announcement{}, fmt.Errorf("%w: 0x%04x (expected 0x%04x)", ErrBadMagic, magic, Magic)
	}

	if data[2] != AnnouncementVersion {
		return Announcement{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, data[2])
	}

	addr := netip.AddrFrom4([4]byte(data[4:8]))
	if addr == limitedBroadcast {
		srcAddr := src.Addr().Unmap()
		if !srcAddr.Is4() {
			return Announcement{}, fmt.Errorf("%w: source %s", ErrUnsupportedAddressFamily, src.Addr())
		}
		addr = srcAddr
	}

	return Announcement{
		Magic:      magic,
		ServerAddr: addr,
		ServerPort: binary.BigEndian.Uint16(data[8:10]),
		ServerKey:  binary.BigEndian.Uint32(data[12:16]),
	}, nil
}

// AppendAnnouncement appends a version 0 announcement datagram for a to dst.
// Servers produce these; the client uses it in tests and diagnostics.
func AppendAnnouncement(dst []byte, a Announcement) []byte {
	var addr [4]byte
	if ip := a.ServerAddr.Unmap(); ip.Is4() {
		addr = ip.As4()
	}
	dst = binary.BigEndian.AppendUint16(dst, Magic)
	dst = append(dst, AnnouncementVersion, 0)
	dst = append(dst, addr[:]...)
	dst = binary.BigEndian.AppendUint16(dst, a.ServerPort)
	dst = append(dst, 0, 0)
	return binary.BigEndian.AppendUint32(dst, a.ServerKey)
}
