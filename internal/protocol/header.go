package protocol

import (
	"encoding/binary"
	"fmt"
)

// Protocol constants shared by the TCP framing and the UDP announcement
const (
	// Magic is the ASCII "RC" marker that starts every frame and announcement
	Magic uint16 = 0x5243

	// HeaderSize is the size of the common frame header (magic, msg_id, body_len)
	HeaderSize = 8

	// AnnouncementPort is the well-known UDP port servers broadcast announcements to
	AnnouncementPort = 5049

	// AnnouncementSize is the minimum length of a UDP announcement datagram
	AnnouncementSize = 16

	// AnnouncementVersion is the only announcement version this client understands
	AnnouncementVersion = 0

	// MaxBodyLen bounds the body length accepted on decode. The largest legal
	// body (AddRecord with maximal strings) is 65798 bytes.
	MaxBodyLen = 1 << 20
)

// String length limits imposed by the width of their wire length fields
const (
	MaxShortString = 0xFF   // u8 length prefix (record type, info key)
	MaxLongString  = 0xFFFF // u16 length prefix (record name, info value)
)

// MessageID is the 16-bit discriminant carried in the frame header
type MessageID uint16

// Message discriminants. Server-originated messages have the high bit set.
const (
	MsgServerGreet MessageID = 0x8001
	MsgClientGreet MessageID = 0x0001
	MsgPing        MessageID = 0x8002
	MsgPong        MessageID = 0x0002
	MsgAddRecord   MessageID = 0x0003
	MsgDelRecord   MessageID = 0x0004
	MsgUploadDone  MessageID = 0x0005
	MsgAddInfo     MessageID = 0x0006
)

// String returns the variant name for a discriminant
func (id MessageID) String() string {
	switch id {
	case MsgServerGreet:
		return "ServerGreet"
	case MsgClientGreet:
		return "ClientGreet"
	case MsgPing:
		return "Ping"
	case MsgPong:
		return "Pong"
	case MsgAddRecord:
		return "AddRecord"
	case MsgDelRecord:
		return "DelRecord"
	case MsgUploadDone:
		return "UploadDone"
	case MsgAddInfo:
		return "AddInfo"
	default:
		return fmt.Sprintf("Unknown(0x%04x)", uint16(id))
	}
}

// Header is the fixed 8-byte prefix of every TCP frame
//
//	[0-1]  magic     "RC" (big-endian 0x5243)
//	[2-3]  msg_id    message discriminant
//	[4-7]  body_len  number of body bytes following the header
type Header struct {
	Magic   uint16
	MsgID   MessageID
	BodyLen uint32
}

// AppendHeader appends the big-endian encoding of h to dst
func AppendHeader(dst []byte, h Header) []byte {
	dst = binary.BigEndian.AppendUint16(dst, h.Magic)
	dst = binary.BigEndian.AppendUint16(dst, uint16(h.MsgID))
	return binary.BigEndian.AppendUint32(dst, h.BodyLen)
}

// ParseHeader decodes a header from the first HeaderSize bytes of b.
// The magic is not validated here; see Decode.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("header needs %d bytes, have %d", HeaderSize, len(b))
	}
	return Header{
		Magic:   binary.BigEndian.Uint16(b[0:2]),
		MsgID:   MessageID(binary.BigEndian.Uint16(b[2:4])),
		BodyLen: binary.BigEndian.Uint32(b[4:8]),
	}, nil
}

// String returns a debug representation of the header
func (h Header) String() string {
	return fmt.Sprintf("Header{magic=0x%04x, msg=%s, body_len=%d}", h.Magic, h.MsgID, h.BodyLen)
}
