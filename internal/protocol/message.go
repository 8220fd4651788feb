package protocol

import (
	"encoding/binary"
	"fmt"
)

// Message is one protocol message variant.
//
// The set of variants is closed: the unexported methods are the per-variant
// body encoders, so a new variant cannot be framed without implementing them.
type Message interface {
	ID() MessageID
	String() string

	bodyLen() int
	appendBody(dst []byte) ([]byte, error)
}

// RecordKind is the atype field of AddRecord
type RecordKind uint8

const (
	KindRecord RecordKind = 0 // regular record
	KindAlias  RecordKind = 1 // alias of a record added earlier with the same recid
)

func (k RecordKind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindAlias:
		return "alias"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ServerGreet (0x8001) is sent by the server right after accepting a connection
type ServerGreet struct{}

func (ServerGreet) ID() MessageID { return MsgServerGreet }
func (ServerGreet) String() string { return "ServerGreet{}" }
func (ServerGreet) bodyLen() int { return 0 }

func (ServerGreet) appendBody(dst []byte) ([]byte, error) { return dst, nil }

// ClientGreet (0x0001) answers ServerGreet with the key from the announcement
type ClientGreet struct {
	ServerKey uint32
}

func (ClientGreet) ID() MessageID { return MsgClientGreet }
func (m ClientGreet) String() string {
	return fmt.Sprintf("ClientGreet{serv_key=0x%08x}", m.ServerKey)
}
func (ClientGreet) bodyLen() int { return 4 }

func (m ClientGreet) appendBody(dst []byte) ([]byte, error) {
	return binary.BigEndian.AppendUint32(dst, m.ServerKey), nil
}

// Ping (0x8002) is the server keepalive probe
type Ping struct {
	Nonce uint32
}

func (Ping) ID() MessageID { return MsgPing }
func (m Ping) String() string { return fmt.Sprintf("Ping{nonce=0x%08x}", m.Nonce) }
func (Ping) bodyLen() int { return 4 }

func (m Ping) appendBody(dst []byte) ([]byte, error) {
	return binary.BigEndian.AppendUint32(dst, m.Nonce), nil
}

// Pong (0x0002) echoes the nonce of a Ping
type Pong struct {
	Nonce uint32
}

func (Pong) ID() MessageID { return MsgPong }
func (m Pong) String() string { return fmt.Sprintf("Pong{nonce=0x%08x}", m.Nonce) }
func (Pong) bodyLen() int { return 4 }

func (m Pong) appendBody(dst []byte) ([]byte, error) {
	return binary.BigEndian.AppendUint32(dst, m.Nonce), nil
}

// AddRecord (0x0003) registers a record or an alias of one
//
// Body layout:
//
//	[0-3]  recid
//	[4]    atype (RecordKind)
//	[5]    rtlen
//	[6-7]  rnlen
//	[8..]  rtype bytes, then rname bytes
type AddRecord struct {
	RecID uint32
	Kind  RecordKind
	Type  string // at most MaxShortString bytes
	Name  string // at most MaxLongString bytes
}

func (AddRecord) ID() MessageID { return MsgAddRecord }
func (m AddRecord) String() string {
	return fmt.Sprintf("AddRecord{recid=%d, kind=%s, type=%q, name=%q}", m.RecID, m.Kind, m.Type, m.Name)
}
func (m AddRecord) bodyLen() int { return 8 + len(m.Type) + len(m.Name) }

func (m AddRecord) appendBody(dst []byte) ([]byte, error) {
	if len(m.Type) > MaxShortString {
		return dst, fmt.Errorf("%w: record type is %d bytes (max %d)", ErrStringTooLong, len(m.Type), MaxShortString)
	}
	if len(m.Name) > MaxLongString {
		return dst, fmt.Errorf("%w: record name is %d bytes (max %d)", ErrStringTooLong, len(m.Name), MaxLongString)
	}
	dst = binary.BigEndian.AppendUint32(dst, m.RecID)
	dst = append(dst, byte(m.Kind), byte(len(m.Type)))
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(m.Name)))
	dst = append(dst, m.Type...)
	return append(dst, m.Name...), nil
}

// DelRecord (0x0004) removes a record registered earlier in the session
type DelRecord struct {
	RecID uint32
}

func (DelRecord) ID() MessageID { return MsgDelRecord }
func (m DelRecord) String() string { return fmt.Sprintf("DelRecord{recid=%d}", m.RecID) }
func (DelRecord) bodyLen() int { return 4 }

func (m DelRecord) appendBody(dst []byte) ([]byte, error) {
	return binary.BigEndian.AppendUint32(dst, m.RecID), nil
}

// UploadDone (0x0005) marks the end of the record upload
type UploadDone struct{}

func (UploadDone) ID() MessageID { return MsgUploadDone }
func (UploadDone) String() string { return "UploadDone{}" }
func (UploadDone) bodyLen() int { return 0 }

func (UploadDone) appendBody(dst []byte) ([]byte, error) { return dst, nil }

// AddInfo (0x0006) attaches a key/value pair to a record (recid 0 is the client itself)
//
// Body layout:
//
//	[0-3]  recid
//	[4]    keylen
//	[5-6]  valen
//	[7..]  key bytes, then value bytes
type AddInfo struct {
	RecID uint32
	Key   string // at most MaxShortString bytes
	Value string // at most MaxLongString bytes
}

func (AddInfo) ID() MessageID { return MsgAddInfo }
func (m AddInfo) String() string {
	return fmt.Sprintf("AddInfo{recid=%d, key=%q, value=%q}", m.RecID, m.Key, m.Value)
}
func (m AddInfo) bodyLen() int { return 7 + len(m.Key) + len(m.Value) }

func (m AddInfo) appendBody(dst []byte) ([]byte, error) {
	if len(m.Key) > MaxShortString {
		return dst, fmt.Errorf("%w: info key is %d bytes (max %d)", ErrStringTooLong, len(m.Key), MaxShortString)
	}
	if len(m.Value) > MaxLongString {
		return dst, fmt.Errorf("%w: info value is %d bytes (max %d)", ErrStringTooLong, len(m.Value), MaxLongString)
	}
	dst = binary.BigEndian.AppendUint32(dst, m.RecID)
	dst = append(dst, byte(len(m.Key)))
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(m.Value)))
	dst = append(dst, m.Key...)
	return append(dst, m.Value...), nil
}
