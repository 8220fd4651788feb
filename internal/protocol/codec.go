package protocol

import (
	"encoding/binary"
	"fmt"
)

// Encode returns the complete frame (header + body) for m
func Encode(m Message) ([]byte, error) {
	return AppendMessage(make([]byte, 0, HeaderSize+m.bodyLen()), m)
}

// AppendMessage appends the complete frame for m to dst.
// On error dst is returned unchanged.
func AppendMessage(dst []byte, m Message) ([]byte, error) {
	start := len(dst)
	dst = AppendHeader(dst, Header{
		Magic:   Magic,
		MsgID:   m.ID(),
		BodyLen: uint32(m.bodyLen()),
	})
	out, err := m.appendBody(dst)
	if err != nil {
		return dst[:start], fmt.Errorf("encode %s: %w", m.ID(), err)
	}
	return out, nil
}

// Decode parses one frame from the front of buf.
//
// It returns the message and the number of bytes consumed (HeaderSize +
// body_len). When buf does not yet hold a complete frame it returns
// (nil, 0, nil): nothing is consumed and the caller should retry with more
// input. Any non-nil error means the stream can no longer be trusted.
func Decode(buf []byte) (Message, int, error) {
	if len(buf) < HeaderSize {
		return nil, 0, nil
	}

	h, err := ParseHeader(buf)
	if err != nil {
		return nil, 0, err
	}
	if h.Magic != Magic {
		return nil, 0, fmt.Errorf("%w: 0x%04x (expected 0x%04x)", ErrBadMagic, h.Magic, Magic)
	}
	if h.BodyLen > MaxBodyLen {
		return nil, 0, fmt.Errorf("%w: body_len %d exceeds limit %d", ErrMalformedBody, h.BodyLen, MaxBodyLen)
	}

	total := HeaderSize + int(h.BodyLen)
	if len(buf) < total {
		return nil, 0, nil
	}

	msg, err := decodeBody(h.MsgID, buf[HeaderSize:total])
	if err != nil {
		return nil, 0, err
	}
	return msg, total, nil
}

// decodeBody parses a complete body for the given discriminant.
// Trailing bytes past the last field are ignored.
func decodeBody(id MessageID, body []byte) (Message, error) {
	r := bodyReader{id: id, b: body}

	switch id {
	case MsgServerGreet:
		return ServerGreet{}, nil
	case MsgClientGreet:
		m := ClientGreet{ServerKey: r.u32()}
		return m, r.err
	case MsgPing:
		m := Ping{Nonce: r.u32()}
		return m, r.err
	case MsgPong:
		m := Pong{Nonce: r.u32()}
		return m, r.err
	case MsgAddRecord:
		var m AddRecord
		m.RecID = r.u32()
		m.Kind = RecordKind(r.u8())
		tlen := int(r.u8())
		nlen := int(r.u16())
		m.Type = r.str(tlen)
		m.Name = r.str(nlen)
		return m, r.err
	case MsgDelRecord:
		m := DelRecord{RecID: r.u32()}
		return m, r.err
	case MsgUploadDone:
		return UploadDone{}, nil
	case MsgAddInfo:
		var m AddInfo
		m.RecID = r.u32()
		klen := int(r.u8())
		vlen := int(r.u16())
		m.Key = r.str(klen)
		m.Value = r.str(vlen)
		return m, r.err
	default:
		return nil, fmt.Errorf("%w: 0x%04x", ErrUnknownMessageType, uint16(id))
	}
}

// bodyReader reads big-endian fields from a body, recording the first overrun
type bodyReader struct {
	id  MessageID
	b   []byte
	off int
	err error
}

func (r *bodyReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n > len(r.b)-r.off {
		r.err = fmt.Errorf("%w: %s needs %d bytes at offset %d, body is %d bytes",
			ErrMalformedBody, r.id, n, r.off, len(r.b))
		return nil
	}
	p := r.b[r.off : r.off+n]
	r.off += n
	return p
}

func (r *bodyReader) u8() uint8 {
	if p := r.take(1); p != nil {
		return p[0]
	}
	return 0
}

func (r *bodyReader) u16() uint16 {
	if p := r.take(2); p != nil {
		return binary.BigEndian.Uint16(p)
	}
	return 0
}

func (r *bodyReader) u32() uint32 {
	if p := r.take(4); p != nil {
		return binary.BigEndian.Uint32(p)
	}
	return 0
}

func (r *bodyReader) str(n int) string {
	if p := r.take(n); p != nil {
		return string(p)
	}
	return ""
}
