package protocol

import (
	"errors"
	"fmt"
	"io"
)

const (
	// initialReadBuffer is the starting size of the receive buffer; it grows
	// to fit the largest frame seen.
	initialReadBuffer = 1024
)

// Conn frames a byte stream into Messages.
//
// Reads go through a growable buffer that keeps any incomplete trailing
// frame between reads, so a frame split across several TCP segments decodes
// the same as one delivered whole. After the first decode error the Conn is
// poisoned and every further ReadMessage returns that error.
//
// A Conn is not safe for concurrent use.
type Conn struct {
	rw  io.ReadWriter
	buf []byte
	r   int // start of unread data in buf
	w   int // end of valid data in buf
	err error
	out []byte
}

// NewConn wraps rw with the message codec
func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{
		rw:  rw,
		buf: make([]byte, initialReadBuffer),
	}
}

// ReadMessage blocks until one complete message is decoded.
//
// io.EOF is returned when the peer closes the stream on a frame boundary,
// io.ErrUnexpectedEOF when it closes mid-frame.
func (c *Conn) ReadMessage() (Message, error) {
	if c.err != nil {
		return nil, c.err
	}

	for {
		msg, n, err := Decode(c.buf[c.r:c.w])
		if err != nil {
			c.err = err
			return nil, err
		}
		if n > 0 {
			c.r += n
			if c.r == c.w {
				c.r, c.w = 0, 0
			}
			return msg, nil
		}

		if err := c.fill(); err != nil {
			if errors.Is(err, io.EOF) && c.w > c.r {
				err = io.ErrUnexpectedEOF
			}
			c.err = err
			return nil, err
		}
	}
}

// fill reads more bytes from the stream, compacting or growing buf first
func (c *Conn) fill() error {
	if c.r > 0 {
		c.w = copy(c.buf, c.buf[c.r:c.w])
		c.r = 0
	}

	if need := c.pending(); need > len(c.buf) {
		grown := make([]byte, need)
		copy(grown, c.buf[:c.w])
		c.buf = grown
	} else if c.w == len(c.buf) {
		grown := make([]byte, 2*len(c.buf))
		copy(grown, c.buf[:c.w])
		c.buf = grown
	}

	n, err := c.rw.Read(c.buf[c.w:])
	c.w += n
	if n > 0 {
		return nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return err
}

// pending returns the size of the frame at the head of the buffer if its
// header has arrived, else 0
func (c *Conn) pending() int {
	h, err := ParseHeader(c.buf[c.r:c.w])
	if err != nil {
		return 0
	}
	return HeaderSize + int(h.BodyLen)
}

// WriteMessage encodes m and writes the complete frame
func (c *Conn) WriteMessage(m Message) error {
	frame, err := AppendMessage(c.out[:0], m)
	if err != nil {
		return err
	}
	c.out = frame

	if _, err := c.rw.Write(frame); err != nil {
		return fmt.Errorf("write %s: %w", m.ID(), err)
	}
	return nil
}

// Close closes the underlying stream if it implements io.Closer
func (c *Conn) Close() error {
	if closer, ok := c.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
