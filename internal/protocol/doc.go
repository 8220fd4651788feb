// Package protocol implements the RecSync wire protocol used by the reccaster.
//
// This package handles encoding and decoding of the framed TCP messages a
// client exchanges with a RecSync server, and parsing of the UDP datagrams
// servers broadcast to announce themselves. All multi-byte integers are
// big-endian.
//
// # Frame Format
//
// Every TCP message is an 8-byte header followed by a body:
//   - Magic: 2 bytes, ASCII "RC" (0x5243)
//   - Message ID: 2 bytes, the variant discriminant
//   - Body length: 4 bytes
//   - Body: fixed-width fields first, then length-prefixed strings
//
// # Message Types
//
//	ServerGreet  0x8001  server → client  (empty body)
//	ClientGreet  0x0001  client → server  serv_key u32
//	Ping         0x8002  server → client  nonce u32
//	Pong         0x0002  client → server  nonce u32
//	AddRecord    0x0003  client → server  recid u32, atype u8, rtlen u8, rnlen u16, rtype, rname
//	DelRecord    0x0004  client → server  recid u32
//	UploadDone   0x0005  client → server  (empty body)
//	AddInfo      0x0006  client → server  recid u32, keylen u8, valen u16, key, value
//
// # Usage Example - Encoding
//
//	frame, err := protocol.Encode(protocol.AddRecord{
//	    RecID: 100,
//	    Kind:  protocol.KindRecord,
//	    Type:  "ai",
//	    Name:  "DEV:AI:1",
//	})
//
// # Usage Example - Streaming
//
//	conn := protocol.NewConn(tcpConn)
//	msg, err := conn.ReadMessage()
//	if err != nil {
//	    return err // drop the connection, never resynchronize
//	}
//	if ping, ok := msg.(protocol.Ping); ok {
//	    err = conn.WriteMessage(protocol.Pong{Nonce: ping.Nonce})
//	}
//
// # Partial Input
//
// Decode never consumes bytes until a complete frame is buffered; it
// returns (nil, 0, nil) to ask for more input. Conn builds on this with a
// growable read buffer so frames may arrive split across any number of reads.
//
// # Error Handling
//
// Errors are sentinel values wrapped with context, test them with errors.Is:
//   - ErrBadMagic, ErrUnknownMessageType, ErrMalformedBody: the stream is
//     untrustworthy and the connection must be dropped
//   - ErrStringTooLong: a caller tried to encode a string wider than its
//     length field
//   - ErrTooShort, ErrUnsupportedVersion, ErrUnsupportedAddressFamily:
//     a rejected announcement datagram
//
// # Thread Safety
//
// Encode, Decode and ParseAnnouncement are stateless and safe for concurrent
// use. A Conn must be used by one goroutine at a time.
package protocol
