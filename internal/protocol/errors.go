package protocol

import "errors"

// Codec errors. Decode errors other than "need more input" leave the stream
// unusable; the connection must be dropped rather than resynchronized.
var (
	ErrBadMagic           = errors.New("protocol: bad magic")
	ErrUnknownMessageType = errors.New("protocol: unknown message type")
	ErrMalformedBody      = errors.New("protocol: malformed body")
	ErrStringTooLong      = errors.New("protocol: string too long for length field")
)

// Announcement errors
var (
	ErrTooShort                 = errors.New("protocol: announcement too short")
	ErrUnsupportedVersion       = errors.New("protocol: unsupported announcement version")
	ErrUnsupportedAddressFamily = errors.New("protocol: unsupported address family")
)
