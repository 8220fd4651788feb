//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package discovery

import "syscall"

// reuseControl is nil where SO_REUSEPORT is unavailable; the port is bound exclusively
var reuseControl func(network, address string, c syscall.RawConn) error
