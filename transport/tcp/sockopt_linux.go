// File: transport/tcp/sockopt_linux.go
//go:build linux
// +build linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux socket options for the listening socket.

package tcp

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// setSockOpts enables SO_REUSEADDR so a restarted server can rebind a
// port still in TIME_WAIT.
func setSockOpts(network, address string, c syscall.RawConn) error {
	var serr error
	err := c.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return serr
}
