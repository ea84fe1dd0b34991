// File: transport/tcp/sockopt_stub.go
//go:build !linux
// +build !linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub socket options for platforms without the unix sockopt surface.

package tcp

import "syscall"

// setSockOpts is a no-op on this platform.
func setSockOpts(network, address string, c syscall.RawConn) error {
	return nil
}
