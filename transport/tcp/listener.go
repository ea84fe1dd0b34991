// File: transport/tcp/listener.go
// Package tcp constructs the server's listening socket.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The listener binds an IPv4 endpoint only. Platform socket options are
// applied through build-tagged control functions.

package tcp

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

// Listen binds a TCP listener on the IPv4 ip:port. Binding an
// unavailable port fails.
func Listen(ip string, port uint16) (net.Listener, error) {
	lc := net.ListenConfig{Control: setSockOpts}
	addr := net.JoinHostPort(ip, strconv.Itoa(int(port)))
	ln, err := lc.Listen(context.Background(), "tcp4", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp listen %s: %w", addr, err)
	}
	return ln, nil
}
