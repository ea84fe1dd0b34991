// File: internal/session/conn.go
// Package session holds per-connection state and the connection table.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Every field of Connection is owned by the reactor goroutine, except
// the Receiver buffer, which a read's helper goroutine fills while
// IsReading is set. A
// Connection is erased from its Table only when IsClosed is set and no
// read or write is in flight; the in-flight operation's completion
// still references the receiver buffer and the send queue head.

package session

import (
	"net"
	"time"

	"github.com/eapache/queue"
	"github.com/momentics/embedws/api"
	"github.com/momentics/embedws/protocol"
)

// closeFlushTimeout bounds how long a write already in flight at close
// time may keep the socket alive. The Close reply to a peer must reach
// the wire before teardown, but a stalled peer cannot hold the
// connection open past this.
const closeFlushTimeout = time.Second

// Connection is the per-client state.
type Connection struct {
	ID       api.ConnID
	Sock     net.Conn
	Receiver protocol.FrameReceiver

	// SendQueue holds serialized frames ([]byte) in FIFO order. While
	// IsSending, the head is the buffer currently being written.
	SendQueue *queue.Queue

	IsSending bool
	IsReading bool
	IsClosed  bool
}

func newConnection(id api.ConnID, sock net.Conn) *Connection {
	return &Connection{
		ID:        id,
		Sock:      sock,
		SendQueue: queue.New(),
	}
}

// Close cancels the pending read and tears the socket down. Idempotent;
// all socket errors are swallowed. When a write is in flight the full
// teardown is deferred to CloseSocket so the write can flush, bounded
// by closeFlushTimeout.
func (c *Connection) Close() {
	if c.IsClosed {
		return
	}
	c.IsClosed = true

	if tc, ok := c.Sock.(*net.TCPConn); ok {
		_ = tc.CloseRead()
	}
	if c.IsSending {
		_ = c.Sock.SetWriteDeadline(time.Now().Add(closeFlushTimeout))
		return
	}
	c.shutdown()
}

// CloseSocket finishes a deferred teardown once the last in-flight
// write has completed.
func (c *Connection) CloseSocket() {
	c.shutdown()
}

func (c *Connection) shutdown() {
	if tc, ok := c.Sock.(*net.TCPConn); ok {
		_ = tc.CloseWrite()
	}
	_ = c.Sock.Close()
}
