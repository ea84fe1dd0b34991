// File: reactor/accept.go
// Package reactor
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The accept loop runs on its own goroutine and performs the opening
// handshake right there, so only handshake I/O ever blocks it. A
// successful upgrade is handed to the worker goroutine, which inserts
// the connection, emits NewConnection, and arms the first receive.

package reactor

import (
	"bytes"
	"net"
	"time"

	"github.com/momentics/embedws/api"
	"github.com/momentics/embedws/internal/httpx"
	"github.com/momentics/embedws/protocol"
)

const (
	// handshakeTimeout bounds the whole request/reply exchange so a
	// stalled client cannot hold the accept loop.
	handshakeTimeout = 5 * time.Second

	// maxHandshakeSize caps the accumulated request bytes.
	maxHandshakeSize = 8192
)

func (r *Reactor) acceptLoop() {
	defer close(r.acceptDone)

	for {
		sock, err := r.ln.Accept()
		if err != nil {
			if r.stopped.Load() {
				return
			}
			r.log.Printf("accept error: %v", err)
			continue
		}
		r.onAccept(sock)
	}
}

// onAccept performs the handshake against a fresh socket and, on
// success, posts the connection to the worker goroutine.
func (r *Reactor) onAccept(sock net.Conn) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Printf("accept callback error: %v", p)
			_ = sock.Close()
		}
	}()

	if tc, ok := sock.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}

	if !r.performHandshake(sock) {
		_ = sock.Close()
		return
	}

	r.Post(func() {
		if r.stopped.Load() {
			_ = sock.Close()
			return
		}
		conn := r.table.Add(sock)
		r.events.Post(api.Event{Kind: api.NewConnection, Conn: conn.ID})
		r.beginRecv(conn)
	})
}

func (r *Reactor) performHandshake(sock net.Conn) bool {
	_ = sock.SetDeadline(time.Now().Add(handshakeTimeout))

	request, err := readRequest(sock)
	if err != nil {
		r.log.Printf("Handshake: read error: %v", err)
		return false
	}

	reply, status := protocol.Handshake(request)
	_, werr := sock.Write(reply)

	if status != httpx.StatusOK {
		r.log.Printf("Handshake: error %d", status)
		return false
	}
	if werr != nil {
		r.log.Printf("Handshake: write error: %v", werr)
		return false
	}

	_ = sock.SetDeadline(time.Time{})
	return true
}

// readRequest accumulates bytes until the header terminator arrives.
func readRequest(sock net.Conn) ([]byte, error) {
	var request []byte
	chunk := make([]byte, 1024)
	for {
		n, err := sock.Read(chunk)
		request = append(request, chunk[:n]...)
		if bytes.Contains(request, []byte("\r\n\r\n")) {
			return request, nil
		}
		if err != nil {
			return nil, err
		}
		if len(request) > maxHandshakeSize {
			return nil, errHandshakeTooLarge
		}
	}
}
