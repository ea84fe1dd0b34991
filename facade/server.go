// File: facade/server.go
// Package facade exposes the thread-safe embedding API of the server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// A zero-value Server is ready to Start. Every mutating call posts a
// task onto the reactor; Poll consults the event queue directly and
// never blocks. Calls are safe from any goroutine.

package facade

import (
	"fmt"
	"io"
	"log"
	"net"
	"sync"

	"github.com/momentics/embedws/api"
	"github.com/momentics/embedws/core/concurrency"
	"github.com/momentics/embedws/protocol"
	"github.com/momentics/embedws/reactor"
	"github.com/momentics/embedws/transport/tcp"
)

// Server is the application-facing facade.
type Server struct {
	mu      sync.Mutex
	started bool
	reactor *reactor.Reactor
	events  *concurrency.EventQueue
	addr    net.Addr
}

// Start binds the IPv4 endpoint and spawns the worker. Handshake and
// connection log lines go to sink. Fails when the port is unavailable
// or the server is already running.
func (s *Server) Start(ip string, port uint16, sink io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return api.ErrAlreadyStarted
	}

	ln, err := tcp.Listen(ip, port)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	s.events = concurrency.NewEventQueue()
	s.reactor = reactor.New(ln, s.events, log.New(sink, "", 0))
	s.reactor.Start()
	s.addr = ln.Addr()
	s.started = true
	return nil
}

// Stop closes the listener and every connection, then blocks until the
// worker goroutine exits. Idempotent.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	r := s.reactor
	s.started = false
	s.mu.Unlock()

	// join outside the lock so Poll stays non-blocking during teardown
	r.Stop()
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// SendText queues a text frame for id. Unknown ids are a silent no-op
// by the time the reactor runs the task.
func (s *Server) SendText(id api.ConnID, payload []byte) error {
	return s.send(id, protocol.OpcodeText, payload)
}

// SendBinary queues a binary frame for id.
func (s *Server) SendBinary(id api.ConnID, payload []byte) error {
	return s.send(id, protocol.OpcodeBinary, payload)
}

func (s *Server) send(id api.ConnID, op protocol.Opcode, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return api.ErrNotStarted
	}
	if uint64(len(payload)) > protocol.MaxServerPayload {
		return api.ErrMessageTooLong
	}
	s.reactor.PostSend(id, op, payload)
	return nil
}

// Drop closes id's connection. Unknown ids are a silent no-op.
func (s *Server) Drop(id api.ConnID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.reactor.PostDrop(id)
}

// Poll removes the oldest pending event into *ev and returns true, or
// returns false when no event is pending. Never blocks.
func (s *Server) Poll(ev *api.Event) bool {
	s.mu.Lock()
	events := s.events
	s.mu.Unlock()
	if events == nil {
		return false
	}
	return events.Poll(ev)
}
