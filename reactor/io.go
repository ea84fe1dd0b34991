// File: reactor/io.go
// Package reactor
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Per-connection reads and writes run on short-lived helper goroutines
// that do the blocking socket calls and post their completions back to
// the worker. Completions re-validate the connection id against the
// table, since the connection may have been erased while the operation
// was in flight.

package reactor

import (
	"errors"
	"io"

	"github.com/momentics/embedws/api"
	"github.com/momentics/embedws/internal/session"
	"github.com/momentics/embedws/protocol"
)

var errHandshakeTooLarge = errors.New("handshake request too large")

// beginRecv arms the next read. The helper goroutine owns the receiver
// buffer until its completion runs on the worker; the read finishes
// when NeedMore is satisfied or the socket errors.
func (r *Reactor) beginRecv(conn *session.Connection) {
	conn.IsReading = true

	id := conn.ID
	sock := conn.Sock
	recv := &conn.Receiver

	go func() {
		total := 0
		var err error
		for recv.NeedMore(total) > 0 {
			var n int
			n, err = sock.Read(recv.Tail()[total:])
			total += n
			if err != nil {
				break
			}
		}
		if err != nil && recv.NeedMore(total) == 0 {
			// the completion condition was met by the same read that
			// surfaced the error; deliver the bytes first
			err = nil
		}
		r.Post(func() {
			if c := r.table.Find(id); c != nil {
				r.onRecvComplete(c, total, err)
			}
		})
	}()
}

func (r *Reactor) onRecvComplete(conn *session.Connection, bytesTransferred int, err error) {
	conn.IsReading = false

	if err != nil {
		if !errors.Is(err, io.EOF) {
			r.log.Printf("#%d: recv error: %v", conn.ID, err)
		}
	} else if !conn.IsClosed {
		conn.Receiver.AddBytes(bytesTransferred)
		if conn.Receiver.Valid() {
			switch op := conn.Receiver.Opcode(); op {
			case protocol.OpcodeClose:
				r.sendFrame(conn, protocol.CloseFrame())
			case protocol.OpcodeText, protocol.OpcodeBinary:
				conn.Receiver.Unmask()
				r.events.Post(api.Event{Kind: api.Message, Conn: conn.ID, Payload: conn.Receiver.Message()})
				conn.Receiver.ShiftBuffer()
				r.beginRecv(conn)
				return
			default:
				r.log.Printf("#%d: WARNING: unknown opcode %d", conn.ID, op)
			}
		} else {
			r.log.Printf("#%d: invalid frame", conn.ID)
		}
	}

	r.dropImpl(conn)
}

// sendFrame appends a serialized frame to the queue and starts a write
// when none is in flight.
func (r *Reactor) sendFrame(conn *session.Connection, frame []byte) {
	conn.SendQueue.Add(frame)
	if conn.SendQueue.Length() == 1 {
		r.sendNext(conn)
	}
}

func (r *Reactor) sendNext(conn *session.Connection) {
	conn.IsSending = true

	id := conn.ID
	sock := conn.Sock
	frame := conn.SendQueue.Peek().([]byte)

	go func() {
		_, err := sock.Write(frame)
		r.Post(func() {
			if c := r.table.Find(id); c != nil {
				r.onSendComplete(c, err)
			}
		})
	}()
}

func (r *Reactor) onSendComplete(conn *session.Connection, err error) {
	conn.IsSending = false

	if err != nil {
		r.log.Printf("#%d: send error: %v", conn.ID, err)
	} else if !conn.IsClosed {
		conn.SendQueue.Remove()
		if conn.SendQueue.Length() > 0 {
			r.sendNext(conn)
		}
		return
	}

	if conn.IsClosed {
		// the close deferred the socket teardown to let this write flush
		conn.CloseSocket()
	}
	r.dropImpl(conn)
}

// dropImpl closes the connection and posts Disconnect exactly once,
// then erases the entry as soon as no operation is in flight. A still
// pending read or write keeps the entry alive until its completion
// observes the closed state and lands here again.
func (r *Reactor) dropImpl(conn *session.Connection) {
	if !conn.IsClosed {
		conn.Close()
		r.events.Post(api.Event{Kind: api.Disconnect, Conn: conn.ID})
	}

	if !conn.IsReading && !conn.IsSending {
		r.table.Erase(conn.ID)
	}
}
