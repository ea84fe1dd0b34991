// File: reactor/reactor.go
// Package reactor implements the single-goroutine executor that owns
// all connection state.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One worker goroutine runs the loop; it is the only code that touches
// the connection table or any Connection field, apart from the receiver
// buffer that a pending read's helper goroutine fills. Work reaches it
// two ways: completions posted by the I/O helper goroutines, and tasks
// posted by the facade. A panic escaping a task is logged and the loop
// resumes; the connection that task was handling is not dropped and
// stays in the table.

package reactor

import (
	"log"
	"net"
	"runtime"
	"sync/atomic"

	"github.com/momentics/embedws/api"
	"github.com/momentics/embedws/core/concurrency"
	"github.com/momentics/embedws/internal/session"
	"github.com/momentics/embedws/protocol"
)

// Reactor multiplexes accept, read and write completions against the
// connection table on a single goroutine.
type Reactor struct {
	log    *log.Logger
	ln     net.Listener
	table  *session.Table
	events *concurrency.EventQueue
	mb     *concurrency.Mailbox

	stopped    atomic.Bool
	done       chan struct{}
	acceptDone chan struct{}
}

// New builds a reactor around an already-bound listener.
func New(ln net.Listener, events *concurrency.EventQueue, logger *log.Logger) *Reactor {
	return &Reactor{
		log:        logger,
		ln:         ln,
		table:      session.NewTable(),
		events:     events,
		mb:         concurrency.NewMailbox(),
		done:       make(chan struct{}),
		acceptDone: make(chan struct{}),
	}
}

// Start launches the worker and the accept loop.
func (r *Reactor) Start() {
	go r.run()
	go r.acceptLoop()
}

// Post enqueues a task for the worker goroutine. Never blocks.
func (r *Reactor) Post(task func()) {
	r.mb.Post(task)
}

// PostSend enqueues a send for id. Unknown ids are a silent no-op by
// the time the task runs.
func (r *Reactor) PostSend(id api.ConnID, op protocol.Opcode, payload []byte) {
	r.Post(func() {
		conn := r.table.Find(id)
		if conn == nil {
			return
		}
		frame, err := protocol.EncodeFrame(op, payload)
		if err != nil {
			r.log.Printf("#%d: send error: %v", id, err)
			return
		}
		r.sendFrame(conn, frame)
	})
}

// PostDrop enqueues a drop for id. Unknown ids are a silent no-op.
func (r *Reactor) PostDrop(id api.ConnID) {
	r.Post(func() {
		if conn := r.table.Find(id); conn != nil {
			r.dropImpl(conn)
		}
	})
}

// Stop shuts the reactor down and blocks until the worker goroutine
// exits. The listener closes, every connection closes, and in-flight
// operations drain through their completion handlers.
func (r *Reactor) Stop() {
	r.Post(func() {
		r.stopped.Store(true)
		_ = r.ln.Close()
		r.table.CloseAll()
	})
	<-r.done
	<-r.acceptDone
}

// run is the worker goroutine body. It drains the mailbox, then either
// exits (stopped and no connection left to drain) or sleeps until the
// next post.
func (r *Reactor) run() {
	runtime.LockOSThread()
	defer close(r.done)

	for {
		if task, ok := r.mb.Take(); ok {
			r.runTask(task)
			continue
		}
		if r.stopped.Load() && r.table.Len() == 0 {
			return
		}
		<-r.mb.Wake()
	}
}

func (r *Reactor) runTask(task func()) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Printf("ERROR: %v", p)
		}
	}()
	task()
}
