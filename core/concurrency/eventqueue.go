// File: core/concurrency/eventqueue.go
// Package concurrency provides the thread-safe queues of the reactor
// boundary.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// EventQueue is the producer→consumer FIFO between the reactor and the
// application's poll loop. Its mutex and the Mailbox's are the only
// locks shared across the reactor boundary.

package concurrency

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/momentics/embedws/api"
)

// EventQueue is an unbounded FIFO of events. Post appends from the
// reactor goroutine; Poll drains from any thread and never blocks.
type EventQueue struct {
	mu sync.Mutex
	q  *queue.Queue
}

// NewEventQueue returns an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{q: queue.New()}
}

// Post appends ev.
func (eq *EventQueue) Post(ev api.Event) {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	eq.q.Add(ev)
}

// Poll removes the head into *ev and returns true, or returns false
// when the queue is empty.
func (eq *EventQueue) Poll(ev *api.Event) bool {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	if eq.q.Length() == 0 {
		return false
	}
	*ev = eq.q.Remove().(api.Event)
	return true
}

// Pending returns the number of queued events.
func (eq *EventQueue) Pending() int {
	eq.mu.Lock()
	defer eq.mu.Unlock()
	return eq.q.Length()
}
