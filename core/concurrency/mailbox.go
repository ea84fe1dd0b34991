// File: core/concurrency/mailbox.go
// Package concurrency
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Mailbox is the unbounded task inbox of the reactor goroutine. Post
// never blocks, so I/O helper goroutines and facade callers can always
// hand work off; the wake channel coalesces signals, and the consumer
// drains the queue fully before sleeping on it again.

package concurrency

import (
	"sync"

	"github.com/eapache/queue"
)

// Mailbox is a multi-producer, single-consumer FIFO of tasks.
type Mailbox struct {
	mu   sync.Mutex
	q    *queue.Queue
	wake chan struct{}
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{
		q:    queue.New(),
		wake: make(chan struct{}, 1),
	}
}

// Post enqueues task and signals the consumer. Never blocks.
func (m *Mailbox) Post(task func()) {
	m.mu.Lock()
	m.q.Add(task)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Take removes the head task, or returns false when the mailbox is
// empty.
func (m *Mailbox) Take() (func(), bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.q.Length() == 0 {
		return nil, false
	}
	return m.q.Remove().(func()), true
}

// Wake returns the channel the consumer sleeps on between bursts.
func (m *Mailbox) Wake() <-chan struct{} {
	return m.wake
}
