// File: internal/session/table.go
// Package session
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Table maps connection ids to their owning Connection. It is touched
// only from the reactor goroutine, so it carries no locking.

package session

import (
	"net"

	"github.com/momentics/embedws/api"
)

// Table owns the live connections and allocates their ids.
type Table struct {
	conns  map[api.ConnID]*Connection
	lastID api.ConnID
}

// NewTable returns an empty table. The first Add assigns id 1.
func NewTable() *Table {
	return &Table{conns: make(map[api.ConnID]*Connection)}
}

// Add creates a Connection for sock under the next id and returns it.
func (t *Table) Add(sock net.Conn) *Connection {
	t.lastID++
	c := newConnection(t.lastID, sock)
	t.conns[c.ID] = c
	return c
}

// Find returns the connection for id, or nil.
func (t *Table) Find(id api.ConnID) *Connection {
	return t.conns[id]
}

// Erase removes the entry for id.
func (t *Table) Erase(id api.ConnID) {
	delete(t.conns, id)
}

// CloseAll closes every connection without erasing it; erasure happens
// when the in-flight operations complete.
func (t *Table) CloseAll() {
	for _, c := range t.conns {
		c.Close()
	}
}

// Len returns the number of live entries.
func (t *Table) Len() int {
	return len(t.conns)
}
