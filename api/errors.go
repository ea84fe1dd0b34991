// File: api/errors.go
// Package api
// Author: momentics <momentics@gmail.com>
//
// Sentinel errors surfaced by the facade.

package api

import "errors"

var (
	// ErrMessageTooLong is returned by SendText/SendBinary when the
	// payload exceeds the largest encodable frame length (2^32 - 1).
	// The connection remains open.
	ErrMessageTooLong = errors.New("websocket message is too long")

	// ErrAlreadyStarted is returned by Start on a running server.
	ErrAlreadyStarted = errors.New("server already started")

	// ErrNotStarted is returned by SendText/SendBinary when the server
	// is not running (before Start or after Stop).
	ErrNotStarted = errors.New("server not started")
)
