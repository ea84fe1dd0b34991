// File: protocol/handshake.go
// Package protocol implements the RFC 6455 opening handshake.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Handshake is a pure function of the request bytes accumulated through
// the final CRLF CRLF: it parses the handshake view of the request,
// validates it, and produces either the 101 Switching Protocols reply
// or a status-line-only error reply.

package protocol

import (
	"crypto/sha1"
	"encoding/base64"
	"fmt"

	"github.com/momentics/embedws/internal/httpx"
)

// Validate applies the handshake rules in order; the first failure wins.
func Validate(rq *httpx.Request) httpx.Status {
	if rq.Method != httpx.MethodGET {
		return httpx.StatusMethodNotAllowed
	}
	if rq.Path != "/" {
		return httpx.StatusNotFound
	}
	if rq.Version != httpx.Version1_1 {
		return httpx.StatusHTTPVersionNotSupported
	}
	if rq.SecWebSocketVersion != 13 {
		return httpx.StatusNotImplemented
	}
	if !containsToken(rq.Connection, "upgrade") {
		return httpx.StatusBadRequest
	}
	if !containsProduct(rq.Upgrade, "websocket") {
		return httpx.StatusBadRequest
	}
	return httpx.StatusOK
}

func containsToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}

func containsProduct(products []httpx.Product, want string) bool {
	for _, p := range products {
		if p.Name == want {
			return true
		}
	}
	return false
}

// AcceptKey derives the Sec-WebSocket-Accept value from the client key,
// taken verbatim (including any '=' padding) and not decoded.
func AcceptKey(clientKey string) string {
	h := sha1.New()
	h.Write([]byte(clientKey))
	h.Write([]byte(WebSocketGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// Handshake processes one client request and returns the reply bytes
// and the resulting status. Only StatusOK upgrades the connection.
func Handshake(request []byte) ([]byte, httpx.Status) {
	rq, status := httpx.ParseRequest(request)
	if status == httpx.StatusOK {
		status = Validate(rq)
	}

	if status != httpx.StatusOK {
		return []byte(fmt.Sprintf("HTTP/1.1 %d :(\r\n\r\n", status)), status
	}

	reply := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + AcceptKey(rq.SecWebSocketKey) + "\r\n" +
		"\r\n"
	return []byte(reply), status
}
