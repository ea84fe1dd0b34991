// File: protocol/handshake_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol_test

import (
	"testing"

	"github.com/momentics/embedws/internal/httpx"
	"github.com/momentics/embedws/protocol"
)

func validRequest() *httpx.Request {
	return &httpx.Request{
		Method:              httpx.MethodGET,
		Path:                "/",
		Version:             httpx.Version1_1,
		Upgrade:             []httpx.Product{{Name: "websocket"}},
		Connection:          []string{"keep-alive", "upgrade"},
		SecWebSocketVersion: 13,
		SecWebSocketKey:     "AA==",
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*httpx.Request)
		want   httpx.Status
	}{
		{"ok", func(rq *httpx.Request) {}, httpx.StatusOK},
		{"not GET", func(rq *httpx.Request) { rq.Method = httpx.MethodPOST }, httpx.StatusMethodNotAllowed},
		{"wrong path", func(rq *httpx.Request) { rq.Path = "/foo" }, httpx.StatusNotFound},
		{"not HTTP/1.1", func(rq *httpx.Request) { rq.Version = httpx.Version1_0 }, httpx.StatusHTTPVersionNotSupported},
		{"wrong ws version", func(rq *httpx.Request) { rq.SecWebSocketVersion = 1 }, httpx.StatusNotImplemented},
		{"no websocket product", func(rq *httpx.Request) { rq.Upgrade = []httpx.Product{{Name: "foo"}} }, httpx.StatusBadRequest},
		{"no upgrade token", func(rq *httpx.Request) { rq.Connection = []string{"keep-alive"} }, httpx.StatusBadRequest},
	}
	for _, c := range cases {
		rq := validRequest()
		c.mutate(rq)
		if got := protocol.Validate(rq); got != c.want {
			t.Errorf("%s: status = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestAcceptKey(t *testing.T) {
	// RFC 6455 §1.3 sample nonce
	got := protocol.AcceptKey("dGhlIHNhbXBsZSBub25jZQ==")
	if got != "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=" {
		t.Errorf("accept key = %q", got)
	}
}

func TestHandshakeReply(t *testing.T) {
	request := "GET / HTTP/1.1\r\n" +
		"Host: localhost\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"Sec-WebSocket-Version: 13\r\n" +
		"\r\n"

	reply, status := protocol.Handshake([]byte(request))
	if status != httpx.StatusOK {
		t.Fatalf("status = %d", status)
	}
	want := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n" +
		"\r\n"
	if string(reply) != want {
		t.Errorf("reply = %q", reply)
	}
}

func TestHandshakeErrorReply(t *testing.T) {
	request := "POST / HTTP/1.1\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: AA==\r\n" +
		"Sec-WebSocket-Version: 13\r\n" +
		"\r\n"

	reply, status := protocol.Handshake([]byte(request))
	if status != httpx.StatusMethodNotAllowed {
		t.Fatalf("status = %d", status)
	}
	if string(reply) != "HTTP/1.1 405 :(\r\n\r\n" {
		t.Errorf("reply = %q", reply)
	}
}

func TestHandshakeMalformedRequest(t *testing.T) {
	reply, status := protocol.Handshake([]byte("not http\r\n\r\n"))
	if status != httpx.StatusBadRequest {
		t.Fatalf("status = %d", status)
	}
	if string(reply) != "HTTP/1.1 400 :(\r\n\r\n" {
		t.Errorf("reply = %q", reply)
	}
}
