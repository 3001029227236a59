// Package response implements the HTTPResponse model (C9): status line,
// header map, body, and wire serialization. Grounded on
// original_source/src/http/HTTPResponse.cpp for the field set and default
// headers.
package response

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Response is a single HTTP/1.1 response being built up by a handler.
type Response struct {
	Status        int
	StatusMessage string
	Headers       *Headers
	Body          []byte

	// StopServer marks the /stop response. The router sets it on the
	// Response of a KindStopThenRespond Decision; the supervisor decides to
	// shut down from that Decision kind (not from this field) and does so
	// only after the bytes have been fully written.
	StopServer bool
}

// New builds a Response with the default headers the spec requires on
// every response: Server, Date, Connection: close, and a default
// Content-Type.
func New(status int) *Response {
	r := &Response{
		Status:        status,
		StatusMessage: ReasonPhrase(status),
		Headers:       NewHeaders(),
	}
	r.Headers.Set("Server", "Webserv/1.0")
	r.Headers.Set("Date", time.Now().UTC().Format(time.RFC1123))
	r.Headers.Set("Connection", "close")
	r.Headers.Set("Content-Type", "text/html; charset=UTF-8")
	return r
}

// SetBody sets the body and its Content-Length header together, since the
// two must never drift apart.
func (r *Response) SetBody(body []byte) {
	r.Body = body
	r.Headers.Set("Content-Length", strconv.Itoa(len(body)))
}

// Serialize renders the response to wire bytes: status line, headers, the
// blank line, then the body.
func (r *Response) Serialize() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", r.Status, r.StatusMessage)
	r.Headers.Each(func(name, value string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", name, value)
	})
	buf.WriteString("\r\n")
	buf.Write(r.Body)
	return buf.Bytes()
}
