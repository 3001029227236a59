// Package conn implements the per-client Connection (C3): fd, read/write
// buffering, parser state, current request, activity timestamp, and
// lifecycle state, per §3's Connection invariants. See DESIGN.md's `conn`
// entry; each Conn is a supervisor-owned pointer rather than copied by
// value.
package conn

import (
	"time"

	"github.com/webserv/webserv/connid"
	"github.com/webserv/webserv/httpparse"
)

// State is the connection lifecycle state from §4.4.
type State int

const (
	StateReadingRequest State = iota
	StateProcessingRequest
	StateSendingResponse
	StateDone
)

// Conn holds everything the supervisor needs to drive one client through
// the state machine. The zero value is not usable; construct with New.
type Conn struct {
	FD   int
	ID   string
	Port uint16 // the listener port this connection was accepted on

	State State

	Parser *httpparse.Parser

	WriteBuffer []byte
	WriteOffset int

	LastActivity time.Time

	// StopAfterWrite is set when routing produced the /stop sentinel
	// response: once the write buffer fully drains, the supervisor shuts
	// the whole server down instead of just dropping this connection.
	StopAfterWrite bool
}

// New constructs a Conn for a freshly accepted, already-non-blocking fd.
// Invariant from §3: after construction the fd is non-blocking and
// last_activity is now.
func New(fd int, port uint16) *Conn {
	return &Conn{
		FD:           fd,
		ID:           connid.New(),
		Port:         port,
		State:        StateReadingRequest,
		Parser:       httpparse.New(),
		LastActivity: time.Now(),
	}
}

// Touch refreshes the activity timestamp after a successful read or write.
func (c *Conn) Touch() {
	c.LastActivity = time.Now()
}

// Idle reports whether this connection has been silent for at least
// timeout, per §4.8's sweep.
func (c *Conn) Idle(timeout time.Duration) bool {
	return time.Since(c.LastActivity) >= timeout
}

// QueueResponse loads the serialized response bytes into the write buffer
// and transitions to SENDING_RESPONSE, matching the §3 invariant that
// state == SENDING_RESPONSE implies a non-empty write buffer.
func (c *Conn) QueueResponse(wire []byte, stopAfter bool) {
	c.WriteBuffer = wire
	c.WriteOffset = 0
	c.StopAfterWrite = stopAfter
	c.State = StateSendingResponse
}

// Pending reports whether bytes remain to be written.
func (c *Conn) Pending() bool {
	return c.WriteOffset < len(c.WriteBuffer)
}

// Remaining returns the unwritten tail of the write buffer.
func (c *Conn) Remaining() []byte {
	return c.WriteBuffer[c.WriteOffset:]
}

// Advance records n more bytes as written.
func (c *Conn) Advance(n int) {
	c.WriteOffset += n
}
