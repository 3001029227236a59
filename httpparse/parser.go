package httpparse

import (
	"bytes"
	"strconv"
	"strings"
)

type Phase int

const (
	PhaseLine Phase = iota
	PhaseHeaders
	PhaseBody
	PhaseComplete
	PhaseError
)

// Parser is a restartable incremental HTTP/1.1 parser. Feed may be called
// any number of times with successive byte chunks; all state (phase,
// unconsumed bytes, partially-built request) persists across calls until
// Reset.
type Parser struct {
	phase Phase
	buf   []byte

	req *Request
}

func New() *Parser {
	p := &Parser{}
	p.Reset()
	return p
}

// Reset returns the parser to its initial state with a fresh, empty
// Request, per the "reset on connection reuse" lifecycle note.
func (p *Parser) Reset() {
	p.phase = PhaseLine
	p.buf = nil
	p.req = newRequest()
}

func (p *Parser) Phase() Phase { return p.phase }

// Request returns the request being built. Only safe to read fully once
// Phase() == PhaseComplete.
func (p *Parser) Request() *Request { return p.req }

// Feed appends data to the parser's internal buffer and advances the state
// machine as far as possible. It never blocks and never requires all
// bytes to arrive in one call.
func (p *Parser) Feed(data []byte) {
	if p.phase == PhaseError || p.phase == PhaseComplete {
		return
	}
	p.buf = append(p.buf, data...)
	p.advance()
}

func (p *Parser) fail() {
	p.phase = PhaseError
	p.req.IsValid = false
}

func (p *Parser) advance() {
	for {
		switch p.phase {
		case PhaseLine:
			if !p.parseLine() {
				return
			}
		case PhaseHeaders:
			if !p.parseHeaders() {
				return
			}
		case PhaseBody:
			if !p.parseBody() {
				return
			}
		default:
			return
		}
	}
}

// parseLine consumes the request line up to and including its CRLF.
// Returns true if it made progress (either advanced phase or needs more
// data is indicated by returning false without changing phase).
func (p *Parser) parseLine() bool {
	idx := bytes.Index(p.buf, []byte("\r\n"))
	if idx < 0 {
		return false
	}
	line := string(p.buf[:idx])
	p.buf = p.buf[idx+2:]

	tokens := strings.Split(line, " ")
	if len(tokens) != 3 {
		p.fail()
		return true
	}
	method, target, version := tokens[0], tokens[1], tokens[2]

	switch method {
	case "GET", "POST", "DELETE", "PUT":
		p.req.Method = Method(method)
	default:
		p.fail()
		return true
	}

	switch version {
	case string(Version10):
		p.req.Version = Version10
	case string(Version11):
		p.req.Version = Version11
	default:
		p.fail()
		return true
	}

	if target == "" || target[0] != '/' || !isValidTarget(target) {
		p.fail()
		return true
	}
	p.req.SetURI(target)

	p.phase = PhaseHeaders
	return true
}

func isValidTarget(target string) bool {
	for i := 0; i < len(target); i++ {
		b := target[i]
		if b < 0x20 || b > 0x7E {
			return false
		}
	}
	return true
}

// parseHeaders consumes header lines until the blank line terminating the
// header block.
func (p *Parser) parseHeaders() bool {
	for {
		idx := bytes.Index(p.buf, []byte("\r\n"))
		if idx < 0 {
			return false
		}
		line := p.buf[:idx]
		p.buf = p.buf[idx+2:]

		if len(line) == 0 {
			p.phase = PhaseBody
			return true
		}

		colon := bytes.IndexByte(line, ':')
		if colon < 0 {
			p.fail()
			return true
		}
		name := strings.TrimSpace(string(line[:colon]))
		value := strings.TrimSpace(string(line[colon+1:]))
		if !isValidHeaderName(name) {
			p.fail()
			return true
		}

		p.req.setHeader(name, value)
		lower := strings.ToLower(name)
		switch lower {
		case "content-length":
			// Malformed Content-Length silently becomes zero, matching
			// the source's behavior (see DESIGN.md open question 3).
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				n = 0
			}
			p.req.ContentLength = n
		case "transfer-encoding":
			p.req.IsChunked = strings.ToLower(value) == "chunked"
		}
	}
}

func isValidHeaderName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		b := name[i]
		switch {
		case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9', b == '_', b == '-':
		default:
			return false
		}
	}
	return true
}

// parseBody dispatches to the body-framing strategy selected by method,
// Transfer-Encoding, and Content-Length, per §4.3.
func (p *Parser) parseBody() bool {
	switch p.req.Method {
	case MethodGet, MethodDelete:
		return p.complete()
	}

	if p.req.IsChunked {
		return p.parseChunked()
	}

	if p.req.ContentLength == 0 {
		return p.complete()
	}

	if uint64(len(p.buf)) < p.req.ContentLength {
		return false
	}
	p.req.Body = append([]byte(nil), p.buf[:p.req.ContentLength]...)
	p.buf = p.buf[p.req.ContentLength:]
	return p.complete()
}

func (p *Parser) complete() bool {
	p.phase = PhaseComplete
	p.req.IsComplete = true
	p.req.IsValid = true
	return true
}
