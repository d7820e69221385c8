package h1

import (
	"bytes"
	"fmt"
)

// ParseStatus is the tri-state outcome of feeding bytes to the parser.
type ParseStatus int

const (
	// ParseIncomplete means the header block is not finished yet; feed more
	// bytes as they arrive.
	ParseIncomplete ParseStatus = iota
	// ParseComplete means the request line and header block were parsed.
	ParseComplete
	// ParseMalformed means the input can never form a valid header block.
	ParseMalformed
)

// String returns a human-readable name for the status.
func (s ParseStatus) String() string {
	switch s {
	case ParseIncomplete:
		return "incomplete"
	case ParseComplete:
		return "complete"
	case ParseMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

type parserPhase int

const (
	phaseRequestLine parserPhase = iota
	phaseHeaders
	phaseDone
	phaseFailed
)

// maxHeaderBytes bounds the total size of the request line plus header
// block, so a peer that never terminates a line cannot grow the carry-over
// buffer without limit.
const maxHeaderBytes = 64 << 10

// Parser incrementally parses a request line and header block. It retains
// its own progress between calls, so the caller may feed it successive
// buffer slices as reads complete and each call resumes where the previous
// one stopped.
type Parser struct {
	phase    parserPhase
	partial  []byte // unterminated tail of the last fed slice
	consumed int    // header bytes seen so far, for the size guard
	err      error
}

// NewParser creates a parser positioned at the request line.
func NewParser() *Parser {
	return &Parser{}
}

// Reset returns the parser to its initial state.
func (p *Parser) Reset() {
	p.phase = phaseRequestLine
	p.partial = nil
	p.consumed = 0
	p.err = nil
}

// Err returns the reason for a ParseMalformed result.
func (p *Parser) Err() error {
	return p.err
}

// ParseHeaders consumes data and advances the parse. It returns the parse
// status and the number of bytes of data consumed. On ParseComplete the
// consumed count points one past the blank line ending the header block;
// any bytes beyond it belong to the message body. Once the parser has
// reported ParseComplete or ParseMalformed, further calls return the same
// status without consuming anything.
func (p *Parser) ParseHeaders(req *Request, data []byte) (ParseStatus, int) {
	switch p.phase {
	case phaseDone:
		return ParseComplete, 0
	case phaseFailed:
		return ParseMalformed, 0
	}

	pos := 0
	for {
		idx := bytes.IndexByte(data[pos:], '\n')
		if idx == -1 {
			p.partial = append(p.partial, data[pos:]...)
			p.consumed += len(data) - pos
			if p.consumed > maxHeaderBytes {
				return p.fail(fmt.Errorf("header block exceeds %d bytes", maxHeaderBytes)), len(data)
			}
			return ParseIncomplete, len(data)
		}

		line := data[pos : pos+idx]
		pos += idx + 1
		p.consumed += idx + 1
		if p.consumed > maxHeaderBytes {
			return p.fail(fmt.Errorf("header block exceeds %d bytes", maxHeaderBytes)), pos
		}
		if len(p.partial) > 0 {
			line = append(p.partial, line...)
			p.partial = nil
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})

		switch p.phase {
		case phaseRequestLine:
			if err := parseRequestLine(req, line); err != nil {
				return p.fail(err), pos
			}
			p.phase = phaseHeaders
		case phaseHeaders:
			if len(line) == 0 {
				p.phase = phaseDone
				return ParseComplete, pos
			}
			if err := parseHeaderLine(req, line); err != nil {
				return p.fail(err), pos
			}
		}
	}
}

func (p *Parser) fail(err error) ParseStatus {
	p.phase = phaseFailed
	p.err = err
	return ParseMalformed
}

// parseRequestLine parses METHOD SP TARGET SP VERSION.
func parseRequestLine(req *Request, line []byte) error {
	parts := bytes.SplitN(line, []byte{' '}, 3)
	if len(parts) != 3 || len(parts[0]) == 0 || len(parts[1]) == 0 {
		return fmt.Errorf("invalid request line %q", line)
	}
	version := string(parts[2])
	if version != "HTTP/1.1" && version != "HTTP/1.0" {
		return fmt.Errorf("unsupported HTTP version %q", version)
	}
	req.Method = string(parts[0])
	req.Target = string(parts[1])
	req.Version = version
	return nil
}

// parseHeaderLine parses NAME ":" OWS VALUE OWS and appends it to the
// request's header list.
func parseHeaderLine(req *Request, line []byte) error {
	colon := bytes.IndexByte(line, ':')
	if colon == -1 {
		return fmt.Errorf("invalid header line %q", line)
	}
	name := bytes.TrimSpace(line[:colon])
	if len(name) == 0 {
		return fmt.Errorf("empty header name in %q", line)
	}
	value := bytes.TrimSpace(line[colon+1:])
	req.Headers = append(req.Headers, Header{Name: string(name), Value: string(value)})
	return nil
}
