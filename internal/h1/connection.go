package h1

import (
	"strconv"
	"sync"

	"github.com/panjf2000/gnet/v2"
)

// DefaultBufferSize is the capacity of the per-connection receive scratch
// buffer when the configuration does not override it.
const DefaultBufferSize = 1024

// State identifies the single active phase of a connection's exchange.
// Transitions are strictly sequential for a given connection.
type State int

const (
	// StateReadingHeaders means bytes are being fed to the header parser.
	StateReadingHeaders State = iota
	// StateReadingBody means declared body bytes are being accumulated.
	StateReadingBody
	// StateWriting means the response write has been issued.
	StateWriting
	// StateClosed is terminal.
	StateClosed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateReadingHeaders:
		return "reading-headers"
	case StateReadingBody:
		return "reading-body"
	case StateWriting:
		return "writing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// sock is the subset of gnet.Conn a connection drives directly. Tests
// substitute an in-memory implementation.
type sock interface {
	AsyncWritev(bs [][]byte, callback gnet.AsyncCallback) error
	Close() error
}

// noDelaySetter is the optional low-latency capability of a socket.
type noDelaySetter interface {
	SetNoDelay(noDelay bool) error
}

// Connection drives one request/response exchange over an accepted socket.
// It owns the socket, a fixed-capacity receive buffer, one request, one
// response and the parser's running state; the handler and the event
// engine are shared collaborators. Exactly one exchange is served, then
// the socket is closed.
type Connection struct {
	conn    sock
	parser  *Parser
	handler Handler
	buf     []byte

	// mu is the connection's exclusive-execution domain: every state
	// transition, including the handler invocation and the async write
	// completion, runs under it, so no two steps for the same connection
	// ever interleave.
	mu        sync.Mutex
	state     State
	req       Request
	res       Response
	remaining int64
}

// NewConnection creates a connection bound to an accepted socket. A
// non-positive bufferSize selects DefaultBufferSize.
func NewConnection(c sock, handler Handler, bufferSize int) *Connection {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Connection{
		conn:    c,
		parser:  NewParser(),
		handler: handler,
		buf:     make([]byte, bufferSize),
		state:   StateReadingHeaders,
	}
}

// Start configures the socket for low-latency delivery when it supports
// that. A failure to set the option is logged and otherwise ignored.
func (c *Connection) Start() {
	if s, ok := c.conn.(noDelaySetter); ok {
		if err := s.SetNoDelay(true); err != nil {
			c.handler.Log("h1: set TCP_NODELAY: " + err.Error())
		}
	}
}

// State returns the connection's current state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Receive feeds freshly read bytes to the state machine. The data is
// chunked through the connection's fixed receive buffer, so arrival
// boundaries never change the outcome. Bytes arriving after the response
// write has been issued are dropped; there is no second request on a
// connection.
func (c *Connection) Receive(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(data) > 0 && (c.state == StateReadingHeaders || c.state == StateReadingBody) {
		n := copy(c.buf, data)
		data = data[n:]
		switch c.state {
		case StateReadingHeaders:
			c.readHeaders(c.buf[:n])
		case StateReadingBody:
			c.readBody(c.buf[:n])
		}
	}
}

// readHeaders advances the parser and decides where the exchange goes
// next: bad request, body accumulation, or straight to dispatch.
func (c *Connection) readHeaders(chunk []byte) {
	status, consumed := c.parser.ParseHeaders(&c.req, chunk)
	switch status {
	case ParseIncomplete:
		return
	case ParseMalformed:
		c.handler.Log("h1: malformed request: " + c.parser.Err().Error())
		c.badRequest()
		return
	}

	rest := chunk[consumed:]
	if !bodyExpected(c.req.Method) {
		c.dispatch()
		return
	}

	value, ok := c.req.HeaderValue("Content-Length")
	if !ok {
		c.badRequest()
		return
	}
	length, err := strconv.ParseInt(value, 10, 64)
	if err != nil || length < 0 {
		c.badRequest()
		return
	}
	if length == 0 {
		c.dispatch()
		return
	}

	c.remaining = length
	c.state = StateReadingBody
	if len(rest) > 0 {
		c.readBody(rest)
	}
}

// readBody appends received bytes to the request body, clamped to the
// declared length so a read delivering more than the outstanding remainder
// never corrupts the accounting or swallows bytes past the message.
func (c *Connection) readBody(chunk []byte) {
	n := int64(len(chunk))
	if n > c.remaining {
		n = c.remaining
	}
	c.req.Body = append(c.req.Body, chunk[:n]...)
	c.remaining -= n
	if c.remaining == 0 {
		c.dispatch()
	}
}

// dispatch invokes the handler synchronously with the completed request
// and issues the response write.
func (c *Connection) dispatch() {
	c.handler.ServeHTTP(&c.req, &c.res)
	c.write()
}

// badRequest replaces the response with the canned 400 reply. The handler
// is never invoked on this path.
func (c *Connection) badRequest() {
	c.res = *StockReply(400)
	c.write()
}

// write renders the response and issues a single vectorized write. The
// completion callback closes the socket whether the write succeeded (the
// graceful disconnect signal to the peer) or failed (the connection is
// simply dropped).
func (c *Connection) write() {
	c.state = StateWriting
	err := c.conn.AsyncWritev(c.res.ToBuffers(), func(_ gnet.Conn, err error) error {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		if err != nil {
			c.handler.Log("h1: response write failed: " + err.Error())
		}
		return c.conn.Close()
	})
	if err != nil {
		c.state = StateClosed
		c.handler.Log("h1: response write not issued: " + err.Error())
		_ = c.conn.Close()
	}
}

// bodyExpected reports whether the method carries a request body. The set
// is the body-bearing methods of HTTP/1.1 with a declared Content-Length.
func bodyExpected(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH":
		return true
	default:
		return false
	}
}
