// Package h1 implements the per-connection HTTP/1.x request/response
// pipeline: incremental header parsing, Content-Length body accumulation,
// synchronous handler dispatch and a single response write, driven by the
// gnet event engine.
package h1

// Header is a single name/value pair as it appeared on the wire.
type Header struct {
	Name  string
	Value string
}

// Request is one inbound request. Headers keep their wire order; lookups
// fold ASCII case. The parser fills the request line and headers, the
// connection fills the body. The request is not mutated after it has been
// handed to a handler.
type Request struct {
	Method  string
	Target  string
	Version string
	Headers []Header
	Body    []byte
}

// HeaderValue returns the value of the first header whose name equals name
// under ASCII case folding.
func (r *Request) HeaderValue(name string) (string, bool) {
	for i := range r.Headers {
		if asciiEqualFold(r.Headers[i].Name, name) {
			return r.Headers[i].Value, true
		}
	}
	return "", false
}

// Reset clears the request fields for reuse.
func (r *Request) Reset() {
	r.Method = ""
	r.Target = ""
	r.Version = ""
	r.Headers = r.Headers[:0]
	r.Body = r.Body[:0]
}

// Handler turns a completed request into a response. Implementations also
// receive diagnostic messages from the connections they serve; a handler
// has no way to signal a protocol-level failure back to the connection, it
// may only shape the response.
type Handler interface {
	ServeHTTP(req *Request, res *Response)
	Log(message string)
}

// asciiEqualFold reports whether a equals b under ASCII case-insensitive
// comparison.
func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca := a[i]
		cb := b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca |= 0x20
		}
		if 'A' <= cb && cb <= 'Z' {
			cb |= 0x20
		}
		if ca != cb {
			return false
		}
	}
	return true
}
