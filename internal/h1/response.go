package h1

import (
	"strconv"

	"github.com/xiaoliukai/cpp-netlib/internal/date"
)

// Pre-allocated fragments for response assembly.
var (
	statusLine200   = []byte("HTTP/1.1 200 OK\r\n")
	headerSep       = []byte(": ")
	crlf            = []byte("\r\n")
	headerDate      = []byte("date: ")
	headerConnClose = []byte("connection: close\r\n")
	headerCL        = []byte("content-length: ")
)

// Response is the outbound message a handler populates. It renders itself
// into scatter-write byte ranges for a single vectorized write.
type Response struct {
	Status  int
	Headers []Header
	Body    []byte
}

// SetHeader sets the named header, replacing an existing value under ASCII
// case folding or appending a new pair.
func (r *Response) SetHeader(name, value string) {
	for i := range r.Headers {
		if asciiEqualFold(r.Headers[i].Name, name) {
			r.Headers[i].Value = value
			return
		}
	}
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
}

// HeaderValue returns the value of the first header matching name under
// ASCII case folding.
func (r *Response) HeaderValue(name string) (string, bool) {
	for i := range r.Headers {
		if asciiEqualFold(r.Headers[i].Name, name) {
			return r.Headers[i].Value, true
		}
	}
	return "", false
}

// Reset clears the response for reuse.
func (r *Response) Reset() {
	r.Status = 0
	r.Headers = r.Headers[:0]
	r.Body = r.Body[:0]
}

// ToBuffers renders the response into byte ranges suitable for a scatter
// write: one buffer holding the status line and header block, and the body
// buffer as-is. A content-length header is added when the handler did not
// set one, along with date and connection headers.
func (r *Response) ToBuffers() [][]byte {
	status := r.Status
	if status == 0 {
		status = 200
	}

	head := make([]byte, 0, 256+headerBytes(r.Headers))
	if status == 200 {
		head = append(head, statusLine200...)
	} else {
		head = append(head, "HTTP/1.1 "...)
		head = strconv.AppendInt(head, int64(status), 10)
		head = append(head, ' ')
		head = append(head, statusText(status)...)
		head = append(head, crlf...)
	}

	if _, ok := r.HeaderValue("Content-Length"); !ok {
		head = append(head, headerCL...)
		head = strconv.AppendInt(head, int64(len(r.Body)), 10)
		head = append(head, crlf...)
	}
	if _, ok := r.HeaderValue("Date"); !ok {
		head = append(head, headerDate...)
		head = append(head, date.Current()...)
		head = append(head, crlf...)
	}

	for i := range r.Headers {
		head = append(head, r.Headers[i].Name...)
		head = append(head, headerSep...)
		head = append(head, r.Headers[i].Value...)
		head = append(head, crlf...)
	}

	// Every exchange ends the connection.
	head = append(head, headerConnClose...)
	head = append(head, crlf...)

	if len(r.Body) == 0 {
		return [][]byte{head}
	}
	return [][]byte{head, r.Body}
}

func headerBytes(hs []Header) int {
	n := 0
	for i := range hs {
		n += len(hs[i].Name) + len(hs[i].Value) + 4
	}
	return n
}

// StockReply builds a canned response for the given status code with a
// plain-text body carrying the status text.
func StockReply(status int) *Response {
	body := statusText(status)
	return &Response{
		Status: status,
		Headers: []Header{
			{Name: "content-type", Value: "text/plain; charset=utf-8"},
			{Name: "content-length", Value: strconv.Itoa(len(body))},
		},
		Body: []byte(body),
	}
}

// statusText returns the reason phrase for common HTTP status codes.
func statusText(code int) string {
	switch code {
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 202:
		return "Accepted"
	case 204:
		return "No Content"
	case 301:
		return "Moved Permanently"
	case 302:
		return "Found"
	case 304:
		return "Not Modified"
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 413:
		return "Payload Too Large"
	case 414:
		return "URI Too Long"
	case 429:
		return "Too Many Requests"
	case 500:
		return "Internal Server Error"
	case 501:
		return "Not Implemented"
	case 502:
		return "Bad Gateway"
	case 503:
		return "Service Unavailable"
	case 504:
		return "Gateway Timeout"
	default:
		return "Unknown"
	}
}
