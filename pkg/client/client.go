// Package client holds the client-side value objects and configuration
// surface: request values, client options and the connection-manager
// contract. It deliberately contains no transport; implementations of
// ConnectionManager supply one.
package client

import (
	"context"
	"net"
	"time"
)

// Options configures a client. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	// FollowRedirects makes the client follow 3xx responses.
	FollowRedirects bool
	// CacheResolved caches resolved endpoints across requests.
	CacheResolved bool
	// UseProxy routes requests through the configured proxy.
	UseProxy bool
	// Timeout bounds a whole request/response exchange.
	Timeout time.Duration
	// CertificatePath points at a client TLS certificate.
	CertificatePath string
	// VerifyPath points at the CA bundle used to verify peers.
	VerifyPath string
}

// DefaultOptions returns the options a client starts from.
func DefaultOptions() Options {
	return Options{
		Timeout: 30 * time.Second,
	}
}

// Request is a client-side request value.
type Request struct {
	Method  string
	URL     string
	Headers [][2]string
	Body    []byte
}

// NewRequest builds a request for the given method and URL.
func NewRequest(method, url string) *Request {
	return &Request{Method: method, URL: url}
}

// AddHeader appends a header, preserving insertion order.
func (r *Request) AddHeader(name, value string) *Request {
	r.Headers = append(r.Headers, [2]string{name, value})
	return r
}

// Header returns the value of the first header matching name under ASCII
// case folding.
func (r *Request) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if equalFold(h[0], name) {
			return h[1], true
		}
	}
	return "", false
}

// SetBody replaces the request body.
func (r *Request) SetBody(b []byte) *Request {
	r.Body = b
	return r
}

// ConnectionManager maintains client connections. Implementations decide
// pooling, resolution caching and reuse policy.
type ConnectionManager interface {
	// GetConnection returns a connection suitable for the request.
	GetConnection(ctx context.Context, req *Request, opts Options) (net.Conn, error)
	// ClearResolvedCache drops any cached name resolutions.
	ClearResolvedCache()
	// Reset drops all pooled connections.
	Reset()
}

func equalFold(a, b string) bool {
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
