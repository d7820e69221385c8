package netlib

import (
	"context"

	"github.com/xiaoliukai/cpp-netlib/internal/h1"
)

// newTestContext builds a Context around an in-memory request, the way
// the handler adapter does during a real exchange.
func newTestContext(method, target string, headers [][2]string, body []byte) *Context {
	req := &h1.Request{
		Method:  method,
		Target:  target,
		Version: "HTTP/1.1",
		Body:    body,
	}
	for _, h := range headers {
		req.Headers = append(req.Headers, h1.Header{Name: h[0], Value: h[1]})
	}
	return newContext(context.Background(), req, &h1.Response{})
}
