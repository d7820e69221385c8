package netlib

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/xiaoliukai/cpp-netlib/internal/h1"
)

// Context carries one request/response exchange through the handler chain.
// The request side is read-only; the response side is written through the
// setter methods and rendered once the handler chain returns.
type Context struct {
	ctx context.Context
	req *h1.Request
	res *h1.Response
}

func newContext(ctx context.Context, req *h1.Request, res *h1.Response) *Context {
	return &Context{ctx: ctx, req: req, res: res}
}

// Context returns the context carrying tracing and cancellation state.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// WithContext replaces the carried context.
func (c *Context) WithContext(ctx context.Context) {
	c.ctx = ctx
}

// Method returns the request method.
func (c *Context) Method() string { return c.req.Method }

// Target returns the raw request target.
func (c *Context) Target() string { return c.req.Target }

// Version returns the request's HTTP version.
func (c *Context) Version() string { return c.req.Version }

// RequestHeader returns the value of the named request header, folding
// ASCII case, or "" when absent.
func (c *Context) RequestHeader(name string) string {
	v, _ := c.req.HeaderValue(name)
	return v
}

// RequestHeaders returns a copy of the request headers in wire order.
func (c *Context) RequestHeaders() [][2]string {
	hs := make([][2]string, len(c.req.Headers))
	for i, h := range c.req.Headers {
		hs[i] = [2]string{h.Name, h.Value}
	}
	return hs
}

// Body returns the request body.
func (c *Context) Body() []byte { return c.req.Body }

// Status returns the response status code set so far (0 if unset).
func (c *Context) Status() int { return c.res.Status }

// SetStatus sets the response status code.
func (c *Context) SetStatus(code int) { c.res.Status = code }

// SetHeader sets a response header, replacing any existing value.
func (c *Context) SetHeader(name, value string) { c.res.SetHeader(name, value) }

// ResponseHeader returns the value of the named response header.
func (c *Context) ResponseHeader(name string) string {
	v, _ := c.res.HeaderValue(name)
	return v
}

// ResponseBody returns the response body accumulated so far.
func (c *Context) ResponseBody() []byte { return c.res.Body }

// SetBody replaces the response body.
func (c *Context) SetBody(b []byte) { c.res.Body = b }

// Write appends to the response body.
func (c *Context) Write(b []byte) (int, error) {
	c.res.Body = append(c.res.Body, b...)
	return len(b), nil
}

// String writes a plain-text response with the given status.
func (c *Context) String(status int, s string) error {
	c.res.Status = status
	c.res.SetHeader("content-type", "text/plain; charset=utf-8")
	c.res.SetHeader("content-length", strconv.Itoa(len(s)))
	c.res.Body = append(c.res.Body[:0], s...)
	return nil
}

// JSON writes a JSON response with the given status.
func (c *Context) JSON(status int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.res.Status = status
	c.res.SetHeader("content-type", "application/json; charset=utf-8")
	c.res.SetHeader("content-length", strconv.Itoa(len(data)))
	c.res.Body = append(c.res.Body[:0], data...)
	return nil
}
