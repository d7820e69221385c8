package h1

import (
	"bytes"
	"strings"
	"testing"
)

func render(r *Response) string {
	var out bytes.Buffer
	for _, b := range r.ToBuffers() {
		out.Write(b)
	}
	return out.String()
}

func TestResponse_ToBuffers(t *testing.T) {
	res := &Response{
		Status: 200,
		Headers: []Header{
			{Name: "content-type", Value: "text/plain"},
		},
		Body: []byte("hello"),
	}

	wire := render(res)

	if !strings.HasPrefix(wire, "HTTP/1.1 200 OK\r\n") {
		t.Errorf("Expected status line prefix, got %q", wire)
	}
	if !strings.Contains(wire, "content-type: text/plain\r\n") {
		t.Errorf("Expected content-type header in %q", wire)
	}
	if !strings.Contains(wire, "content-length: 5\r\n") {
		t.Errorf("Expected generated content-length header in %q", wire)
	}
	if !strings.Contains(wire, "date: ") {
		t.Errorf("Expected date header in %q", wire)
	}
	if !strings.Contains(wire, "connection: close\r\n") {
		t.Errorf("Expected connection close header in %q", wire)
	}
	if !strings.HasSuffix(wire, "\r\n\r\nhello") {
		t.Errorf("Expected blank line then body, got %q", wire)
	}
}

func TestResponse_ToBuffers_KeepsExplicitContentLength(t *testing.T) {
	res := &Response{
		Status:  200,
		Headers: []Header{{Name: "Content-Length", Value: "0"}},
	}

	wire := render(res)
	if strings.Count(strings.ToLower(wire), "content-length") != 1 {
		t.Errorf("Expected exactly one content-length header in %q", wire)
	}
}

func TestResponse_ToBuffers_ZeroStatusDefaultsTo200(t *testing.T) {
	res := &Response{Body: []byte("ok")}
	if wire := render(res); !strings.HasPrefix(wire, "HTTP/1.1 200 OK\r\n") {
		t.Errorf("Expected default 200 status line, got %q", wire)
	}
}

func TestResponse_SetHeader(t *testing.T) {
	res := &Response{}
	res.SetHeader("X-Test", "one")
	res.SetHeader("x-test", "two")
	res.SetHeader("Other", "three")

	if len(res.Headers) != 2 {
		t.Fatalf("Expected 2 headers, got %d", len(res.Headers))
	}
	if v, _ := res.HeaderValue("X-TEST"); v != "two" {
		t.Errorf("Expected replaced value two, got %q", v)
	}
}

func TestStockReply(t *testing.T) {
	res := StockReply(400)

	if res.Status != 400 {
		t.Errorf("Expected status 400, got %d", res.Status)
	}
	if !bytes.Equal(res.Body, []byte("Bad Request")) {
		t.Errorf("Expected body %q, got %q", "Bad Request", res.Body)
	}
	if v, ok := res.HeaderValue("content-length"); !ok || v != "11" {
		t.Errorf("Expected content-length 11, got %q (found %v)", v, ok)
	}
	if v, ok := res.HeaderValue("content-type"); !ok || !strings.HasPrefix(v, "text/plain") {
		t.Errorf("Expected text/plain content-type, got %q (found %v)", v, ok)
	}

	if wire := render(res); !strings.HasPrefix(wire, "HTTP/1.1 400 Bad Request\r\n") {
		t.Errorf("Expected 400 status line, got %q", wire)
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "OK"},
		{400, "Bad Request"},
		{404, "Not Found"},
		{500, "Internal Server Error"},
		{503, "Service Unavailable"},
		{799, "Unknown"},
	}
	for _, tt := range tests {
		if got := statusText(tt.code); got != tt.want {
			t.Errorf("statusText(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
