package netlib

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"strings"
	"testing"
)

func TestAccessLog_TextFormat(t *testing.T) {
	var out bytes.Buffer
	mw := AccessLogWithConfig(AccessLogConfig{Output: &out, Format: "text"})

	handler := mw(HandlerFunc(func(ctx *Context) error {
		return ctx.String(200, "ok")
	}))

	ctx := newTestContext("GET", "/hello", nil, nil)
	if err := handler.ServeHTTP(ctx); err != nil {
		t.Fatalf("ServeHTTP() error = %v", err)
	}

	line := out.String()
	if !strings.Contains(line, "GET /hello 200") {
		t.Errorf("Expected method/target/status in log line, got %q", line)
	}
}

func TestAccessLog_JSONFormat(t *testing.T) {
	var out bytes.Buffer
	mw := AccessLogWithConfig(AccessLogConfig{Output: &out, Format: "json"})

	handler := mw(HandlerFunc(func(ctx *Context) error {
		return ctx.String(404, "gone")
	}))

	ctx := newTestContext("GET", "/missing", nil, nil)
	_ = handler.ServeHTTP(ctx)

	var entry map[string]any
	if err := json.Unmarshal(out.Bytes(), &entry); err != nil {
		t.Fatalf("Log line is not valid JSON: %v (%q)", err, out.String())
	}
	if entry["method"] != "GET" || entry["target"] != "/missing" {
		t.Errorf("Unexpected entry: %v", entry)
	}
	if entry["status"].(float64) != 404 {
		t.Errorf("Expected status 404, got %v", entry["status"])
	}
}

func TestAccessLog_SkipTargets(t *testing.T) {
	var out bytes.Buffer
	mw := AccessLogWithConfig(AccessLogConfig{Output: &out, SkipTargets: []string{"/health"}})

	handler := mw(HandlerFunc(func(ctx *Context) error {
		return ctx.String(200, "ok")
	}))

	_ = handler.ServeHTTP(newTestContext("GET", "/health", nil, nil))
	if out.Len() != 0 {
		t.Errorf("Expected no log output for skipped target, got %q", out.String())
	}
}

func TestRecovery_ConvertsPanicTo500(t *testing.T) {
	handler := Recovery()(HandlerFunc(func(_ *Context) error {
		panic("boom")
	}))

	ctx := newTestContext("GET", "/", nil, nil)
	if err := handler.ServeHTTP(ctx); err != nil {
		t.Fatalf("Expected recovered handler to return nil, got %v", err)
	}
	if ctx.Status() != 500 {
		t.Errorf("Expected status 500, got %d", ctx.Status())
	}
	if string(ctx.ResponseBody()) != "Internal Server Error" {
		t.Errorf("Unexpected body: %q", ctx.ResponseBody())
	}
}

func TestRecovery_PassesThrough(t *testing.T) {
	handler := Recovery()(HandlerFunc(func(ctx *Context) error {
		return ctx.String(201, "made")
	}))

	ctx := newTestContext("POST", "/", nil, nil)
	if err := handler.ServeHTTP(ctx); err != nil {
		t.Fatalf("ServeHTTP() error = %v", err)
	}
	if ctx.Status() != 201 {
		t.Errorf("Expected status 201, got %d", ctx.Status())
	}
}

func TestCompress_Gzip(t *testing.T) {
	payload := strings.Repeat("compressible ", 200)
	mw := CompressWithConfig(CompressConfig{Level: 6, MinSize: 64})

	handler := mw(HandlerFunc(func(ctx *Context) error {
		return ctx.String(200, payload)
	}))

	ctx := newTestContext("GET", "/", [][2]string{{"Accept-Encoding", "gzip"}}, nil)
	if err := handler.ServeHTTP(ctx); err != nil {
		t.Fatalf("ServeHTTP() error = %v", err)
	}

	if enc := ctx.ResponseHeader("content-encoding"); enc != "gzip" {
		t.Fatalf("Expected gzip encoding, got %q", enc)
	}
	if len(ctx.ResponseBody()) >= len(payload) {
		t.Errorf("Expected compressed body to shrink (%d >= %d)", len(ctx.ResponseBody()), len(payload))
	}

	reader, err := gzip.NewReader(bytes.NewReader(ctx.ResponseBody()))
	if err != nil {
		t.Fatalf("Response body is not gzip: %v", err)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("Decompressing: %v", err)
	}
	if string(decoded) != payload {
		t.Error("Round-tripped body differs from original")
	}
}

func TestCompress_BrotliPreferred(t *testing.T) {
	payload := strings.Repeat("compressible ", 200)
	mw := CompressWithConfig(CompressConfig{Level: 6, MinSize: 64})

	handler := mw(HandlerFunc(func(ctx *Context) error {
		return ctx.String(200, payload)
	}))

	ctx := newTestContext("GET", "/", [][2]string{{"Accept-Encoding", "gzip, br"}}, nil)
	if err := handler.ServeHTTP(ctx); err != nil {
		t.Fatalf("ServeHTTP() error = %v", err)
	}
	if enc := ctx.ResponseHeader("content-encoding"); enc != "br" {
		t.Errorf("Expected brotli encoding, got %q", enc)
	}
}

func TestCompress_SkipsWithoutAcceptEncoding(t *testing.T) {
	payload := strings.Repeat("compressible ", 200)
	handler := Compress()(HandlerFunc(func(ctx *Context) error {
		return ctx.String(200, payload)
	}))

	ctx := newTestContext("GET", "/", nil, nil)
	_ = handler.ServeHTTP(ctx)

	if enc := ctx.ResponseHeader("content-encoding"); enc != "" {
		t.Errorf("Expected no encoding, got %q", enc)
	}
	if string(ctx.ResponseBody()) != payload {
		t.Error("Expected body to pass through unmodified")
	}
}

func TestCompress_SkipsSmallBodies(t *testing.T) {
	handler := Compress()(HandlerFunc(func(ctx *Context) error {
		return ctx.String(200, "tiny")
	}))

	ctx := newTestContext("GET", "/", [][2]string{{"Accept-Encoding", "gzip"}}, nil)
	_ = handler.ServeHTTP(ctx)

	if enc := ctx.ResponseHeader("content-encoding"); enc != "" {
		t.Errorf("Expected no encoding for small body, got %q", enc)
	}
}

func TestCompress_SkipsExcludedTypes(t *testing.T) {
	payload := strings.Repeat("x", 4096)
	handler := Compress()(HandlerFunc(func(ctx *Context) error {
		ctx.SetStatus(200)
		ctx.SetHeader("content-type", "image/png")
		ctx.SetBody([]byte(payload))
		return nil
	}))

	ctx := newTestContext("GET", "/", [][2]string{{"Accept-Encoding", "gzip"}}, nil)
	_ = handler.ServeHTTP(ctx)

	if enc := ctx.ResponseHeader("content-encoding"); enc != "" {
		t.Errorf("Expected excluded type to pass through, got encoding %q", enc)
	}
}
