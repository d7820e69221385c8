package netlib

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

// AccessLogConfig holds configuration for the AccessLog middleware.
type AccessLogConfig struct {
	// Output is where log lines are written (default: os.Stdout)
	Output io.Writer
	// Format is "text" or "json" (default: "text")
	Format string
	// SkipTargets lists request targets to skip logging for
	SkipTargets []string
}

// DefaultAccessLogConfig returns an AccessLogConfig with sensible
// defaults.
func DefaultAccessLogConfig() AccessLogConfig {
	return AccessLogConfig{
		Output: os.Stdout,
		Format: "text",
	}
}

// AccessLog returns a middleware that logs each exchange to stdout in
// text format.
func AccessLog() Middleware {
	return AccessLogWithConfig(DefaultAccessLogConfig())
}

// AccessLogWithConfig returns a middleware that logs each exchange with
// custom configuration.
func AccessLogWithConfig(config AccessLogConfig) Middleware {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Format == "" {
		config.Format = "text"
	}

	skipMap := make(map[string]bool, len(config.SkipTargets))
	for _, target := range config.SkipTargets {
		skipMap[target] = true
	}

	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *Context) error {
			if skipMap[ctx.Target()] {
				return next.ServeHTTP(ctx)
			}

			start := time.Now()
			err := next.ServeHTTP(ctx)
			duration := time.Since(start)

			status := ctx.Status()
			if status == 0 {
				status = 200
			}

			if config.Format == "json" {
				entry := map[string]any{
					"time":     start.Format(time.RFC3339),
					"method":   ctx.Method(),
					"target":   ctx.Target(),
					"status":   status,
					"duration": duration.Milliseconds(),
					"bytes":    len(ctx.ResponseBody()),
				}
				if err != nil {
					entry["error"] = err.Error()
				}
				data, _ := json.Marshal(entry)
				_, _ = fmt.Fprintf(config.Output, "%s\n", data)
			} else {
				_, _ = fmt.Fprintf(config.Output, "[%s] %s %s %d %dms %dB",
					start.Format(time.RFC3339),
					ctx.Method(),
					ctx.Target(),
					status,
					duration.Milliseconds(),
					len(ctx.ResponseBody()))
				if err != nil {
					_, _ = fmt.Fprintf(config.Output, " error=%q", err.Error())
				}
				_, _ = fmt.Fprintln(config.Output)
			}

			return err
		})
	}
}

// Recovery returns a middleware that recovers from panics during request
// handling and returns a 500 Internal Server Error response instead.
func Recovery() Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					_, _ = fmt.Fprintf(os.Stderr, "panic recovered: %v\n%s", r, debug.Stack())
					err = ctx.String(500, "Internal Server Error")
				}
			}()
			return next.ServeHTTP(ctx)
		})
	}
}

// CompressConfig holds configuration for the Compress middleware.
type CompressConfig struct {
	// Level specifies the compression level (1-9 for gzip, 0-11 for brotli)
	Level int
	// MinSize specifies the minimum response size to compress (default: 1024 bytes)
	MinSize int
	// ExcludedTypes lists content-type prefixes to skip compression for
	ExcludedTypes []string
}

// DefaultCompressConfig returns a CompressConfig with sensible defaults.
func DefaultCompressConfig() CompressConfig {
	return CompressConfig{
		Level:   6,
		MinSize: 1024,
		ExcludedTypes: []string{
			"image/",
			"video/",
			"audio/",
			"application/zip",
			"application/gzip",
		},
	}
}

// Compress returns a middleware that compresses response bodies with
// brotli or gzip, using default settings.
func Compress() Middleware {
	return CompressWithConfig(DefaultCompressConfig())
}

// CompressWithConfig returns a middleware that compresses response bodies
// with custom configuration. The compressed form is only used when the
// client advertises support and the payload actually shrinks.
func CompressWithConfig(config CompressConfig) Middleware {
	if config.MinSize == 0 {
		config.MinSize = 1024
	}
	if config.Level == 0 {
		config.Level = 6
	}

	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *Context) error {
			acceptEncoding := ctx.RequestHeader("Accept-Encoding")
			supportsBrotli := strings.Contains(acceptEncoding, "br")
			supportsGzip := strings.Contains(acceptEncoding, "gzip")
			if !supportsBrotli && !supportsGzip {
				return next.ServeHTTP(ctx)
			}

			err := next.ServeHTTP(ctx)

			body := ctx.ResponseBody()
			if len(body) < config.MinSize {
				return err
			}
			contentType := ctx.ResponseHeader("content-type")
			for _, excluded := range config.ExcludedTypes {
				if strings.HasPrefix(contentType, excluded) {
					return err
				}
			}

			var compressed bytes.Buffer
			var encoding string
			if supportsBrotli {
				writer := brotli.NewWriterLevel(&compressed, config.Level)
				if _, werr := writer.Write(body); werr != nil {
					_ = writer.Close()
					return err
				}
				_ = writer.Close()
				encoding = "br"
			} else {
				writer, _ := gzip.NewWriterLevel(&compressed, config.Level)
				if _, werr := writer.Write(body); werr != nil {
					_ = writer.Close()
					return err
				}
				_ = writer.Close()
				encoding = "gzip"
			}

			if compressed.Len() > 0 && compressed.Len() < len(body) {
				ctx.SetHeader("content-encoding", encoding)
				ctx.SetHeader("vary", "Accept-Encoding")
				ctx.SetHeader("content-length", strconv.Itoa(compressed.Len()))
				ctx.SetBody(compressed.Bytes())
			}
			return err
		})
	}
}
