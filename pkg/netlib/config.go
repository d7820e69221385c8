// Package netlib provides an event-driven HTTP/1.x server that serves one
// request per connection, plus the middleware, metrics and tracing
// surface around it.
package netlib

import (
	"fmt"
	"io"
	"log"

	"github.com/xiaoliukai/cpp-netlib/internal/h1"
)

// Config holds the server configuration options.
type Config struct {
	Addr           string      // Address to bind to
	Multicore      bool        // Run one event loop per core
	NumEventLoop   int         // Number of event loops (0 for auto-detect)
	ReusePort      bool        // Enable SO_REUSEPORT
	BufferSize     int         // Per-connection receive buffer capacity in bytes
	MaxConnections uint32      // Maximum concurrent connections (0 for unlimited)
	Logger         *log.Logger // Logger for server events
}

// newSilentLogger creates a logger that discards all output.
func newSilentLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		Multicore:    true,
		NumEventLoop: 0, // Auto-detect
		ReusePort:    true,
		BufferSize:   h1.DefaultBufferSize,
		Logger:       newSilentLogger(),
	}
}

// Validate checks and normalizes the configuration values. Zero values
// select defaults; negative values are rejected.
func (c *Config) Validate() error {
	if c.BufferSize < 0 {
		return fmt.Errorf("buffer size must not be negative, got %d", c.BufferSize)
	}
	if c.NumEventLoop < 0 {
		return fmt.Errorf("event loop count must not be negative, got %d", c.NumEventLoop)
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.BufferSize == 0 {
		c.BufferSize = h1.DefaultBufferSize
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return nil
}
