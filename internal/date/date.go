// Package date provides a cached, thread-safe RFC1123 date string for
// response headers, so rendering a response does not format the time on
// every exchange.
package date

import (
	"sync/atomic"
	"time"
)

var current atomic.Pointer[[]byte]

// StartTicker begins refreshing the cached date string every 500ms and
// returns a stop function.
func StartTicker() func() {
	update()

	ticker := time.NewTicker(500 * time.Millisecond)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				update()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}

func update() {
	b := []byte(time.Now().UTC().Format(time.RFC1123))
	current.Store(&b)
}

// Current returns the cached date header bytes. Callers must not modify
// the returned slice. If the ticker has not been started it falls back to
// formatting the current time.
func Current() []byte {
	if p := current.Load(); p != nil {
		return *p
	}
	return []byte(time.Now().UTC().Format(time.RFC1123))
}
