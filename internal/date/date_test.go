package date

import (
	"testing"
	"time"
)

func TestCurrent_FallbackWithoutTicker(t *testing.T) {
	got := Current()
	if len(got) == 0 {
		t.Fatal("Expected a non-empty date string")
	}
	if _, err := time.Parse(time.RFC1123, string(got)); err != nil {
		t.Errorf("Current() = %q is not RFC1123: %v", got, err)
	}
}

func TestStartTicker(t *testing.T) {
	stop := StartTicker()
	defer stop()

	got := Current()
	parsed, err := time.Parse(time.RFC1123, string(got))
	if err != nil {
		t.Fatalf("Current() = %q is not RFC1123: %v", got, err)
	}
	if d := time.Since(parsed); d < 0 || d > time.Minute {
		t.Errorf("Cached date %v is not recent", parsed)
	}
}
