package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Close()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow(1) || !rl.Allow(1) {
		t.Fatal("first two requests must pass")
	}
	if rl.Allow(1) {
		t.Error("third request within the window must be limited")
	}
	if !rl.Allow(2) {
		t.Error("limit is per user")
	}

	now = now.Add(61 * time.Second)
	if !rl.Allow(1) {
		t.Error("window must slide")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)
	defer rl.Close()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.Allow(1)
	rl.Allow(2)

	now = now.Add(2 * time.Minute)
	rl.Allow(2)
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.requests[1]; ok {
		t.Error("stale user must be dropped")
	}
	if len(rl.requests[2]) != 1 {
		t.Errorf("Expected one fresh request for user 2, got %d", len(rl.requests[2]))
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	defer rl.Close()
	for i := 0; i < 10; i++ {
		if !rl.Allow(1) {
			t.Fatal("zero limit disables limiting")
		}
	}
}

func TestTruncate(t *testing.T) {
	long := ""
	for i := 0; i < 60; i++ {
		long += "ё"
	}
	if got := []rune(truncate(long)); len(got) != maxLoggedText+3 {
		t.Errorf("Expected %d runes, got %d", maxLoggedText+3, len(got))
	}
	if truncate("коротко") != "коротко" {
		t.Error("short text must stay intact")
	}
}
