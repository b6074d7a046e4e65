package ratelimit

import (
	"testing"
	"time"
)

func TestBurstThenDeny(t *testing.T) {
	limiter := NewLimiter(1, 3)

	for i := 0; i < 3; i++ {
		if !limiter.Allow() {
			t.Fatalf("Call %d within burst should be allowed", i+1)
		}
	}
	if limiter.Allow() {
		t.Error("Call past burst should be denied")
	}
}

func TestTokensRefill(t *testing.T) {
	limiter := NewLimiter(100, 1)

	if !limiter.Allow() {
		t.Fatal("First call should be allowed")
	}
	if limiter.Allow() {
		t.Fatal("Bucket should be drained")
	}

	time.Sleep(50 * time.Millisecond)
	if !limiter.Allow() {
		t.Error("Bucket should have refilled after waiting")
	}
}
