package ratelimit

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestLimiter(maxPerMinute int) *RateLimiter {
	return New(Config{
		MaxRequestsPerMinute: maxPerMinute,
		WindowDuration:       time.Minute,
		ExtractCost:          5,
		Logger:               zap.NewNop(),
	})
}

func TestAllowDrainsBucket(t *testing.T) {
	rl := newTestLimiter(3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.allow("client-a", 1) {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if rl.allow("client-a", 1) {
		t.Fatal("bucket should be empty")
	}
}

func TestExtractCostDrainsFaster(t *testing.T) {
	rl := newTestLimiter(10)
	defer rl.Stop()

	if !rl.allow("client-a", 5) || !rl.allow("client-a", 5) {
		t.Fatal("two extractions should fit the bucket")
	}
	if rl.allow("client-a", 5) {
		t.Fatal("third extraction should be rejected")
	}
	if rl.allow("client-a", 1) {
		t.Fatal("bucket should hold no tokens at all")
	}
}

func TestBucketsAreIndependent(t *testing.T) {
	rl := newTestLimiter(1)
	defer rl.Stop()

	if !rl.allow("client-a", 1) {
		t.Fatal("first client should be allowed")
	}
	if !rl.allow("client-b", 1) {
		t.Fatal("second client should have its own bucket")
	}
	if rl.allow("client-a", 1) {
		t.Fatal("first client should now be limited")
	}
}

func TestTokensRefillOverTime(t *testing.T) {
	rl := New(Config{
		MaxRequestsPerMinute: 60,
		WindowDuration:       60 * time.Millisecond,
		Logger:               zap.NewNop(),
	})
	defer rl.Stop()

	for i := 0; i < 60; i++ {
		rl.allow("client-a", 1)
	}
	if rl.allow("client-a", 1) {
		t.Fatal("bucket should be drained")
	}

	time.Sleep(5 * time.Millisecond)
	if !rl.allow("client-a", 1) {
		t.Fatal("tokens should have refilled")
	}
}
