package ratelimiter

import (
	"testing"
	"time"
)

func TestAllowBurstThenThrottle(t *testing.T) {
	l := New(1, 3, time.Minute)
	now := time.Unix(1000, 0)

	for i := 0; i < 3; i++ {
		if !l.Allow("conv_1", now) {
			t.Fatalf("burst request %d denied", i)
		}
	}
	if l.Allow("conv_1", now) {
		t.Fatal("request over burst allowed")
	}

	// A different key has its own bucket.
	if !l.Allow("conv_2", now) {
		t.Fatal("independent key denied")
	}

	// One second refills one token.
	if !l.Allow("conv_1", now.Add(time.Second)) {
		t.Fatal("refilled token denied")
	}
}

func TestNilAndBlankKeysAlwaysAllow(t *testing.T) {
	var l *MapLimiter
	if !l.Allow("conv_1", time.Now()) {
		t.Fatal("nil limiter denied")
	}
	if New(0, 0, 0) != nil {
		t.Fatal("invalid args did not yield nil limiter")
	}
	limited := New(1, 1, time.Minute)
	if !limited.Allow("  ", time.Now()) {
		t.Fatal("blank key denied")
	}
}

func TestIdleEviction(t *testing.T) {
	l := New(1, 1, time.Second)
	now := time.Unix(1000, 0)
	l.Allow("stale", now)

	// Push past the eviction stride with a fresh key far in the future.
	later := now.Add(time.Hour)
	for i := 0; i < 256; i++ {
		l.Allow("fresh", later)
	}
	if l.Size() != 1 {
		t.Fatalf("stale bucket not evicted: size=%d", l.Size())
	}
}
