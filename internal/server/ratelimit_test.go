package server

import "testing"

func TestRateLimiterNilDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	if rl != nil {
		t.Fatalf("expected nil limiter when ratePerMin <= 0")
	}
	if !rl.Allow("1.2.3.4") {
		t.Fatalf("nil limiter must allow everything")
	}
}

func TestRateLimiterBurstThenRefuse(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	defer rl.Close()

	if !rl.Allow("1.2.3.4") {
		t.Fatalf("first attempt should be allowed")
	}
	if !rl.Allow("1.2.3.4") {
		t.Fatalf("second attempt within burst should be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatalf("third attempt should exhaust the burst")
	}
}

func TestRateLimiterPerIPIsolation(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	defer rl.Close()

	if !rl.Allow("1.1.1.1") {
		t.Fatalf("first IP's first attempt should be allowed")
	}
	if !rl.Allow("2.2.2.2") {
		t.Fatalf("second IP must have its own bucket")
	}
	if rl.Allow("1.1.1.1") {
		t.Fatalf("first IP should be exhausted")
	}
}
