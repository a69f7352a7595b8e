package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestRateLimiter(window, lockout time.Duration) *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		MaxAttempts:     3,
		WindowDuration:  window,
		LockoutDuration: lockout,
	})
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := newTestRateLimiter(time.Minute, time.Minute)
	defer rl.Stop()

	allowed, _ := rl.Allow("1.2.3.4", "alice@example.com")
	assert.True(t, allowed)

	rl.RecordFailure("1.2.3.4", "alice@example.com")
	rl.RecordFailure("1.2.3.4", "alice@example.com")

	allowed, _ = rl.Allow("1.2.3.4", "alice@example.com")
	assert.True(t, allowed)
}

func TestRateLimiter_LocksAtLimit(t *testing.T) {
	rl := newTestRateLimiter(time.Minute, time.Minute)
	defer rl.Stop()

	rl.RecordFailure("1.2.3.4", "alice@example.com")
	rl.RecordFailure("1.2.3.4", "alice@example.com")
	locked, retryAfter := rl.RecordFailure("1.2.3.4", "alice@example.com")

	assert.True(t, locked)
	assert.Equal(t, time.Minute, retryAfter)

	allowed, retryAfter := rl.Allow("1.2.3.4", "alice@example.com")
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestRateLimiter_KeyedPerIPAndEmail(t *testing.T) {
	rl := newTestRateLimiter(time.Minute, time.Minute)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		rl.RecordFailure("1.2.3.4", "alice@example.com")
	}

	allowed, _ := rl.Allow("1.2.3.4", "alice@example.com")
	assert.False(t, allowed)

	// Same email from another IP, and another email from the same IP,
	// are independent records
	allowed, _ = rl.Allow("5.6.7.8", "alice@example.com")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("1.2.3.4", "bob@example.com")
	assert.True(t, allowed)
}

func TestRateLimiter_WindowExpiryResets(t *testing.T) {
	rl := newTestRateLimiter(10*time.Millisecond, 10*time.Millisecond)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		rl.RecordFailure("1.2.3.4", "alice@example.com")
	}
	allowed, _ := rl.Allow("1.2.3.4", "alice@example.com")
	assert.False(t, allowed)

	time.Sleep(20 * time.Millisecond)

	allowed, _ = rl.Allow("1.2.3.4", "alice@example.com")
	assert.True(t, allowed)
}

func TestRateLimiter_SuccessClearsRecord(t *testing.T) {
	rl := newTestRateLimiter(time.Minute, time.Minute)
	defer rl.Stop()

	rl.RecordFailure("1.2.3.4", "alice@example.com")
	rl.RecordFailure("1.2.3.4", "alice@example.com")
	rl.RecordSuccess("1.2.3.4", "alice@example.com")

	// The slate is clean; the next failures count from zero
	locked, _ := rl.RecordFailure("1.2.3.4", "alice@example.com")
	assert.False(t, locked)
}
