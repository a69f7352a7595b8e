package auth

import (
	"sync"
	"time"
)

// RateLimiter throttles login attempts per IP+email pair with a sliding
// window. It complements the per-account lockout in Service: the lockout
// needs an existing account, while this also slows probing of unknown
// emails, and being keyed on IP it does not let one attacker lock a
// legitimate user out from elsewhere.
type RateLimiter struct {
	mu          sync.RWMutex
	attempts    map[string]*attemptWindow
	maxAttempts int
	window      time.Duration
	lockout     time.Duration
	stopCleanup chan struct{}
}

type attemptWindow struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
}

// RateLimitConfig configures the login rate limiter.
type RateLimitConfig struct {
	MaxAttempts     int           // failed attempts tolerated inside the window
	WindowDuration  time.Duration // sliding window length
	LockoutDuration time.Duration // throttle duration once the limit is hit
	CleanupInterval time.Duration // how often stale records are dropped
}

// NewRateLimiter creates a rate limiter and starts its cleanup loop.
// Call Stop to end the loop.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = 15 * time.Minute
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 30 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	rl := &RateLimiter{
		attempts:    make(map[string]*attemptWindow),
		maxAttempts: cfg.MaxAttempts,
		window:      cfg.WindowDuration,
		lockout:     cfg.LockoutDuration,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop(cfg.CleanupInterval)

	return rl
}

// Stop ends the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCleanup)
}

// Allow reports whether a login attempt for this IP+email pair may proceed.
// When it may not, retryAfter says how long the caller should wait.
func (rl *RateLimiter) Allow(ip, email string) (allowed bool, retryAfter time.Duration) {
	now := time.Now()

	rl.mu.RLock()
	record, exists := rl.attempts[rl.key(ip, email)]
	rl.mu.RUnlock()

	if !exists {
		return true, 0
	}
	if !record.lockedUntil.IsZero() && now.Before(record.lockedUntil) {
		return false, record.lockedUntil.Sub(now)
	}
	if now.Sub(record.windowStart) > rl.window {
		return true, 0
	}
	if record.count < rl.maxAttempts {
		return true, 0
	}
	return false, rl.lockout
}

// RecordFailure counts a failed attempt and reports whether the pair is now
// throttled.
func (rl *RateLimiter) RecordFailure(ip, email string) (locked bool, retryAfter time.Duration) {
	now := time.Now()
	key := rl.key(ip, email)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, exists := rl.attempts[key]
	if !exists {
		record = &attemptWindow{windowStart: now}
		rl.attempts[key] = record
	}

	if now.Sub(record.windowStart) > rl.window {
		record.count = 0
		record.windowStart = now
		record.lockedUntil = time.Time{}
	}

	record.count++
	if record.count >= rl.maxAttempts {
		record.lockedUntil = now.Add(rl.lockout)
		return true, rl.lockout
	}
	return false, 0
}

// RecordSuccess clears the failure record after a successful login.
func (rl *RateLimiter) RecordSuccess(ip, email string) {
	rl.mu.Lock()
	delete(rl.attempts, rl.key(ip, email))
	rl.mu.Unlock()
}

func (rl *RateLimiter) key(ip, email string) string {
	return ip + ":" + email
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, record := range rl.attempts {
		windowExpired := now.Sub(record.windowStart) > rl.window+rl.lockout
		lockoutExpired := record.lockedUntil.IsZero() || now.After(record.lockedUntil)
		if windowExpired && lockoutExpired {
			delete(rl.attempts, key)
		}
	}
}
