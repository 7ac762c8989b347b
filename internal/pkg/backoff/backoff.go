// Package backoff defines the retry policy value object shared by the
// upstream client's retry loops. Injecting the policy keeps real delays
// out of tests.
package backoff

import (
	"context"
	"time"
)

type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Default matches the observed eventual-consistency window of the upstream
// store: up to five read-after-write polls spaced 0.6s × attempt apart.
func Default() Policy {
	return Policy{MaxAttempts: 5, BaseDelay: 600 * time.Millisecond}
}

// None retries the same number of times without sleeping. For tests.
func None() Policy {
	return Policy{MaxAttempts: 5, BaseDelay: 0}
}

// Delay returns the wait before the given 1-based attempt.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BaseDelay * time.Duration(attempt)
}

// Sleep blocks for Delay(attempt) or until ctx is done.
func (p Policy) Sleep(ctx context.Context, attempt int) error {
	return sleep(ctx, p.Delay(attempt))
}

// SleepAtLeast blocks for the greater of Delay(attempt) and min. Used for
// 429 responses where the upstream supplies its own Retry-After.
func (p Policy) SleepAtLeast(ctx context.Context, attempt int, min time.Duration) error {
	d := p.Delay(attempt)
	if min > d {
		d = min
	}
	return sleep(ctx, d)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
